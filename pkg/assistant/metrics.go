package assistant

// TurnMetrics is the stage latency breakdown of one completed turn,
// in milliseconds. Stages the turn skipped stay zero: an intent reply
// has no emotion or generation time, a text-only deployment has no
// synthesis or playback time.
type TurnMetrics struct {
	ListenMs     int64 `json:"listen_ms"`
	EmotionMs    int64 `json:"emotion_ms"`
	GenerateMs   int64 `json:"generate_ms"`
	SynthesizeMs int64 `json:"synthesize_ms"`
	SpeakMs      int64 `json:"speak_ms"`
	TotalMs      int64 `json:"total_ms"`
}

// attrs flattens the breakdown into slog key-value pairs.
func (t TurnMetrics) attrs() []any {
	return []any{
		"listen_ms", t.ListenMs,
		"emotion_ms", t.EmotionMs,
		"generate_ms", t.GenerateMs,
		"synthesize_ms", t.SynthesizeMs,
		"speak_ms", t.SpeakMs,
		"total_ms", t.TotalMs,
	}
}
