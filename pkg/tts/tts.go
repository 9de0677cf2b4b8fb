// Package tts provides a unified interface for text-to-speech providers.
//
// The assistant speaks through ElevenLabs: buffered MP3 over HTTP for
// normal replies, or low-latency PCM over WebSocket for streaming.
// Providers chain for fallback, and the scriptable Mock stands in for
// the API in tests.
//
// Example usage:
//
//	provider, _ := tts.NewElevenLabs(
//	    tts.WithAPIKey(os.Getenv("ELEVENLABS_API_KEY")),
//	    tts.WithVoice("george"),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Hello world")
//	// result.Audio contains MP3/PCM audio bytes
package tts

import (
	"context"
	"time"
)

// Provider is a speech synthesis backend.
type Provider interface {
	// Synthesize converts text to a complete audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Stream converts text to audio delivered in chunks as the
	// provider produces them, for lower time to first sound.
	Stream(ctx context.Context, text string) (AudioStream, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioStream is a sequence of audio chunks. Read until it returns nil,
// then Close.
type AudioStream interface {
	// Read returns the next audio chunk, or nil at end of stream.
	Read() ([]byte, error)

	// Close stops the stream and releases resources.
	Close() error

	// Format returns the audio format metadata.
	Format() AudioFormat
}

// AudioResult is a complete synthesis result.
type AudioResult struct {
	// Audio holds the raw audio bytes in Format's encoding.
	Audio []byte

	// Format describes the encoding and sample rate.
	Format AudioFormat

	// Duration is the estimated playback time.
	Duration time.Duration

	// CharCount is the number of characters synthesized, which is what
	// the API bills by.
	CharCount int

	// LatencyMs is the time to first byte in milliseconds.
	LatencyMs int64
}

// AudioFormat describes audio encoding parameters.
type AudioFormat struct {
	Encoding   Encoding
	SampleRate int // Hz
	Channels   int // 1 mono, 2 stereo
	BitDepth   int // bits per sample for PCM
}

// Encoding names an audio output format. The values match ElevenLabs
// output_format identifiers.
type Encoding string

const (
	// PCM formats (raw audio, lowest latency)
	EncodingPCM16 Encoding = "pcm_16000" // 16kHz mono PCM16
	EncodingPCM22 Encoding = "pcm_22050" // 22.05kHz mono PCM16
	EncodingPCM24 Encoding = "pcm_24000" // 24kHz mono PCM16
	EncodingPCM44 Encoding = "pcm_44100" // 44.1kHz mono PCM16

	// Compressed formats
	EncodingMP3  Encoding = "mp3_44100_128" // MP3 128kbps
	EncodingOpus Encoding = "opus"          // Opus codec
	EncodingULaw Encoding = "ulaw_8000"     // μ-law 8kHz (telephony)
)

// VoiceSettings shapes the delivery of the generated speech.
type VoiceSettings struct {
	// Stability trades consistency for expressiveness (0.0-1.0, lower
	// is more variable).
	Stability float64

	// SimilarityBoost keeps the output close to the voice sample
	// (0.0-1.0).
	SimilarityBoost float64

	// Style exaggerates the speaking style (0.0-1.0, v2 models only).
	Style float64

	// SpeakerBoost enhances speaker clarity.
	SpeakerBoost bool
}

// DefaultVoiceSettings returns the delivery the assistant uses: mostly
// stable with a little room to emote.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		SpeakerBoost:    true,
	}
}

// SampleRateFromEncoding returns the sample rate an encoding implies.
func SampleRateFromEncoding(enc Encoding) int {
	switch enc {
	case EncodingPCM16:
		return 16000
	case EncodingPCM22:
		return 22050
	case EncodingPCM24:
		return 24000
	case EncodingPCM44, EncodingMP3:
		return 44100
	case EncodingULaw:
		return 8000
	default:
		return 24000
	}
}

// streamChunk is the chunk size handed out by in-process streams.
const streamChunk = 4096

// bufferStream serves an already complete audio buffer through the
// AudioStream interface.
type bufferStream struct {
	data   []byte
	format AudioFormat
	offset int
}

// Read returns the next audio chunk, or nil at end of stream.
func (s *bufferStream) Read() ([]byte, error) {
	if s.offset >= len(s.data) {
		return nil, nil
	}

	end := min(s.offset+streamChunk, len(s.data))
	chunk := s.data[s.offset:end]
	s.offset = end
	return chunk, nil
}

// Close stops the stream.
func (s *bufferStream) Close() error {
	return nil
}

// Format returns the audio format.
func (s *bufferStream) Format() AudioFormat {
	return s.format
}
