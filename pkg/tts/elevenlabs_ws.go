package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	providerElevenLabsWS = "elevenlabs-ws"

	elevenLabsWSBaseURL = "wss://api.elevenlabs.io/v1/text-to-speech"
	wsHandshakeTimeout  = 10 * time.Second
)

// ElevenLabsWS synthesizes speech over the ElevenLabs stream-input
// WebSocket. Each call dials a dedicated socket, sends the whole text,
// and assembles the audio frames as they arrive. The socket only
// serves raw PCM, so the fallback chain runs it behind the HTTP
// provider rather than as the default path.
type ElevenLabsWS struct {
	config *Config
	logger *slog.Logger

	mu      sync.RWMutex
	voiceID string
}

// NewElevenLabsWS builds the provider. An API key and a voice are
// required.
func NewElevenLabsWS(opts ...Option) (*ElevenLabsWS, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.ValidateWithVoice(); err != nil {
		return nil, err
	}

	return &ElevenLabsWS{
		config:  cfg,
		logger:  cfg.Logger.With("component", "tts.elevenlabs_ws"),
		voiceID: cfg.VoiceID,
	}, nil
}

// Synthesize converts text to audio over a dedicated socket: BOS, the
// whole text, EOS, then audio frames until the final one. LatencyMs is
// the time to the first audio frame.
func (e *ElevenLabsWS) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	start := time.Now()
	enc := e.wsEncoding()

	conn, err := e.dial(ctx)
	if err != nil {
		return nil, WrapError(providerElevenLabsWS, err)
	}
	defer conn.Close()

	bos := map[string]interface{}{
		"text": " ",
		"voice_settings": map[string]interface{}{
			"stability":        e.config.VoiceSettings.Stability,
			"similarity_boost": e.config.VoiceSettings.SimilarityBoost,
		},
	}
	if err := conn.WriteJSON(bos); err != nil {
		return nil, WrapError(providerElevenLabsWS, fmt.Errorf("send BOS: %w", err))
	}
	if err := conn.WriteJSON(map[string]interface{}{
		"text":                   text + " ",
		"try_trigger_generation": true,
	}); err != nil {
		return nil, WrapError(providerElevenLabsWS, fmt.Errorf("send text: %w", err))
	}
	if err := conn.WriteJSON(map[string]interface{}{"text": ""}); err != nil {
		return nil, WrapError(providerElevenLabsWS, fmt.Errorf("send EOS: %w", err))
	}

	deadline := start.Add(e.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var audio []byte
	var firstChunkMs int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn.SetReadDeadline(deadline)

		_, message, err := conn.ReadMessage()
		if err != nil {
			// A normal close after audio means the server finished
			// without an isFinal frame.
			if len(audio) > 0 && websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			return nil, WrapError(providerElevenLabsWS, fmt.Errorf("read synthesis: %w", err))
		}

		var frame struct {
			Audio   string `json:"audio"`
			IsFinal bool   `json:"isFinal"`
		}
		if err := json.Unmarshal(message, &frame); err != nil {
			e.logger.Warn("unparseable synthesis frame", "error", err)
			continue
		}

		if frame.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(frame.Audio)
			if err != nil {
				return nil, WrapError(providerElevenLabsWS, fmt.Errorf("decode audio: %w", err))
			}
			if len(audio) == 0 {
				firstChunkMs = time.Since(start).Milliseconds()
			}
			audio = append(audio, chunk...)
		}
		if frame.IsFinal {
			break
		}
	}

	if len(audio) == 0 {
		return nil, WrapError(providerElevenLabsWS, fmt.Errorf("no audio returned"))
	}

	e.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", firstChunkMs,
		"model", e.config.ModelID,
	)

	return &AudioResult{
		Audio: audio,
		Format: AudioFormat{
			Encoding:   enc,
			SampleRate: SampleRateFromEncoding(enc),
			Channels:   1,
			BitDepth:   16,
		},
		CharCount: len(text),
		LatencyMs: firstChunkMs,
		Duration:  pcmDuration(len(audio), enc),
	}, nil
}

// Stream converts text to audio and serves it as chunks. The socket
// protocol delivers frames out of playback order until the clip is
// complete, so this buffers one Synthesize call.
func (e *ElevenLabsWS) Stream(ctx context.Context, text string) (AudioStream, error) {
	result, err := e.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	return &bufferStream{data: result.Audio, format: result.Format}, nil
}

// Health checks connectivity and API key validity with a handshake.
func (e *ElevenLabsWS) Health(ctx context.Context) error {
	conn, err := e.dial(ctx)
	if err != nil {
		return WrapError(providerElevenLabsWS, err)
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}

// Close implements Provider. No resources outlive a call.
func (e *ElevenLabsWS) Close() error {
	return nil
}

// VoiceID returns the active voice ID.
func (e *ElevenLabsWS) VoiceID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.voiceID
}

// SetVoice switches the active voice. Accepts a preset name or a raw
// voice ID. Takes effect on the next dial.
func (e *ElevenLabsWS) SetVoice(nameOrID string) {
	id := ResolveElevenLabsVoice(nameOrID)

	e.mu.Lock()
	e.voiceID = id
	e.mu.Unlock()

	e.logger.Info("voice changed", "voice_id", id)
}

// dial opens a socket for one synthesis or health probe.
func (e *ElevenLabsWS) dial(ctx context.Context) (*websocket.Conn, error) {
	url := fmt.Sprintf("%s/%s/stream-input?model_id=%s&output_format=%s",
		e.baseURL(), e.VoiceID(), e.config.ModelID, e.wsEncoding())

	headers := http.Header{}
	headers.Set("xi-api-key", e.config.APIKey)

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}

	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// baseURL returns the socket endpoint, honoring the BaseURL override
// used by tests.
func (e *ElevenLabsWS) baseURL() string {
	if e.config.BaseURL != "" {
		return strings.TrimSuffix(e.config.BaseURL, "/")
	}
	return elevenLabsWSBaseURL
}

// wsEncoding returns the PCM encoding the socket will deliver. The
// stream-input endpoint has no MP3 output, so compressed formats fall
// back to 24kHz PCM.
func (e *ElevenLabsWS) wsEncoding() Encoding {
	switch e.config.OutputFormat {
	case EncodingPCM16, EncodingPCM22, EncodingPCM24, EncodingPCM44, EncodingULaw:
		return e.config.OutputFormat
	default:
		return EncodingPCM24
	}
}

// pcmDuration estimates playback time for raw audio from its byte count.
func pcmDuration(byteCount int, enc Encoding) time.Duration {
	bytesPerSample := 2
	if enc == EncodingULaw {
		bytesPerSample = 1
	}
	samples := byteCount / bytesPerSample
	rate := SampleRateFromEncoding(enc)
	return time.Duration(samples) * time.Second / time.Duration(rate)
}

// Verify ElevenLabsWS implements Provider at compile time.
var _ Provider = (*ElevenLabsWS)(nil)
