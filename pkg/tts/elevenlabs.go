package tts

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ashmitan/go-may/internal/httpc"
)

const (
	elevenLabsBaseURL  = "https://api.elevenlabs.io/v1"
	providerElevenLabs = "elevenlabs"
)

// ElevenLabs model IDs.
const (
	// ModelTurboV2_5 is the fastest English model (~200ms latency).
	ModelTurboV2_5 = "eleven_turbo_v2_5"

	// ModelFlashV2_5 is the fastest multilingual model (~150ms latency).
	ModelFlashV2_5 = "eleven_flash_v2_5"

	// ModelMultilingualV2 is the highest quality multilingual model (~300ms latency).
	ModelMultilingualV2 = "eleven_multilingual_v2"
)

// Voice describes a voice available on the account.
type Voice struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
}

// ElevenLabs synthesizes speech over the ElevenLabs HTTP API. The
// active voice can be swapped at runtime with SetVoice; everything
// else is fixed at construction.
type ElevenLabs struct {
	config  *Config
	http    *http.Client
	logger  *slog.Logger
	baseURL string

	mu      sync.RWMutex
	voiceID string
}

// NewElevenLabs builds the provider. An API key and a voice are
// required.
func NewElevenLabs(opts ...Option) (*ElevenLabs, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.ValidateWithVoice(); err != nil {
		return nil, err
	}

	return &ElevenLabs{
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "tts.elevenlabs"),
		baseURL: cmp.Or(strings.TrimSuffix(cfg.BaseURL, "/"), elevenLabsBaseURL),
		voiceID: cfg.VoiceID,
	}, nil
}

// Synthesize converts text to a complete audio buffer.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	start := time.Now()

	resp, err := e.post(ctx, e.http, e.speechURL(""), text, e.config.MaxRetries+1)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()

	if resp.StatusCode != http.StatusOK {
		return nil, e.parseError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("read audio: %w", err))
	}

	e.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
		"model", e.config.ModelID,
	)

	return &AudioResult{
		Audio:     audio,
		Format:    e.audioFormat(),
		CharCount: len(text),
		LatencyMs: latency,
		Duration:  e.audioDuration(len(audio)),
	}, nil
}

// Stream starts a streaming synthesis request. Chunks arrive as the
// API produces them; the caller owns the returned stream.
func (e *ElevenLabs) Stream(ctx context.Context, text string) (AudioStream, error) {
	// Streaming responses outlive the normal request timeout.
	hc := &http.Client{Timeout: e.config.StreamTimeout}

	resp, err := e.post(ctx, hc, e.speechURL("/stream"), text, 1)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, e.parseError(resp)
	}

	return &bodyStream{body: resp.Body, format: e.audioFormat()}, nil
}

// ListVoices returns the voices available on the account.
func (e *ElevenLabs) ListVoices(ctx context.Context) ([]Voice, error) {
	resp, err := e.get(ctx, "/voices")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.parseError(resp)
	}

	var result struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("decode voices: %w", err))
	}
	return result.Voices, nil
}

// Health verifies connectivity and that the API key is accepted.
func (e *ElevenLabs) Health(ctx context.Context) error {
	resp, err := e.get(ctx, "/user")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return e.parseError(resp)
	}
	return nil
}

// Close releases idle connections.
func (e *ElevenLabs) Close() error {
	e.http.CloseIdleConnections()
	return nil
}

// VoiceID returns the active voice ID.
func (e *ElevenLabs) VoiceID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.voiceID
}

// SetVoice switches the active voice. Accepts a preset name or a raw
// voice ID.
func (e *ElevenLabs) SetVoice(nameOrID string) {
	id := ResolveElevenLabsVoice(nameOrID)

	e.mu.Lock()
	e.voiceID = id
	e.mu.Unlock()

	e.logger.Info("voice changed", "voice_id", id)
}

// speechURL builds the synthesis endpoint for the active voice.
func (e *ElevenLabs) speechURL(suffix string) string {
	return fmt.Sprintf("%s/text-to-speech/%s%s?output_format=%s",
		e.baseURL, e.VoiceID(), suffix, e.config.OutputFormat)
}

// post sends a synthesis payload, retrying transient failures up to
// the given attempt count.
func (e *ElevenLabs) post(ctx context.Context, hc *http.Client, url, text string, attempts int) (*http.Response, error) {
	body, err := json.Marshal(e.speechPayload(text))
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", e.acceptMIME())

	resp, err := httpc.DoRetry(ctx, hc, e.logger, req, body, attempts, e.config.RetryDelay)
	if err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}
	return resp, nil
}

// get issues an authenticated GET against the API.
func (e *ElevenLabs) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}
	return resp, nil
}

// speechPayload builds the request body for the active configuration.
func (e *ElevenLabs) speechPayload(text string) map[string]interface{} {
	return map[string]interface{}{
		"text":     text,
		"model_id": e.config.ModelID,
		"voice_settings": map[string]interface{}{
			"stability":         e.config.VoiceSettings.Stability,
			"similarity_boost":  e.config.VoiceSettings.SimilarityBoost,
			"style":             e.config.VoiceSettings.Style,
			"use_speaker_boost": e.config.VoiceSettings.SpeakerBoost,
		},
	}
}

// parseError decodes the API error envelope, falling back to the raw
// body when it is not JSON.
func (e *ElevenLabs) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var envelope struct {
		Detail struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"detail"`
	}

	message := string(body)
	if json.Unmarshal(body, &envelope) == nil && envelope.Detail.Message != "" {
		message = envelope.Detail.Message
	}

	return &APIError{
		Provider:   providerElevenLabs,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// audioFormat describes the configured output encoding.
func (e *ElevenLabs) audioFormat() AudioFormat {
	return AudioFormat{
		Encoding:   e.config.OutputFormat,
		SampleRate: SampleRateFromEncoding(e.config.OutputFormat),
		Channels:   1,
		BitDepth:   16,
	}
}

// acceptMIME maps the configured encoding to the Accept header.
func (e *ElevenLabs) acceptMIME() string {
	switch e.config.OutputFormat {
	case EncodingMP3:
		return "audio/mpeg"
	case EncodingOpus:
		return "audio/opus"
	case EncodingULaw:
		return "audio/basic"
	default:
		return "audio/pcm"
	}
}

// audioDuration estimates playback time for a buffer of the configured
// encoding.
func (e *ElevenLabs) audioDuration(n int) time.Duration {
	if e.config.OutputFormat == EncodingMP3 {
		// The API encodes MP3 at 128kbps.
		return time.Duration(float64(n) * 8 / 128000 * float64(time.Second))
	}

	// Raw PCM16 mono, two bytes per sample.
	rate := SampleRateFromEncoding(e.config.OutputFormat)
	return time.Duration(float64(n/2) / float64(rate) * float64(time.Second))
}

// bodyStream adapts a streaming HTTP response to AudioStream.
type bodyStream struct {
	body   io.ReadCloser
	format AudioFormat
	buf    [streamChunk]byte
}

// Read returns the next audio chunk, or nil at end of stream.
func (s *bodyStream) Read() ([]byte, error) {
	for {
		n, err := s.body.Read(s.buf[:])
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, s.buf[:n])
			return chunk, nil
		}
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Close stops the stream.
func (s *bodyStream) Close() error {
	return s.body.Close()
}

// Format returns the audio format.
func (s *bodyStream) Format() AudioFormat {
	return s.format
}

// Verify ElevenLabs implements Provider at compile time.
var _ Provider = (*ElevenLabs)(nil)
