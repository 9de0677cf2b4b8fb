package tts_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ashmitan/go-may/pkg/tts"
)

func TestMockSynthesize(t *testing.T) {
	mock := tts.NewMock()

	result, err := mock.Synthesize(context.Background(), "Hi there, May")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if result.CharCount != 13 {
		t.Errorf("CharCount = %d, want 13", result.CharCount)
	}
	if len(result.Audio) == 0 {
		t.Error("expected canned audio bytes")
	}
	if result.Format.SampleRate != 24000 || result.Format.Channels != 1 {
		t.Errorf("unexpected format: %+v", result.Format)
	}
	if result.Duration != 13*20*time.Millisecond {
		t.Errorf("Duration = %v, want 260ms", result.Duration)
	}
}

func TestMockStreamServesSynthesizedAudio(t *testing.T) {
	mock := tts.NewMock()

	stream, err := mock.Stream(context.Background(), "stream me")
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	var total int
	for {
		chunk, err := stream.Read()
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if chunk == nil {
			break
		}
		total += len(chunk)
	}
	if total == 0 {
		t.Error("expected streamed audio bytes")
	}
}

func TestMockTracksCalls(t *testing.T) {
	mock := tts.NewMock()
	ctx := context.Background()

	mock.Synthesize(ctx, "one")
	mock.Stream(ctx, "two")
	mock.Health(ctx)

	calls := mock.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", len(calls))
	}
	if calls[0].Method != "Synthesize" || calls[0].Text != "one" {
		t.Errorf("unexpected first call: %+v", calls[0])
	}
	if mock.CallCount("Stream") != 1 {
		t.Errorf("Stream count = %d, want 1", mock.CallCount("Stream"))
	}

	mock.Reset()
	if len(mock.Calls()) != 0 {
		t.Error("Reset should clear recorded calls")
	}
}

func TestMockWithError(t *testing.T) {
	boom := errors.New("synthesis down")
	mock := tts.WithError(boom)
	ctx := context.Background()

	if _, err := mock.Synthesize(ctx, "x"); !errors.Is(err, boom) {
		t.Errorf("Synthesize error = %v, want wrapped sentinel", err)
	}
	if _, err := mock.Stream(ctx, "x"); !errors.Is(err, boom) {
		t.Errorf("Stream error = %v, want wrapped sentinel", err)
	}
	if err := mock.Health(ctx); !errors.Is(err, boom) {
		t.Errorf("Health error = %v, want wrapped sentinel", err)
	}
}

func TestMockWithLatency(t *testing.T) {
	t.Run("delays synthesis", func(t *testing.T) {
		mock := tts.WithLatency(tts.NewMock(), 50*time.Millisecond)

		start := time.Now()
		if _, err := mock.Synthesize(context.Background(), "slow"); err != nil {
			t.Fatalf("Synthesize: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
			t.Errorf("returned after %v, want at least 50ms", elapsed)
		}
	})

	t.Run("cancellation cuts the wait short", func(t *testing.T) {
		mock := tts.WithLatency(tts.NewMock(), time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if _, err := mock.Synthesize(ctx, "slow"); err == nil {
			t.Error("expected context error")
		}
	})
}

func TestDefaultVoiceSettings(t *testing.T) {
	settings := tts.DefaultVoiceSettings()

	if settings.Stability != 0.5 {
		t.Errorf("Stability = %f, want 0.5", settings.Stability)
	}
	if settings.SimilarityBoost != 0.75 {
		t.Errorf("SimilarityBoost = %f, want 0.75", settings.SimilarityBoost)
	}
	if settings.Style != 0.0 {
		t.Errorf("Style = %f, want 0", settings.Style)
	}
	if !settings.SpeakerBoost {
		t.Error("SpeakerBoost should default on")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := tts.DefaultConfig()

	if cfg.VoiceID != tts.ElevenLabsVoices["george"] {
		t.Errorf("VoiceID = %s, want the george preset", cfg.VoiceID)
	}
	if cfg.ModelID != tts.ModelTurboV2_5 {
		t.Errorf("ModelID = %s, want turbo", cfg.ModelID)
	}
	if cfg.OutputFormat != tts.EncodingMP3 {
		t.Errorf("OutputFormat = %s, want MP3", cfg.OutputFormat)
	}
	if cfg.Timeout != 30*time.Second || cfg.StreamTimeout != 60*time.Second {
		t.Errorf("unexpected timeouts: %v / %v", cfg.Timeout, cfg.StreamTimeout)
	}
}

func TestFunctionalOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	settings := tts.VoiceSettings{Stability: 0.9, SimilarityBoost: 0.1}

	cfg := tts.DefaultConfig()
	cfg.Apply(
		tts.WithAPIKey("key-123"),
		tts.WithBaseURL("http://localhost:9999"),
		tts.WithVoice("test-voice"),
		tts.WithModel("test-model"),
		tts.WithOutputFormat(tts.EncodingPCM24),
		tts.WithVoiceSettings(settings),
		tts.WithTimeout(5*time.Second),
		tts.WithStreamTimeout(15*time.Second),
		tts.WithRetry(5, 10*time.Millisecond),
		tts.WithLogger(logger),
	)

	if cfg.APIKey != "key-123" || cfg.BaseURL != "http://localhost:9999" {
		t.Errorf("credentials not applied: %q %q", cfg.APIKey, cfg.BaseURL)
	}
	if cfg.VoiceID != "test-voice" || cfg.ModelID != "test-model" {
		t.Errorf("voice/model not applied: %q %q", cfg.VoiceID, cfg.ModelID)
	}
	if cfg.OutputFormat != tts.EncodingPCM24 {
		t.Errorf("OutputFormat = %s, want PCM24", cfg.OutputFormat)
	}
	if cfg.VoiceSettings.Stability != 0.9 {
		t.Errorf("VoiceSettings not applied: %+v", cfg.VoiceSettings)
	}
	if cfg.Timeout != 5*time.Second || cfg.StreamTimeout != 15*time.Second {
		t.Errorf("timeouts not applied: %v / %v", cfg.Timeout, cfg.StreamTimeout)
	}
	if cfg.MaxRetries != 5 || cfg.RetryDelay != 10*time.Millisecond {
		t.Errorf("retry shape not applied: %d / %v", cfg.MaxRetries, cfg.RetryDelay)
	}
	if cfg.Logger != logger {
		t.Error("logger not applied")
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("Validate requires API key", func(t *testing.T) {
		cfg := tts.DefaultConfig()
		if err := cfg.Validate(); err != tts.ErrNoAPIKey {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("Validate passes with API key", func(t *testing.T) {
		cfg := tts.DefaultConfig()
		cfg.APIKey = "test-key"
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("ValidateWithVoice requires voice", func(t *testing.T) {
		cfg := tts.DefaultConfig()
		cfg.APIKey = "test-key"
		cfg.VoiceID = ""
		if err := cfg.ValidateWithVoice(); err != tts.ErrNoVoiceID {
			t.Errorf("expected ErrNoVoiceID, got %v", err)
		}
	})

	t.Run("ValidateWithVoice passes with both", func(t *testing.T) {
		cfg := tts.DefaultConfig()
		cfg.APIKey = "test-key"
		cfg.VoiceID = "test-voice"
		if err := cfg.ValidateWithVoice(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestVoicePresets(t *testing.T) {
	t.Run("Resolve preset name", func(t *testing.T) {
		id := tts.ResolveElevenLabsVoice("george")
		if id != "JBFqnCBsd6RMkjVDRZzb" {
			t.Errorf("unexpected voice ID: %s", id)
		}
	})

	t.Run("Resolve is case-insensitive", func(t *testing.T) {
		id := tts.ResolveElevenLabsVoice("Rachel")
		if id != "21m00Tcm4TlvDq8ikWAM" {
			t.Errorf("unexpected voice ID: %s", id)
		}
	})

	t.Run("Raw IDs pass through", func(t *testing.T) {
		id := tts.ResolveElevenLabsVoice("custom-voice-id")
		if id != "custom-voice-id" {
			t.Errorf("expected pass-through, got %s", id)
		}
	})

	t.Run("IsElevenLabsPreset", func(t *testing.T) {
		if !tts.IsElevenLabsPreset("bella") {
			t.Error("expected bella to be a preset")
		}
		if tts.IsElevenLabsPreset("nobody") {
			t.Error("expected nobody to not be a preset")
		}
	})

	t.Run("PresetNames sorted", func(t *testing.T) {
		names := tts.PresetNames()
		if len(names) != 5 {
			t.Fatalf("expected 5 presets, got %d", len(names))
		}
		if names[0] != "adam" {
			t.Errorf("expected adam first, got %s", names[0])
		}
	})

	t.Run("PresetNameForID", func(t *testing.T) {
		if got := tts.PresetNameForID("pNInz6obpgDQGcFmaJgB"); got != "adam" {
			t.Errorf("expected adam, got %s", got)
		}
		if got := tts.PresetNameForID("unknown"); got != "" {
			t.Errorf("expected empty, got %s", got)
		}
	})
}

func TestAPIError(t *testing.T) {
	t.Run("rate limits are retryable", func(t *testing.T) {
		err := &tts.APIError{StatusCode: 429, Message: "rate limited"}
		if !err.IsRateLimited() || !err.IsRetryable() {
			t.Error("429 should be rate-limited and retryable")
		}
		if err.IsUnauthorized() {
			t.Error("429 is not an auth failure")
		}
	})

	t.Run("auth failures are final", func(t *testing.T) {
		err := &tts.APIError{StatusCode: 401, Message: "unauthorized"}
		if !err.IsUnauthorized() {
			t.Error("401 should be unauthorized")
		}
		if err.IsRetryable() {
			t.Error("retrying a bad key cannot help")
		}
	})

	t.Run("server errors are retryable", func(t *testing.T) {
		for _, code := range []int{500, 502, 503, 504} {
			err := &tts.APIError{StatusCode: code}
			if !err.IsServerError() || !err.IsRetryable() {
				t.Errorf("%d should be a retryable server error", code)
			}
		}
	})

	t.Run("message includes provider and code", func(t *testing.T) {
		err := &tts.APIError{
			StatusCode: 400,
			Message:    "bad request",
			Code:       "invalid_input",
			Provider:   "elevenlabs",
		}
		if err.Error() != "tts [elevenlabs]: API error 400 (invalid_input): bad request" {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})
}

func TestSampleRateFromEncoding(t *testing.T) {
	tests := []struct {
		encoding tts.Encoding
		want     int
	}{
		{tts.EncodingPCM16, 16000},
		{tts.EncodingPCM22, 22050},
		{tts.EncodingPCM24, 24000},
		{tts.EncodingPCM44, 44100},
		{tts.EncodingMP3, 44100},
		{tts.EncodingULaw, 8000},
		{tts.Encoding("bogus"), 24000},
	}

	for _, tt := range tests {
		if got := tts.SampleRateFromEncoding(tt.encoding); got != tt.want {
			t.Errorf("SampleRateFromEncoding(%s) = %d, want %d", tt.encoding, got, tt.want)
		}
	}
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	t.Run("requires providers", func(t *testing.T) {
		if _, err := tts.NewChain(); err != tts.ErrProviderUnavailable {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("first success wins", func(t *testing.T) {
		first := tts.NewMock()
		second := tts.NewMock()

		chain, err := tts.NewChain(first, second)
		if err != nil {
			t.Fatalf("NewChain: %v", err)
		}
		defer chain.Close()

		if _, err := chain.Synthesize(ctx, "Hello"); err != nil {
			t.Fatalf("Synthesize: %v", err)
		}
		if first.CallCount("Synthesize") != 1 {
			t.Error("first provider should have served the request")
		}
		if second.CallCount("Synthesize") != 0 {
			t.Error("second provider should stay untouched")
		}
	})

	t.Run("synthesis falls back", func(t *testing.T) {
		failing := tts.WithError(errors.New("quota exhausted"))
		working := tts.NewMock()

		chain, err := tts.NewChain(failing, working)
		if err != nil {
			t.Fatalf("NewChain: %v", err)
		}
		defer chain.Close()

		result, err := chain.Synthesize(ctx, "Hello")
		if err != nil {
			t.Fatalf("Synthesize: %v", err)
		}
		if result == nil || working.CallCount("Synthesize") != 1 {
			t.Error("fallback provider should have served the request")
		}
	})

	t.Run("streaming falls back", func(t *testing.T) {
		failing := tts.WithError(errors.New("socket refused"))
		working := tts.NewMock()

		chain, err := tts.NewChain(failing, working)
		if err != nil {
			t.Fatalf("NewChain: %v", err)
		}
		defer chain.Close()

		stream, err := chain.Stream(ctx, "Hello")
		if err != nil {
			t.Fatalf("Stream: %v", err)
		}
		stream.Close()
	})

	t.Run("all failures surface in a ChainError", func(t *testing.T) {
		sentinel := errors.New("quota exhausted")

		chain, err := tts.NewChain(tts.WithError(sentinel), tts.WithError(errors.New("also down")))
		if err != nil {
			t.Fatalf("NewChain: %v", err)
		}
		defer chain.Close()

		_, err = chain.Synthesize(ctx, "Hello")
		if !errors.Is(err, sentinel) {
			t.Errorf("expected chain error to wrap the provider failure, got %v", err)
		}

		var chainErr *tts.ChainError
		if !errors.As(err, &chainErr) || len(chainErr.Errors) != 2 {
			t.Errorf("expected ChainError with both failures, got %v", err)
		}
	})

	t.Run("health passes while one provider is up", func(t *testing.T) {
		chain, err := tts.NewChain(tts.WithError(errors.New("down")), tts.NewMock())
		if err != nil {
			t.Fatalf("NewChain: %v", err)
		}
		defer chain.Close()

		if err := chain.Health(ctx); err != nil {
			t.Errorf("Health: %v", err)
		}
	})

	t.Run("providers keeps fallback order", func(t *testing.T) {
		first := tts.NewMock()
		second := tts.NewMock()

		chain, _ := tts.NewChain(first, second)
		defer chain.Close()

		got := chain.Providers()
		if len(got) != 2 || got[0] != first || got[1] != second {
			t.Error("Providers should preserve construction order")
		}
	})
}

func TestProviderError(t *testing.T) {
	inner := errors.New("connection failed")
	err := tts.WrapError("elevenlabs", inner)

	if err.Error() != "tts [elevenlabs]: connection failed" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	var pe *tts.ProviderError
	if !errors.As(err, &pe) || pe.Provider != "elevenlabs" {
		t.Errorf("expected ProviderError for elevenlabs, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Error("wrapped cause should satisfy errors.Is")
	}

	if tts.WrapError("elevenlabs", nil) != nil {
		t.Error("nil error should stay nil")
	}
}
