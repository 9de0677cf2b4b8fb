package tts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashmitan/go-may/pkg/tts"
)

func newTestElevenLabs(t *testing.T, handler http.Handler) (*tts.ElevenLabs, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := tts.NewElevenLabs(
		tts.WithAPIKey("test-key"),
		tts.WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { provider.Close() })

	return provider, server
}

func TestElevenLabsSynthesize(t *testing.T) {
	var gotPath, gotFormat, gotKey string
	provider, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("output_format")
		gotKey = r.Header.Get("xi-api-key")
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))

	result, err := provider.Synthesize(context.Background(), "Hello there")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if gotPath != "/text-to-speech/JBFqnCBsd6RMkjVDRZzb" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotFormat != string(tts.EncodingMP3) {
		t.Errorf("expected mp3_44100_128 output format, got %s", gotFormat)
	}
	if gotKey != "test-key" {
		t.Errorf("expected xi-api-key header, got %s", gotKey)
	}
	if string(result.Audio) != "mp3-bytes" {
		t.Errorf("unexpected audio: %q", result.Audio)
	}
	if result.CharCount != 11 {
		t.Errorf("expected 11 chars, got %d", result.CharCount)
	}
}

func TestElevenLabsSetVoice(t *testing.T) {
	var paths []string
	provider, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte("audio"))
	}))

	ctx := context.Background()
	if _, err := provider.Synthesize(ctx, "one"); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	provider.SetVoice("rachel")
	if provider.VoiceID() != "21m00Tcm4TlvDq8ikWAM" {
		t.Errorf("expected rachel voice ID, got %s", provider.VoiceID())
	}

	if _, err := provider.Synthesize(ctx, "two"); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(paths))
	}
	if paths[1] != "/text-to-speech/21m00Tcm4TlvDq8ikWAM" {
		t.Errorf("expected second request to use rachel, got %s", paths[1])
	}
}

func TestElevenLabsSetVoiceRawID(t *testing.T) {
	provider, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio"))
	}))

	provider.SetVoice("custom-id-123")
	if provider.VoiceID() != "custom-id-123" {
		t.Errorf("expected raw ID pass-through, got %s", provider.VoiceID())
	}
}

func TestElevenLabsListVoices(t *testing.T) {
	provider, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voices": [
			{"voice_id": "JBFqnCBsd6RMkjVDRZzb", "name": "George"},
			{"voice_id": "21m00Tcm4TlvDq8ikWAM", "name": "Rachel"}
		]}`))
	}))

	voices, err := provider.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices failed: %v", err)
	}

	if len(voices) != 2 {
		t.Fatalf("expected 2 voices, got %d", len(voices))
	}
	if voices[0].Name != "George" || voices[0].VoiceID != "JBFqnCBsd6RMkjVDRZzb" {
		t.Errorf("unexpected first voice: %+v", voices[0])
	}
}

func TestElevenLabsRetriesServerError(t *testing.T) {
	var hits int
	provider, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("audio"))
	}))

	result, err := provider.Synthesize(context.Background(), "retry me")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(result.Audio) == 0 {
		t.Error("expected audio after retry")
	}
	if hits != 2 {
		t.Errorf("expected 2 requests, got %d", hits)
	}
}

func TestElevenLabsErrorParsing(t *testing.T) {
	provider, _ := newTestElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": {"status": "invalid_api_key", "message": "Invalid API key"}}`))
	}))

	_, err := provider.Synthesize(context.Background(), "fail")
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := err.(*tts.APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("expected 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid API key" {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
}

func TestElevenLabsRequiresKey(t *testing.T) {
	_, err := tts.NewElevenLabs()
	if err != tts.ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}
