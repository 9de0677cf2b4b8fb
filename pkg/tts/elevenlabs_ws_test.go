package tts_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/ashmitan/go-may/pkg/tts"
)

var upgrader = websocket.Upgrader{}

// wsTestServer runs handler against each socket and returns a ws:// URL.
func wsTestServer(t *testing.T, handler func(r *http.Request, conn *websocket.Conn)) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(r, conn)
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func newTestElevenLabsWS(t *testing.T, url string) *tts.ElevenLabsWS {
	t.Helper()
	provider, err := tts.NewElevenLabsWS(
		tts.WithAPIKey("test-key"),
		tts.WithBaseURL(url),
	)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return provider
}

// readClientMessages consumes the BOS, text, and EOS frames.
func readClientMessages(conn *websocket.Conn, n int) error {
	for i := 0; i < n; i++ {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
	}
	return nil
}

func TestWSSynthesize(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	var gotPath, gotKey, gotFormat string
	url := wsTestServer(t, func(r *http.Request, conn *websocket.Conn) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotFormat = r.URL.Query().Get("output_format")

		if err := readClientMessages(conn, 3); err != nil {
			return
		}
		conn.WriteJSON(map[string]any{
			"audio": base64.StdEncoding.EncodeToString(pcm[:4]),
		})
		conn.WriteJSON(map[string]any{
			"audio":   base64.StdEncoding.EncodeToString(pcm[4:]),
			"isFinal": true,
		})
	})

	provider := newTestElevenLabsWS(t, url)
	result, err := provider.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if gotPath != "/JBFqnCBsd6RMkjVDRZzb/stream-input" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected xi-api-key header, got %q", gotKey)
	}
	if gotFormat != "pcm_24000" {
		t.Errorf("socket synthesis must request PCM, got %q", gotFormat)
	}
	if !bytes.Equal(result.Audio, pcm) {
		t.Errorf("audio chunks not assembled in order: %v", result.Audio)
	}
	if result.Format.Encoding != tts.EncodingPCM24 {
		t.Errorf("expected pcm_24000 encoding, got %s", result.Format.Encoding)
	}
	if result.Format.SampleRate != 24000 {
		t.Errorf("expected 24000 sample rate, got %d", result.Format.SampleRate)
	}
}

func TestWSSynthesizeFinishesOnClose(t *testing.T) {
	url := wsTestServer(t, func(r *http.Request, conn *websocket.Conn) {
		if err := readClientMessages(conn, 3); err != nil {
			return
		}
		conn.WriteJSON(map[string]any{
			"audio": base64.StdEncoding.EncodeToString([]byte("pcm-bytes")),
		})
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	provider := newTestElevenLabsWS(t, url)
	result, err := provider.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(result.Audio) != "pcm-bytes" {
		t.Errorf("unexpected audio: %q", result.Audio)
	}
}

func TestWSSynthesizeNoAudio(t *testing.T) {
	url := wsTestServer(t, func(r *http.Request, conn *websocket.Conn) {
		if err := readClientMessages(conn, 3); err != nil {
			return
		}
		conn.WriteJSON(map[string]any{"isFinal": true})
	})

	provider := newTestElevenLabsWS(t, url)
	if _, err := provider.Synthesize(context.Background(), "hello"); err == nil {
		t.Error("expected error when no audio returned")
	}
}

func TestWSSetVoiceChangesDialTarget(t *testing.T) {
	var paths []string
	url := wsTestServer(t, func(r *http.Request, conn *websocket.Conn) {
		paths = append(paths, r.URL.Path)
		if err := readClientMessages(conn, 3); err != nil {
			return
		}
		conn.WriteJSON(map[string]any{
			"audio":   base64.StdEncoding.EncodeToString([]byte("x")),
			"isFinal": true,
		})
	})

	provider := newTestElevenLabsWS(t, url)
	if _, err := provider.Synthesize(context.Background(), "one"); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	provider.SetVoice("rachel")
	if provider.VoiceID() != "21m00Tcm4TlvDq8ikWAM" {
		t.Errorf("expected rachel voice ID, got %s", provider.VoiceID())
	}
	if _, err := provider.Synthesize(context.Background(), "two"); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if len(paths) != 2 || !strings.HasPrefix(paths[1], "/21m00Tcm4TlvDq8ikWAM/") {
		t.Errorf("voice change must reach the next dial, got %v", paths)
	}
}

func TestWSHealth(t *testing.T) {
	url := wsTestServer(t, func(r *http.Request, conn *websocket.Conn) {
		conn.ReadMessage() // wait for the client close
	})

	provider := newTestElevenLabsWS(t, url)
	if err := provider.Health(context.Background()); err != nil {
		t.Errorf("Health failed: %v", err)
	}
}

func TestWSHealthUnreachable(t *testing.T) {
	provider := newTestElevenLabsWS(t, "ws://127.0.0.1:1")
	if err := provider.Health(context.Background()); err == nil {
		t.Error("expected error for unreachable endpoint")
	}
}
