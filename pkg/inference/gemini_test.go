package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiOKBody(text string) string {
	return `{
		"candidates": [{
			"content": {"parts": [{"text": "` + text + `"}]},
			"finishReason": "STOP"
		}]
	}`
}

func TestGeminiChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("Expected generateContent path, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("Expected key in query, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiOKBody("Hi from Gemini")))
	}))
	defer server.Close()

	provider, err := NewGemini(WithBaseURL(server.URL), WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	defer provider.Close()

	resp, err := provider.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("Hello")},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Message.Content != "Hi from Gemini" {
		t.Errorf("Unexpected content: %s", resp.Message.Content)
	}
	if resp.Message.Role != RoleAssistant {
		t.Errorf("Expected assistant role, got %s", resp.Message.Role)
	}
	if resp.FinishReason != "STOP" {
		t.Errorf("Expected STOP, got %s", resp.FinishReason)
	}
}

func TestGeminiRolesAndSystem(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiOKBody("ok")))
	}))
	defer server.Close()

	provider, _ := NewGemini(WithBaseURL(server.URL), WithAPIKey("k"))
	defer provider.Close()

	_, err := provider.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			NewSystemMessage("You are May."),
			NewUserMessage("Hi"),
			NewAssistantMessage("Hello!"),
			NewUserMessage("How are you?"),
		},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if got["systemInstruction"] == nil {
		t.Error("Expected system text in systemInstruction")
	}

	contents := got["contents"].([]interface{})
	if len(contents) != 3 {
		t.Fatalf("Expected 3 contents after extracting system, got %d", len(contents))
	}
	roles := make([]string, len(contents))
	for i, c := range contents {
		roles[i] = c.(map[string]interface{})["role"].(string)
	}
	if roles[0] != "user" || roles[1] != "model" || roles[2] != "user" {
		t.Errorf("Unexpected roles: %v", roles)
	}
}

func TestGeminiErrorInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": {"message": "quota exceeded", "code": 429}}`))
	}))
	defer server.Close()

	provider, _ := NewGemini(WithBaseURL(server.URL), WithAPIKey("k"))
	defer provider.Close()

	_, err := provider.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("Hi")},
	})
	if err == nil {
		t.Fatal("Expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.Message != "quota exceeded" {
		t.Errorf("Unexpected message: %s", apiErr.Message)
	}
	if apiErr.Provider != providerGemini {
		t.Errorf("Expected gemini provider, got %s", apiErr.Provider)
	}
}

func TestGeminiHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid request", "code": 400}}`))
	}))
	defer server.Close()

	provider, _ := NewGemini(WithBaseURL(server.URL), WithAPIKey("k"))
	defer provider.Close()

	_, err := provider.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("Hi")},
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.StatusCode != 400 {
		t.Errorf("Expected 400, got %d", apiErr.StatusCode)
	}
}

func TestGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini()
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Expected ErrNoAPIKey, got %v", err)
	}
}
