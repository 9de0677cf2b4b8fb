package inference

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashmitan/go-may/internal/httpc"
)

const providerGemini = "gemini"

// Gemini is a provider for Google's Gemini API. The wire format is
// unrelated to OpenAI's, so it gets its own request builder.
type Gemini struct {
	baseURL string
	apiKey  string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewGemini creates a Gemini provider. Requires an API key.
func NewGemini(opts ...Option) (*Gemini, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	cfg.Model = "gemini-2.0-flash"
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, WrapError(providerGemini, ErrNoAPIKey)
	}

	return &Gemini{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "inference.gemini"),
	}, nil
}

// Chat generates a chat completion via the generateContent endpoint.
func (g *Gemini) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	model := cmp.Or(req.Model, g.config.Model)

	resp, err := g.post(ctx, model, g.generatePayload(req))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.parseError(resp)
	}

	var envelope geminiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("decode reply: %w", err))
	}

	// Gemini can report errors inside a 200 body.
	if envelope.Error.Message != "" {
		return nil, &APIError{
			Provider:   providerGemini,
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Status,
			Message:    envelope.Error.Message,
		}
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return nil, WrapError(providerGemini, fmt.Errorf("reply had no candidates"))
	}

	candidate := envelope.Candidates[0]
	return &ChatResponse{
		Message:      NewAssistantMessage(candidate.Content.Parts[0].Text),
		FinishReason: candidate.FinishReason,
		Model:        model,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// Health sends a one-token completion; there is no cheaper endpoint
// that also validates the key.
func (g *Gemini) Health(ctx context.Context) error {
	_, err := g.Chat(ctx, &ChatRequest{
		Messages:  []Message{NewUserMessage("test")},
		MaxTokens: 1,
	})
	return err
}

// Close releases idle connections.
func (g *Gemini) Close() error {
	g.http.CloseIdleConnections()
	return nil
}

// generatePayload builds the generateContent request. Gemini carries
// system text in a separate systemInstruction field and labels
// assistant turns with the "model" role.
func (g *Gemini) generatePayload(req *ChatRequest) map[string]any {
	var contents []map[string]any
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			continue
		}
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, map[string]any{
			"role":  role,
			"parts": []map[string]any{{"text": msg.Content}},
		})
	}

	payload := map[string]any{
		"contents": contents,
		"generationConfig": map[string]any{
			"temperature":     cmp.Or(req.Temperature, g.config.Temperature),
			"maxOutputTokens": cmp.Or(req.MaxTokens, g.config.MaxTokens),
		},
	}

	if system := systemText(req.Messages); system != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": system}},
		}
	}
	return payload
}

// post sends payload to model's generateContent endpoint. The key
// rides in the query string; that is how this API authenticates.
func (g *Gemini) post(ctx context.Context, model string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("encode payload: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpc.DoRetry(ctx, g.http, g.logger, req, body, g.config.MaxRetries+1, g.config.RetryDelay)
	if err != nil {
		return nil, WrapError(providerGemini, err)
	}
	return resp, nil
}

func (g *Gemini) parseError(resp *http.Response) error {
	return readAPIError(providerGemini, resp, func(body []byte) (string, string, bool) {
		var envelope struct {
			Error geminiStatus `json:"error"`
		}
		if json.Unmarshal(body, &envelope) != nil || envelope.Error.Message == "" {
			return "", "", false
		}
		return envelope.Error.Status, envelope.Error.Message, true
	})
}

// Wire types for the generateContent endpoint.

type geminiEnvelope struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      geminiStatus      `json:"error"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiStatus struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

var _ Provider = (*Gemini)(nil)
