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

const (
	providerAnthropic = "anthropic"

	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// DefaultAnthropicModels is the fallback order the assistant uses:
// newest model first, older one when the newest is unavailable.
var DefaultAnthropicModels = []string{
	"claude-sonnet-4-5-20250929",
	"claude-3-5-sonnet-20241022",
}

// Anthropic is a provider for the Anthropic Messages API.
type Anthropic struct {
	baseURL string
	apiKey  string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewAnthropic creates an Anthropic provider. Requires an API key.
func NewAnthropic(opts ...Option) (*Anthropic, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = anthropicBaseURL
	cfg.Model = DefaultAnthropicModels[0]
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	return &Anthropic{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "inference.anthropic"),
	}, nil
}

// NewAnthropicChain builds a chain of Anthropic providers, one per
// model, tried in order. With no models given it uses
// DefaultAnthropicModels.
func NewAnthropicChain(apiKey string, models ...string) (*Chain, error) {
	if len(models) == 0 {
		models = DefaultAnthropicModels
	}

	providers := make([]Provider, 0, len(models))
	for _, model := range models {
		p, err := NewAnthropic(WithAPIKey(apiKey), WithModel(model))
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	return NewChain(providers...)
}

// Chat generates a chat completion via the Messages API.
func (a *Anthropic) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	model := cmp.Or(req.Model, a.config.Model)

	resp, err := a.post(ctx, "/v1/messages", a.messagesPayload(req, model))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, a.parseError(resp)
	}

	var envelope anthropicEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("decode reply: %w", err))
	}

	text := envelope.text()
	if text == "" {
		return nil, WrapError(providerAnthropic, fmt.Errorf("reply had no text blocks"))
	}

	return &ChatResponse{
		Message:      NewAssistantMessage(text),
		FinishReason: envelope.StopReason,
		Usage: Usage{
			PromptTokens:     envelope.Usage.InputTokens,
			CompletionTokens: envelope.Usage.OutputTokens,
			TotalTokens:      envelope.Usage.InputTokens + envelope.Usage.OutputTokens,
		},
		Model:     envelope.Model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Health checks API connectivity and key validity.
func (a *Anthropic) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/models", nil)
	if err != nil {
		return WrapError(providerAnthropic, fmt.Errorf("build request: %w", err))
	}
	a.setHeaders(req)

	resp, err := a.http.Do(req)
	if err != nil {
		return WrapError(providerAnthropic, fmt.Errorf("health request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return a.parseError(resp)
	}
	return nil
}

// Close releases idle connections.
func (a *Anthropic) Close() error {
	a.http.CloseIdleConnections()
	return nil
}

// Model returns the model this provider targets.
func (a *Anthropic) Model() string {
	return a.config.Model
}

// messagesPayload builds the Messages API request. System messages
// move to the top-level system field; the API rejects them in the
// messages array.
func (a *Anthropic) messagesPayload(req *ChatRequest, model string) map[string]any {
	messages := make([]map[string]string, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			continue
		}
		messages = append(messages, map[string]string{
			"role":    string(msg.Role),
			"content": msg.Content,
		})
	}

	payload := map[string]any{
		"model":      model,
		"max_tokens": cmp.Or(req.MaxTokens, a.config.MaxTokens),
		"messages":   messages,
	}

	if system := systemText(req.Messages); system != "" {
		payload["system"] = system
	}
	if temp := cmp.Or(req.Temperature, a.config.Temperature); temp > 0 {
		payload["temperature"] = temp
	}
	if req.TopP > 0 {
		payload["top_p"] = req.TopP
	}
	if len(req.Stop) > 0 {
		payload["stop_sequences"] = req.Stop
	}
	return payload
}

// post sends payload as JSON, retrying per the retry config.
func (a *Anthropic) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerAnthropic, fmt.Errorf("build request: %w", err))
	}
	a.setHeaders(req)

	resp, err := httpc.DoRetry(ctx, a.http, a.logger, req, body, a.config.MaxRetries+1, a.config.RetryDelay)
	if err != nil {
		return nil, WrapError(providerAnthropic, err)
	}
	return resp, nil
}

// setHeaders sets authentication and version headers.
func (a *Anthropic) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

func (a *Anthropic) parseError(resp *http.Response) error {
	return readAPIError(providerAnthropic, resp, func(body []byte) (string, string, bool) {
		var envelope struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) != nil || envelope.Error.Message == "" {
			return "", "", false
		}
		return envelope.Error.Type, envelope.Error.Message, true
	})
}

// Wire types for the Messages API.

type anthropicEnvelope struct {
	Model      string           `json:"model"`
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Usage      anthropicUsage   `json:"usage"`
}

// text returns the first text block's content.
func (e anthropicEnvelope) text() string {
	for _, block := range e.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

var _ Provider = (*Anthropic)(nil)
