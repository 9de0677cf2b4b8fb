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

const providerClient = "client"

// Client talks to any OpenAI-compatible chat completion API: OpenAI
// itself, or local gateways like Ollama and vLLM. It is the escape
// hatch for running the assistant against a self-hosted model.
type Client struct {
	baseURL string
	apiKey  string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a client. Defaults target OpenAI; point BaseURL at
// any compatible gateway. No API key is fine for local gateways.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://api.openai.com/v1"
	cfg.Model = "gpt-4o-mini"
	cfg.Apply(opts...)

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "inference.client"),
	}, nil
}

// Chat generates a completion via the chat completions endpoint.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	model := cmp.Or(req.Model, c.config.Model)

	resp, err := c.post(ctx, "/chat/completions", c.chatPayload(req, model))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var envelope completionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, WrapError(providerClient, fmt.Errorf("decode reply: %w", err))
	}
	if len(envelope.Choices) == 0 {
		return nil, WrapError(providerClient, fmt.Errorf("reply had no choices"))
	}

	choice := envelope.Choices[0]
	return &ChatResponse{
		Message:      NewAssistantMessage(choice.Message.Content),
		FinishReason: choice.FinishReason,
		Usage:        envelope.Usage.usage(),
		Model:        envelope.Model,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// Health checks connectivity by listing models.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return WrapError(providerClient, fmt.Errorf("build request: %w", err))
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return WrapError(providerClient, fmt.Errorf("health request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// chatPayload builds the request body. Zero-valued request fields fall
// back to the configured defaults.
func (c *Client) chatPayload(req *ChatRequest, model string) map[string]any {
	messages := make([]map[string]any, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = map[string]any{
			"role":    string(msg.Role),
			"content": msg.Content,
		}
	}

	payload := map[string]any{
		"model":    model,
		"messages": messages,
	}

	if maxTokens := cmp.Or(req.MaxTokens, c.config.MaxTokens); maxTokens > 0 {
		payload["max_tokens"] = maxTokens
	}
	if temp := cmp.Or(req.Temperature, c.config.Temperature); temp > 0 {
		payload["temperature"] = temp
	}
	if req.TopP > 0 {
		payload["top_p"] = req.TopP
	}
	if len(req.Stop) > 0 {
		payload["stop"] = req.Stop
	}
	return payload
}

// post sends payload as JSON, retrying per the retry config. The
// response comes back unconsumed, API error bodies included.
func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerClient, fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerClient, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := httpc.DoRetry(ctx, c.http, c.logger, req, body, c.config.MaxRetries+1, c.config.RetryDelay)
	if err != nil {
		return nil, WrapError(providerClient, err)
	}
	return resp, nil
}

func (c *Client) parseError(resp *http.Response) error {
	return readAPIError(providerClient, resp, func(body []byte) (string, string, bool) {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) != nil || envelope.Error.Message == "" {
			return "", "", false
		}
		return envelope.Error.Code, envelope.Error.Message, true
	})
}

// Wire types for the chat completions endpoint.

type completionEnvelope struct {
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
	Usage   completionUsage    `json:"usage"`
}

type completionChoice struct {
	Message      completionMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u completionUsage) usage() Usage {
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

var _ Provider = (*Client)(nil)
