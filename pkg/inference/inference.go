// Package inference generates the assistant's conversational replies.
//
// Chat completion sits behind a single Provider interface so the
// assistant can talk to Anthropic, Gemini, or any OpenAI-compatible
// API, and fall back across them in order when one is down.
//
//	provider, _ := inference.NewAnthropic(
//	    inference.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
//	)
//	defer provider.Close()
//
//	resp, _ := provider.Chat(ctx, &inference.ChatRequest{
//	    Messages: []inference.Message{inference.NewUserMessage("Hello!")},
//	})
package inference

import "context"

// Provider is a chat completion backend.
type Provider interface {
	// Chat generates a reply to a conversation.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Health checks connectivity and key validity.
	Health(ctx context.Context) error

	// Close releases resources held by the provider.
	Close() error
}

// ChatRequest is one completion request. Zero values defer to the
// provider's configured defaults.
type ChatRequest struct {
	Messages []Message

	// Model overrides the configured model.
	Model string

	MaxTokens   int
	Temperature float64
	TopP        float64

	// Stop lists sequences that halt generation.
	Stop []string
}

// ChatResponse is a completed reply.
type ChatResponse struct {
	Message      Message
	FinishReason string
	Usage        Usage

	// Model that actually answered, as reported by the API.
	Model string

	// LatencyMs is the wall time of the API call.
	LatencyMs int64
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
