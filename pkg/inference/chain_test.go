package inference

import (
	"context"
	"errors"
	"testing"
)

func TestChainFallsBack(t *testing.T) {
	failing := WithError(errors.New("primary down"))
	working := NewMock()
	working.ChatFunc = func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
		return &ChatResponse{Message: NewAssistantMessage("from fallback"), FinishReason: "stop"}, nil
	}

	chain, err := NewChain(failing, working)
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	defer chain.Close()

	resp, err := chain.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message.Content != "from fallback" {
		t.Errorf("Unexpected content: %s", resp.Message.Content)
	}
	if failing.CallCount("Chat") != 1 {
		t.Error("Expected the primary to be tried first")
	}
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := NewMock()
	second := NewMock()

	chain, _ := NewChain(first, second)
	defer chain.Close()

	if _, err := chain.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("hi")},
	}); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if second.CallCount("Chat") != 0 {
		t.Error("Second provider should stay untouched when the first succeeds")
	}
}

func TestChainCollectsAllFailures(t *testing.T) {
	chain, _ := NewChain(
		WithError(errors.New("first down")),
		WithError(errors.New("second down")),
	)
	defer chain.Close()

	_, err := chain.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("hi")},
	})
	if err == nil {
		t.Fatal("Expected error when every provider fails")
	}

	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("Expected ChainError, got %T", err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("Expected 2 recorded failures, got %d", len(chainErr.Errors))
	}
}

func TestChainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := NewMock()
	chain, _ := NewChain(mock)
	defer chain.Close()

	_, err := chain.Chat(ctx, &ChatRequest{Messages: []Message{NewUserMessage("hi")}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if mock.CallCount("Chat") != 0 {
		t.Error("Cancelled context should stop the walk before any provider")
	}
}

func TestChainHealth(t *testing.T) {
	t.Run("One healthy provider passes", func(t *testing.T) {
		chain, _ := NewChain(NewMock(), WithError(errors.New("down")))
		defer chain.Close()

		if err := chain.Health(context.Background()); err != nil {
			t.Errorf("Health should pass with one healthy provider: %v", err)
		}
	})

	t.Run("All unhealthy fails", func(t *testing.T) {
		chain, _ := NewChain(
			WithError(errors.New("down 1")),
			WithError(errors.New("down 2")),
		)
		defer chain.Close()

		if err := chain.Health(context.Background()); err == nil {
			t.Error("Health should fail when every provider is unhealthy")
		}
	})
}

func TestChainRequiresProviders(t *testing.T) {
	_, err := NewChain()
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("Expected ErrProviderUnavailable, got %v", err)
	}
}

func TestChainProviders(t *testing.T) {
	chain, _ := NewChain(NewMock(), NewMock())
	defer chain.Close()

	if n := len(chain.Providers()); n != 2 {
		t.Errorf("Expected 2 providers, got %d", n)
	}
}
