package emotion

import (
	"context"
	"errors"
	"testing"
)

func TestChainFirstSuccess(t *testing.T) {
	primary := NewMockDetector().WithResult(&Result{Primary: "Excitement", Score: 0.9})
	chain := NewChain(primary, NewLexical())

	result, err := chain.Detect(context.Background(), "we won the championship")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if result.Primary != "Excitement" {
		t.Errorf("Primary = %s, want Excitement", result.Primary)
	}
}

func TestChainFallsBackToLexical(t *testing.T) {
	primary := NewMockDetector().WithError(errors.New("service down"))
	chain := NewChain(primary, NewLexical())

	result, err := chain.Detect(context.Background(), "I'm so excited today")
	if err != nil {
		t.Fatalf("chain with lexical last should never fail: %v", err)
	}
	if result.Primary != BucketJoy {
		t.Errorf("Primary = %s, want %s", result.Primary, BucketJoy)
	}
	if result.Score != FallbackScore {
		t.Errorf("Score = %v, want %v", result.Score, FallbackScore)
	}
	if primary.CallCount() != 1 {
		t.Errorf("primary called %d times, want 1", primary.CallCount())
	}
}

func TestChainAllFail(t *testing.T) {
	a := NewMockDetector().WithError(errors.New("down"))
	b := NewMockDetector().WithError(errors.New("also down"))
	chain := NewChain(a, b)

	if _, err := chain.Detect(context.Background(), "hello"); err == nil {
		t.Error("expected error when every detector fails")
	}
}

func TestChainContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := NewChain(NewLexical())
	if _, err := chain.Detect(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewDefaultWithoutKey(t *testing.T) {
	// Placeholder keys must not produce a network detector.
	chain := NewDefault("YOUR_HUME_API_KEY")

	result, err := chain.Detect(context.Background(), "what a great day")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if result.Primary != BucketJoy {
		t.Errorf("Primary = %s, want %s", result.Primary, BucketJoy)
	}
	if len(chain.detectors) != 1 {
		t.Errorf("chain has %d detectors, want lexical only", len(chain.detectors))
	}
}
