package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Chain is a Provider that falls back through a list of providers.
// The assistant builds one over several model versions so a degraded
// API answers with an older model instead of not at all.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain builds a fallback chain. At least one provider is required.
func NewChain(providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, ErrProviderUnavailable
	}
	return &Chain{
		providers: providers,
		logger:    slog.Default().With("component", "inference.chain"),
	}, nil
}

// Chat walks the chain and returns the first completion that succeeds.
// Context cancellation stops the walk immediately.
func (c *Chain) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var failures []error

	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := p.Chat(ctx, req)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback model succeeded", "provider_index", i)
			}
			return resp, nil
		}

		failures = append(failures, err)
		c.logger.Warn("model failed, trying next",
			"provider_index", i,
			"error", err,
		)
	}

	return nil, &ChainError{Errors: failures}
}

// Health passes while at least one provider is healthy.
func (c *Chain) Health(ctx context.Context) error {
	healthy := 0
	var lastErr error

	for _, p := range c.providers {
		if err := p.Health(ctx); err != nil {
			lastErr = err
			continue
		}
		healthy++
	}

	if healthy == 0 {
		return fmt.Errorf("all %d providers unhealthy: %w", len(c.providers), lastErr)
	}
	return nil
}

// Close closes every provider and returns the last error seen.
func (c *Chain) Close() error {
	var lastErr error
	for _, p := range c.providers {
		if err := p.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Providers returns the chain's providers in fallback order.
func (c *Chain) Providers() []Provider {
	return c.providers
}

// ChainError reports that every provider in the chain failed.
type ChainError struct {
	Errors []error
}

func (e *ChainError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "inference: chain failed"
	case 1:
		return fmt.Sprintf("inference: %v", e.Errors[0])
	}

	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("inference: all %d providers failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *ChainError) Unwrap() []error {
	return e.Errors
}

var _ Provider = (*Chain)(nil)
