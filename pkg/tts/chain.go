package tts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Chain is a Provider that falls back through a list of providers.
// Every call walks the list in order and the first success wins.
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
		logger:    slog.Default().With("component", "tts.chain"),
	}, nil
}

// NewChainWithLogger builds a fallback chain with a custom logger.
func NewChainWithLogger(logger *slog.Logger, providers ...Provider) (*Chain, error) {
	c, err := NewChain(providers...)
	if err != nil {
		return nil, err
	}
	c.logger = logger.With("component", "tts.chain")
	return c, nil
}

// attempt walks the chain until call succeeds for some provider.
// Context cancellation stops the walk immediately.
func attempt[T any](ctx context.Context, c *Chain, op string, call func(Provider) (T, error)) (T, error) {
	var failures []error

	for i, p := range c.providers {
		result, err := call(p)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback provider succeeded",
					"op", op,
					"provider_index", i,
				)
			}
			return result, nil
		}

		failures = append(failures, err)
		c.logger.Warn("provider failed, trying next",
			"op", op,
			"provider_index", i,
			"error", err,
		)

		if ctx.Err() != nil {
			var zero T
			return zero, ctx.Err()
		}
	}

	var zero T
	return zero, &ChainError{Errors: failures}
}

// Synthesize returns audio from the first provider that succeeds.
func (c *Chain) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	return attempt(ctx, c, "synthesize", func(p Provider) (*AudioResult, error) {
		return p.Synthesize(ctx, text)
	})
}

// Stream returns a stream from the first provider that succeeds.
func (c *Chain) Stream(ctx context.Context, text string) (AudioStream, error) {
	return attempt(ctx, c, "stream", func(p Provider) (AudioStream, error) {
		return p.Stream(ctx, text)
	})
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
		return "tts: chain failed"
	case 1:
		return fmt.Sprintf("tts: %v", e.Errors[0])
	}

	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("tts: all %d providers failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *ChainError) Unwrap() []error {
	return e.Errors
}

var _ Provider = (*Chain)(nil)
