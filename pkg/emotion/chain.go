package emotion

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain tries detectors in order until one succeeds. With the lexical
// detector last the chain never fails, which is how the assistant wires
// it.
type Chain struct {
	detectors []Detector
	logger    *slog.Logger
}

var _ Detector = (*Chain)(nil)

// NewChain creates a detector chain. Order matters: first success wins.
func NewChain(detectors ...Detector) *Chain {
	return &Chain{
		detectors: detectors,
		logger:    slog.Default().With("component", "emotion.chain"),
	}
}

// NewDefault builds the standard chain: Hume when the key is usable,
// lexical scoring always as the last resort.
func NewDefault(apiKey string) *Chain {
	var detectors []Detector
	if hume, err := NewHume(WithAPIKey(apiKey)); err == nil {
		detectors = append(detectors, hume)
	}
	detectors = append(detectors, NewLexical())
	return NewChain(detectors...)
}

// Detect tries each detector in order.
func (c *Chain) Detect(ctx context.Context, text string) (*Result, error) {
	var lastErr error
	for _, d := range c.detectors {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := d.Detect(ctx, text)
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.logger.Warn("detector failed, trying next",
			"detector", d.Name(),
			"error", err,
		)
	}
	return nil, fmt.Errorf("emotion: all detectors failed: %w", lastErr)
}

// Name identifies the detector backend.
func (c *Chain) Name() string {
	return "chain"
}
