// Package emotion ranks the emotional tone of user utterances. The
// primary detector calls the Hume batch API; a local lexical scorer
// stands in whenever the service is unreachable, so detection as a
// whole never fails.
package emotion

import (
	"context"
	"errors"
	"strings"
)

// Package errors.
var (
	ErrNotConfigured = errors.New("emotion: detector not configured")
	ErrNoEmotions    = errors.New("emotion: no emotions in response")
)

// Score is one emotion label with its confidence.
type Score struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Result is a ranked emotion readout for one utterance.
type Result struct {
	// Primary is the strongest emotion label, e.g. "Joy".
	Primary string

	// Confidence of the primary label in [0, 1].
	Score float64

	// Top holds up to three labels, strongest first. Empty when the
	// lexical fallback produced the result.
	Top []Score
}

// Detector ranks the emotional tone of text.
type Detector interface {
	// Detect analyzes one utterance.
	Detect(ctx context.Context, text string) (*Result, error)

	// Name identifies the detector backend.
	Name() string
}

// IsPlaceholder reports whether an API key is unset or still the
// sample value from a template env file.
func IsPlaceholder(key string) bool {
	return key == "" || strings.HasPrefix(key, "YOUR")
}
