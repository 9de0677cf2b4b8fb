package tts

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAPIKey means the provider configuration lacks an API key.
	ErrNoAPIKey = errors.New("tts: API key required")

	// ErrNoVoiceID means the provider configuration lacks a voice.
	ErrNoVoiceID = errors.New("tts: voice ID required")

	// ErrProviderUnavailable means no provider could serve the request.
	ErrProviderUnavailable = errors.New("tts: no providers available")
)

// APIError is a non-2xx response from a synthesis API.
type APIError struct {
	// Provider identifies which provider answered.
	Provider string

	// StatusCode is the HTTP status.
	StatusCode int

	// Code is the provider's machine-readable error code, when given.
	Code string

	// Message is the provider's error text.
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tts [%s]: API error %d (%s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("tts [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRateLimited reports whether the provider rejected the request for
// quota reasons.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsUnauthorized reports whether the API key was rejected.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsServerError reports whether the provider failed on its side.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable reports whether retrying the same request could help.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// ProviderError tags an error with the provider it came from, so chain
// failures stay attributable.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("tts [%s]: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError tags err with the provider name. A nil err stays nil.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
