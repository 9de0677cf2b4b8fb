package emotion

import (
	"log/slog"
	"time"
)

// Config holds settings for the Hume detector.
type Config struct {
	// APIKey authenticates against the Hume API.
	APIKey string

	// BaseURL overrides the API endpoint (used in tests).
	BaseURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// PollInterval is the wait between prediction polls after a job is
	// submitted.
	PollInterval time.Duration

	// PollAttempts bounds how often predictions are polled before
	// giving up.
	PollAttempts int

	// Logger for detector events.
	Logger *slog.Logger
}

// DefaultConfig returns the default Hume detector configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		PollInterval: time.Second,
		PollAttempts: 3,
		Logger:       slog.Default(),
	}
}

// Option configures the detector.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithPolling sets the prediction poll interval and attempt bound.
func WithPolling(interval time.Duration, attempts int) Option {
	return func(c *Config) {
		if interval > 0 {
			c.PollInterval = interval
		}
		if attempts > 0 {
			c.PollAttempts = attempts
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// Apply applies options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that the config is usable.
func (c *Config) Validate() error {
	if IsPlaceholder(c.APIKey) {
		return ErrNotConfigured
	}
	return nil
}
