package stt

import (
	"log/slog"
	"time"
)

// Config holds recognizer and listener configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Provider credentials. Empty APIKey falls back to Application
	// Default Credentials.
	APIKey   string
	Endpoint string

	// Recognition
	LanguageCode string
	Model        string
	Timeout      time.Duration

	// Endpointing
	EnergyThreshold  float64
	DynamicRatio     float64
	CalibrateFor     time.Duration
	PauseThreshold   time.Duration
	MinPhrase        time.Duration
	PreRoll          time.Duration
	DefaultPhraseCap time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring speech-to-text.
type Option func(*Config)

// WithAPIKey sets the Google API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEndpoint overrides the default API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithLanguage sets the recognition language code.
func WithLanguage(code string) Option {
	return func(c *Config) {
		c.LanguageCode = code
	}
}

// WithModel sets the recognition model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithTimeout sets the recognition request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithEnergyThreshold sets the minimum RMS energy treated as speech.
func WithEnergyThreshold(threshold float64) Option {
	return func(c *Config) {
		c.EnergyThreshold = threshold
	}
}

// WithPauseThreshold sets how much silence ends a phrase.
func WithPauseThreshold(pause time.Duration) Option {
	return func(c *Config) {
		c.PauseThreshold = pause
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		LanguageCode:     "en-US",
		Model:            "command_and_search", // Tuned for short assistant queries
		Timeout:          10 * time.Second,
		EnergyThreshold:  300,
		DynamicRatio:     1.5,
		CalibrateFor:     500 * time.Millisecond,
		PauseThreshold:   800 * time.Millisecond,
		MinPhrase:        300 * time.Millisecond,
		PreRoll:          300 * time.Millisecond,
		DefaultPhraseCap: 10 * time.Second,
		Logger:           slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that the configuration is usable.
// An API key is optional; without one the recognizer uses Application
// Default Credentials.
func (c *Config) Validate() error {
	return nil
}
