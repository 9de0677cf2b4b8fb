package assistant

import (
	"os"
	"time"

	"github.com/ashmitan/go-may/internal/config"
)

// Default listen windows for the two loops.
const (
	// DefaultPassivePhraseLimit caps a single passive-mode utterance.
	// The passive listen itself blocks without a timeout.
	DefaultPassivePhraseLimit = 8 * time.Second

	// DefaultConversationTimeout is how long conversation mode waits
	// for speech to start before re-engaging.
	DefaultConversationTimeout = 10 * time.Second

	// DefaultConversationPhraseLimit caps a conversation utterance.
	DefaultConversationPhraseLimit = 10 * time.Second
)

// Config holds all configuration for the assistant application.
// Flag parsing is done in cmd/may/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool

	// API keys (typically from environment variables).
	AnthropicKey  string
	HumeKey       string
	ElevenLabsKey string

	// GoogleSTTKey authenticates speech recognition. Empty falls back
	// to application default credentials.
	GoogleSTTKey string

	// DisplayAddr is host:port of the side display. Empty disables
	// display mirroring.
	DisplayAddr string

	// DataDir holds the persisted assistant config (reminders,
	// timezone, voice preference).
	DataDir string

	// Audio capture backend ("auto", "portaudio", "mock") and input
	// device substring (empty means the system default).
	AudioBackend string
	AudioDevice  string

	// BatteryURL polls a remote JSON endpoint for charge level. Empty
	// tries the local sysfs supply; "off" disables battery checks.
	BatteryURL string

	// Listen windows.
	PassivePhraseLimit      time.Duration
	ConversationTimeout     time.Duration
	ConversationPhraseLimit time.Duration

	// ReengageCap bounds consecutive silent re-engagement prompts in
	// conversation mode. 0 keeps the conversation open until a
	// termination phrase.
	ReengageCap int

	// Dashboard web server.
	Dashboard     bool
	DashboardAddr string
}

// DefaultConfig returns sensible defaults for the assistant.
func DefaultConfig() Config {
	return Config{
		DataDir:                 config.DataDir(),
		AudioBackend:            "auto",
		PassivePhraseLimit:      DefaultPassivePhraseLimit,
		ConversationTimeout:     DefaultConversationTimeout,
		ConversationPhraseLimit: DefaultConversationPhraseLimit,
		DashboardAddr:           ":8181",
	}
}

// LoadEnvConfig loads configuration values from environment variables.
// Call this after flag parsing to apply environment overrides.
func (c *Config) LoadEnvConfig() {
	c.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	c.HumeKey = os.Getenv("HUME_API_KEY")
	c.ElevenLabsKey = os.Getenv("ELEVENLABS_API_KEY")
	if c.GoogleSTTKey == "" {
		c.GoogleSTTKey = os.Getenv("GOOGLE_STT_API_KEY")
	}
	if c.DisplayAddr == "" {
		c.DisplayAddr = config.DisplayAddr("")
	}
	if dir := os.Getenv("MAY_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return &ConfigError{Field: "DataDir", Message: "data directory is required"}
	}
	if c.PassivePhraseLimit <= 0 {
		return &ConfigError{Field: "PassivePhraseLimit", Message: "passive phrase limit must be positive"}
	}
	if c.ConversationTimeout <= 0 {
		return &ConfigError{Field: "ConversationTimeout", Message: "conversation timeout must be positive"}
	}
	if c.ConversationPhraseLimit <= 0 {
		return &ConfigError{Field: "ConversationPhraseLimit", Message: "conversation phrase limit must be positive"}
	}
	if c.ReengageCap < 0 {
		return &ConfigError{Field: "ReengageCap", Message: "re-engage cap cannot be negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
