// Package config provides configuration helpers for go-may commands.
package config

import (
	"os"
	"path/filepath"
)

// Default connection settings for the side display.
const (
	DefaultDisplayPort = "8888"
)

// DisplayAddr returns the side-display address from the MAY_DISPLAY_ADDR
// env var. Falls back to the provided default if not set.
func DisplayAddr(defaultAddr string) string {
	if addr := os.Getenv("MAY_DISPLAY_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}

// DataDir returns the directory for persisted assistant state.
// Defaults to ~/.may, overridable via MAY_DATA_DIR.
func DataDir() string {
	if dir := os.Getenv("MAY_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".may"
	}
	return filepath.Join(home, ".may")
}

// ConfigPath returns the path of the persisted assistant config file.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Getenv returns the env var value or the fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
