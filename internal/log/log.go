// Package log configures the process-wide slog logger.
package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var once sync.Once

// Init sets the default slog logger once. Level is one of "debug",
// "info", "warn", "error"; anything else means info. Output is text
// for development, JSON when GO_ENV=production.
func Init(level string) {
	once.Do(func() {
		opts := &slog.HandlerOptions{Level: parseLevel(level)}

		var handler slog.Handler
		if os.Getenv("GO_ENV") == "production" {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
		slog.SetDefault(slog.New(handler))
	})
}

// L returns the default logger, initializing it at info level when
// nothing has called Init yet.
func L() *slog.Logger {
	Init("info")
	return slog.Default()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
