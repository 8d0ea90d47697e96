// Package log provides structured logging setup shared by all binaries.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the process-wide logger. Every line carries the service
// attribute so aggregated streams stay attributable when the API and CLI
// log to the same place.
func Setup(logLevel string) {
	var level slog.Level

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler).With("service", "streamsuite"))
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
