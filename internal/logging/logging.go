// Package logging wires the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process-wide JSON logger at the given level
// ("debug", "info", "warn", "error"; unknown values fall back to info).
func New(level string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError returns a logger with the error attached, mirroring the
// teacher's logger.WithError helper used throughout replication_logic.go.
func WithError(log *slog.Logger, err error, msg string) *slog.Logger {
	return log.With(slog.String("err", err.Error()), slog.String("op", msg))
}
