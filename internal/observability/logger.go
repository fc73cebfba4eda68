package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the JSON logger used across the service. level is one of
// debug|info|warn|error; empty picks debug in dev and info elsewhere.
func NewLogger(env, level string) *slog.Logger {
	return newLogger(os.Stdout, env, level)
}

func newLogger(w io.Writer, env, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(env, level),
	})

	return slog.New(NewContextHandler(handler)).With("service", "quizvote")
}

func ParseLevel(env, level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if env == "dev" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
