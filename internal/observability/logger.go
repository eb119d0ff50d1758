package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger in production and a human-readable text
// logger everywhere else. Log lines go to stdout in both cases so the
// process plays well with container log collection.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch env {
	case "prod", "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
}
