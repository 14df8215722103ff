package logging

import (
	"context"
	"log/slog"
	"os"
)

// NewLogger returns a slog logger configured for Cloud Logging compatibility.
func NewLogger(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	return slog.New(handler).With(slog.String("service", service))
}

// WithUserID attaches the acting user to the logger for request-scoped entries.
func WithUserID(ctx context.Context, logger *slog.Logger, userID string) *slog.Logger {
	return logger.With(slog.String("userId", userID))
}
