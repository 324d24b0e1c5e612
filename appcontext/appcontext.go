// Package appcontext carries run-scoped values, such as the logger, through a context.
package appcontext

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

type runIDKey struct{}

// WithLogger creates a new context with the provided logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext retrieves the logger from the context.
// It returns a default logger if no logger is found.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}

	return slog.Default()
}

// WithRunID stores the run id and attaches it to the context logger.
func WithRunID(ctx context.Context, runID string) context.Context {
	ctx = context.WithValue(ctx, runIDKey{}, runID)
	return WithLogger(ctx, LoggerFromContext(ctx).With("runID", runID))
}

// RunIDFromContext returns the run id, or an empty string if none was set.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}

	return ""
}
