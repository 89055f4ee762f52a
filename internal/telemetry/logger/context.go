// Package logger provides structured logging for sessiondx.
package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = "sessiondx.logger"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// ForSession returns the context logger scoped with a session_id field.
// Session identifiers are opaque but not secret, so they pass redaction.
func ForSession(ctx context.Context, sessionID string) Logger {
	return FromContext(ctx).With("session_id", sessionID)
}
