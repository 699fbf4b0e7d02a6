package logger

import (
	"context"
	"log/slog"
)

// contextKey is a private type so no other package can collide with the
// logger's context key.
type contextKey struct{}

// WithLogger returns a copy of ctx carrying the given logger. Request
// middleware uses it to attach a trace-scoped logger that downstream
// code retrieves with FromContext.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the logger carried by ctx, or the process default
// when none is attached. Never returns nil.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return slog.Default()
}

// FromContextOrDefault returns the logger carried by ctx, falling back
// to the supplied component logger rather than the process default. Use
// it in components that hold their own logger with preset attributes.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
