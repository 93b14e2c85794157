// Package observability carries request-scoped logging context and the
// instrumented wrapper every upstream provider attempt runs through.
package observability

import (
	"context"
	"log/slog"
)

type loggerContextKey struct{}

// requestIDContextKey holds the inbound HTTP request_id.
type requestIDContextKey struct{}

// callIDContextKey holds the id of one orchestrated pipeline invocation.
type callIDContextKey struct{}

// ContextWithLogger attaches a non-nil logger to the context.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, lg)
}

// LoggerFromContext returns the logger stored in the context or slog.Default.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if lg, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && lg != nil {
		return lg
	}
	return slog.Default()
}

// ContextWithRequestID stores a non-empty request_id in the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request_id, or "" when none is present.
func RequestIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, requestIDContextKey{})
}

// ContextWithCallID stores the pipeline call_id in the context.
func ContextWithCallID(ctx context.Context, callID string) context.Context {
	return withString(ctx, callIDContextKey{}, callID)
}

// CallIDFromContext returns the pipeline call_id, or "".
func CallIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, callIDContextKey{})
}

func withString(ctx context.Context, key any, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func stringFrom(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}
