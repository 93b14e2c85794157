package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	obsadapter "github.com/4laawi/recruit-assistant/internal/adapter/observability"
	"github.com/4laawi/recruit-assistant/internal/domain"
)

// Outcome labels recorded for each provider attempt.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// ProviderCall runs single upstream attempts under a fixed deadline, with a
// span, Prometheus metrics and a structured log line per attempt.
type ProviderCall struct {
	Capability domain.Capability
	Provider   string
	Endpoint   string
	Timeout    time.Duration

	tracer trace.Tracer
}

// NewProviderCall builds a ProviderCall. A zero timeout leaves the caller's deadline in charge.
func NewProviderCall(capability domain.Capability, provider, endpoint string, timeout time.Duration) *ProviderCall {
	return &ProviderCall{
		Capability: capability,
		Provider:   provider,
		Endpoint:   endpoint,
		Timeout:    timeout,
		tracer:     otel.Tracer("recruit-assistant/provider"),
	}
}

// Execute runs fn once. Expiry of the attempt deadline is reported as
// domain.ErrUpstreamTimeout; cancellation by the caller is returned as is.
func (c *ProviderCall) Execute(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	spanCtx, span := c.tracer.Start(ctx, fmt.Sprintf("%s.%s", c.Provider, operation))
	defer span.End()

	span.SetAttributes(
		attribute.String("capability", string(c.Capability)),
		attribute.String("provider", c.Provider),
		attribute.String("endpoint", c.Endpoint),
		attribute.String("operation.name", operation),
	)

	callCtx, cancel := spanCtx, context.CancelFunc(func() {})
	if c.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(spanCtx, c.Timeout)
		span.SetAttributes(attribute.Float64("timeout.seconds", c.Timeout.Seconds()))
	}
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	duration := time.Since(start)

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
		timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
		if timedOut || errors.Is(err, domain.ErrUpstreamTimeout) {
			outcome = OutcomeTimeout
			if !errors.Is(err, domain.ErrUpstreamTimeout) {
				err = fmt.Errorf("%w: %s after %s: %v", domain.ErrUpstreamTimeout, c.Provider, c.Timeout, err)
			}
			span.SetAttributes(attribute.Bool("timeout", true))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "success")
	}
	span.SetAttributes(
		attribute.Float64("duration.seconds", duration.Seconds()),
		attribute.Bool("success", err == nil),
	)

	obsadapter.ObserveProviderCall(string(c.Capability), c.Provider, outcome, duration)

	lg := LoggerFromContext(ctx)
	attrs := []any{
		slog.String("provider", c.Provider),
		slog.String("operation", operation),
		slog.String("outcome", outcome),
		slog.Duration("duration", duration),
	}
	// Orchestrated calls carry a logger already tagged with call_id and capability.
	if CallIDFromContext(ctx) == "" {
		attrs = append(attrs, slog.String("capability", string(c.Capability)))
	}
	if err != nil {
		lg.Warn("provider attempt failed", append(attrs, slog.Any("error", err))...)
	} else {
		lg.Debug("provider attempt succeeded", attrs...)
	}
	return err
}
