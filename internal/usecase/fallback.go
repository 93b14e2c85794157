// Package usecase holds the fallback orchestrators: text extraction, resume
// analysis and the combined process flow.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/observability"
)

// DefaultProviderTimeout bounds one provider or model attempt.
const DefaultProviderTimeout = 30 * time.Second

// pipeline outcome labels
const (
	outcomePrimary     = "primary"
	outcomeSecondary   = "secondary"
	outcomeUnavailable = "unavailable"
	outcomeConfig      = "config_missing"
	outcomeCanceled    = "canceled"
	outcomeInvalid     = "invalid"
)

// beginCall tags ctx with a fresh call_id and returns a logger carrying it.
func beginCall(ctx context.Context, capability domain.Capability) (context.Context, *slog.Logger) {
	callID := observability.CallIDFromContext(ctx)
	if callID == "" {
		callID = uuid.NewString()
		ctx = observability.ContextWithCallID(ctx, callID)
	}
	lg := observability.LoggerFromContext(ctx).With(
		slog.String("call_id", callID),
		slog.String("capability", string(capability)),
	)
	return observability.ContextWithLogger(ctx, lg), lg
}

// attempt runs fn once under its own deadline.
func attempt(ctx context.Context, capability domain.Capability, provider string, timeout time.Duration, operation string, fn func(context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return observability.NewProviderCall(capability, provider, "", timeout).Execute(ctx, operation, fn)
}

// providerFailure normalizes any attempt error into a *domain.ProviderError.
func providerFailure(capability domain.Capability, provider string, err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return domain.NewProviderError(capability, provider, 0, err, "")
}

// fatal reports errors that must not trigger a fallback.
func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, domain.ErrConfigurationMissing) || errors.Is(err, domain.ErrInvalidArgument) || ctx.Err() != nil
}

// fatalOutcome labels an abort that skipped the fallback.
func fatalOutcome(err error) string {
	if errors.Is(err, domain.ErrConfigurationMissing) {
		return outcomeConfig
	}
	if errors.Is(err, domain.ErrInvalidArgument) {
		return outcomeInvalid
	}
	return outcomeCanceled
}
