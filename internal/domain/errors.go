package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ProviderError is a single failed provider attempt. It never reaches end users;
// orchestrators log it and move on to the next provider or model.
type ProviderError struct {
	Capability Capability
	Provider   string
	Reason     string
	Timeout    bool
	HTTPStatus int
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.HTTPStatus != 0 {
		fmt.Fprintf(&b, " (status %d)", e.HTTPStatus)
	}
	if e.Timeout {
		b.WriteString(" (timeout)")
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError builds a ProviderError, deriving Timeout from err.
func NewProviderError(capability Capability, provider string, status int, err error, reason string) *ProviderError {
	if reason == "" && err != nil {
		reason = err.Error()
	}
	return &ProviderError{
		Capability: capability,
		Provider:   provider,
		Reason:     reason,
		Timeout:    errors.Is(err, ErrUpstreamTimeout),
		HTTPStatus: status,
		Err:        err,
	}
}

// BothProvidersUnavailableError is the only provider failure surfaced to callers.
type BothProvidersUnavailableError struct {
	Capability Capability
	Primary    error
	Secondary  error
}

func (e *BothProvidersUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: primary: %s; secondary: %s",
		ErrBothProvidersUnavailable, e.Capability, reasonOf(e.Primary), reasonOf(e.Secondary))
}

// Is reports ErrBothProvidersUnavailable so callers can match on the sentinel.
func (e *BothProvidersUnavailableError) Is(target error) bool {
	return target == ErrBothProvidersUnavailable
}

// Unwrap exposes both underlying failures.
func (e *BothProvidersUnavailableError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Primary != nil {
		out = append(out, e.Primary)
	}
	if e.Secondary != nil {
		out = append(out, e.Secondary)
	}
	return out
}

func reasonOf(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
