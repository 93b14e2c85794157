package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

// Client-facing message when every provider of a pipeline failed. Provider
// reasons are logged, never returned.
const unavailableMessage = "service temporarily unavailable, try again later"

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBothProvidersUnavailable):
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrConfigurationMissing):
		return http.StatusInternalServerError, "CONFIGURATION_MISSING"
	case errors.Is(err, domain.ErrEmptyResult):
		return http.StatusUnprocessableEntity, "EMPTY_RESULT"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return http.StatusServiceUnavailable, "UPSTREAM_RATE_LIMIT"
	case errors.Is(err, domain.ErrUpstreamProvider):
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeError(w http.ResponseWriter, r *http.Request, err error, details any) {
	status, code := statusFor(err)
	msg := err.Error()
	switch code {
	case "SERVICE_UNAVAILABLE", "UPSTREAM_TIMEOUT", "UPSTREAM_RATE_LIMIT":
		LoggerFrom(r).Warn("upstream unavailable", "error", err)
		msg = unavailableMessage
	case "INTERNAL":
		LoggerFrom(r).Error("internal error", "error", err)
		msg = http.StatusText(http.StatusInternalServerError)
	case "CONFIGURATION_MISSING":
		LoggerFrom(r).Error("configuration missing", "error", err)
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: msg, Details: details}})
}
