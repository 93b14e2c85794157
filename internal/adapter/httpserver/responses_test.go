package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", fmt.Errorf("%w: x", domain.ErrInvalidArgument), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"config", fmt.Errorf("%w: OPENROUTER_API_KEY", domain.ErrConfigurationMissing), http.StatusInternalServerError, "CONFIGURATION_MISSING"},
		{"both", &domain.BothProvidersUnavailableError{Capability: domain.CapabilityAnalysis}, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"empty", fmt.Errorf("%w: blank", domain.ErrEmptyResult), http.StatusUnprocessableEntity, "EMPTY_RESULT"},
		{"timeout", domain.ErrUpstreamTimeout, http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decodeErr(t, w).Code)
		})
	}
}

func TestWriteError_HidesProviderReasons(t *testing.T) {
	err := &domain.BothProvidersUnavailableError{
		Capability: domain.CapabilityAnalysis,
		Primary:    domain.NewProviderError(domain.CapabilityAnalysis, "inference", 500, domain.ErrUpstreamProvider, "primary failed 500"),
		Secondary:  domain.NewProviderError(domain.CapabilityAnalysis, "openrouter", 429, domain.ErrUpstreamRateLimit, "rate limited"),
	}
	w := httptest.NewRecorder()
	writeError(w, httptest.NewRequest(http.MethodPost, "/v1/screen", nil), err, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":{"code":"SERVICE_UNAVAILABLE","message":"service temporarily unavailable, try again later"}}`, w.Body.String())

	w = httptest.NewRecorder()
	writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("db password leaked"), nil)
	assert.NotContains(t, w.Body.String(), "password")
}
