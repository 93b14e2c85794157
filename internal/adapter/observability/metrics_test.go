package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetricsMiddleware_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	mw := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) }))
	mw.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Result().StatusCode)
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/items/{id}", http.MethodGet, "OK"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/items/{id}", http.MethodGet, "OK"))
	assert.Equal(t, before+1, after)
}

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}

func TestProviderMetricHelpers(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("ocr", "primary", "timeout"))
	ObserveProviderCall("ocr", "primary", "timeout", 30*time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("ocr", "primary", "timeout")))

	fb := testutil.ToFloat64(FallbacksTotal.WithLabelValues("analysis"))
	RecordFallback("analysis")
	assert.Equal(t, fb+1, testutil.ToFloat64(FallbacksTotal.WithLabelValues("analysis")))

	po := testutil.ToFloat64(PipelineOutcomesTotal.WithLabelValues("ocr", "unavailable"))
	RecordPipelineOutcome("ocr", "unavailable")
	assert.Equal(t, po+1, testutil.ToFloat64(PipelineOutcomesTotal.WithLabelValues("ocr", "unavailable")))
}

func TestRecordTokens_SkipsZero(t *testing.T) {
	p := testutil.ToFloat64(AITokensTotal.WithLabelValues("m-test", "prompt"))
	c := testutil.ToFloat64(AITokensTotal.WithLabelValues("m-test", "completion"))
	RecordTokens("m-test", 12, 0)
	assert.Equal(t, p+12, testutil.ToFloat64(AITokensTotal.WithLabelValues("m-test", "prompt")))
	assert.Equal(t, c, testutil.ToFloat64(AITokensTotal.WithLabelValues("m-test", "completion")))
}

func TestObserveAnalysisScore_IgnoresOutOfRange(t *testing.T) {
	assert.NotPanics(t, func() {
		ObserveAnalysisScore("secondary", 82)
		ObserveAnalysisScore("secondary", -1)
		ObserveAnalysisScore("secondary", 101)
	})
}
