package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30},
		},
		[]string{"route", "method"},
	)

	// ProviderRequestsTotal counts provider attempts by outcome (ok, error, timeout).
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of upstream provider attempts by capability, provider and outcome",
		},
		[]string{"capability", "provider", "outcome"},
	)
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Upstream provider attempt duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"capability", "provider"},
	)
	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_fallbacks_total",
			Help: "Number of times the secondary provider was consulted after a primary failure",
		},
		[]string{"capability"},
	)
	PipelineOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_outcomes_total",
			Help: "Terminal outcome of each orchestrated call",
		},
		[]string{"capability", "outcome"},
	)
	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_total",
			Help: "Estimated tokens exchanged with language models",
		},
		[]string{"model", "type"},
	)

	AnalysisScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_score",
			Help:    "Distribution of normalized candidate scores ([0,100])",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"provider"},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			ProviderRequestsTotal,
			ProviderRequestDuration,
			FallbacksTotal,
			PipelineOutcomesTotal,
			AITokensTotal,
			AnalysisScoreHistogram,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveProviderCall records one provider attempt.
func ObserveProviderCall(capability, provider, outcome string, d time.Duration) {
	ProviderRequestsTotal.WithLabelValues(capability, provider, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(capability, provider).Observe(d.Seconds())
}

// RecordFallback marks that the secondary provider was consulted.
func RecordFallback(capability string) {
	FallbacksTotal.WithLabelValues(capability).Inc()
}

// RecordPipelineOutcome records the terminal outcome of an orchestrated call.
func RecordPipelineOutcome(capability, outcome string) {
	PipelineOutcomesTotal.WithLabelValues(capability, outcome).Inc()
}

// RecordTokens adds prompt and completion token estimates for a model.
func RecordTokens(model string, prompt, completion int) {
	if prompt > 0 {
		AITokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		AITokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
	}
}

// ObserveAnalysisScore records a normalized score in [0,100].
func ObserveAnalysisScore(provider string, score float64) {
	if score >= 0 && score <= 100 {
		AnalysisScoreHistogram.WithLabelValues(provider).Observe(score)
	}
}
