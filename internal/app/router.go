// Package app assembles the HTTP router of the screening service.
package app

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/4laawi/recruit-assistant/internal/adapter/httpserver"
	"github.com/4laawi/recruit-assistant/internal/adapter/observability"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/gateway"
	"github.com/4laawi/recruit-assistant/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// exceptLoopback applies mw only to requests whose peer address is not loopback.
func exceptLoopback(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isLoopback(r.RemoteAddr) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.RequestID())
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{httpserver.HeaderRequestID, httpserver.HeaderAPIUsed},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	perMin := cfg.RateLimitPerMin
	if perMin <= 0 {
		perMin = 30
	}

	// Pipelines, limited per client IP.
	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(perMin, time.Minute))
		wr.Use(httpserver.TimeoutMiddleware(timeout))
		wr.Post("/v1/extract", srv.ExtractHandler())
		wr.Post("/v1/screen", srv.ScreenHandler())
		wr.Post("/v1/process", srv.ProcessHandler())
	})
	// The signed-OCR gateway is also reached by this service's own primary OCR
	// adapter over loopback; only external callers are limited.
	r.Group(func(wr chi.Router) {
		wr.Use(exceptLoopback(httprate.LimitByIP(perMin, time.Minute)))
		wr.Use(httpserver.TimeoutMiddleware(timeout))
		wr.Post(gateway.Path, srv.OCRHandler())
	})

	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.SecurityHeaders(r)
}
