package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4laawi/recruit-assistant/internal/adapter/httpserver"
	"github.com/4laawi/recruit-assistant/internal/adapter/observability"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/gateway"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/huawei"
	"github.com/4laawi/recruit-assistant/internal/adapter/textextractor/ocrspace"
	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/usecase"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(context.Context, string, domain.JobRequirements) (domain.AnalysisResult, error) {
	return domain.AnalysisResult{Score: 75, IsGoodFit: true, ProviderUsed: domain.ProviderPrimary}, nil
}

type stubExtractor struct{}

func (stubExtractor) ExtractText(context.Context, domain.ExtractionRequest) (domain.ExtractionResult, error) {
	return domain.ExtractionResult{Text: "resume", ProviderUsed: domain.ProviderPrimary}, nil
}

type stubRecognizer struct{}

func (stubRecognizer) Recognize(context.Context, string) (huawei.Result, error) {
	return huawei.Result{Text: "ocr"}, nil
}

func newTestRouter(cfg config.Config) http.Handler {
	observability.InitMetrics()
	ext, an := stubExtractor{}, stubAnalyzer{}
	srv := httpserver.NewServer(cfg, stubRecognizer{}, ext, an, usecase.NewProcessService(ext, an))
	return BuildRouter(cfg, srv)
}

func TestBuildRouter_Routes(t *testing.T) {
	h := newTestRouter(config.Config{CORSAllowOrigins: "https://ui.example", RateLimitPerMin: 100})

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodPost, "/v1/screen", `{"resume_text":"x","job_requirements":{"title":"T"}}`, http.StatusOK},
		{http.MethodPost, "/v1/extract", `{"document_base64":"aGVsbG8="}`, http.StatusOK},
		{http.MethodPost, "/v1/ocr", `{"image_base64":"aGVsbG8="}`, http.StatusOK},
		{http.MethodPost, "/v1/process", `{"document":{"document_base64":"aGVsbG8="},"job_requirements":{"title":"T"}}`, http.StatusOK},
		{http.MethodGet, "/v1/screen", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.NotEmpty(t, w.Header().Get(httpserver.HeaderRequestID))
		})
	}
}

func TestBuildRouter_CORS(t *testing.T) {
	h := newTestRouter(config.Config{CORSAllowOrigins: "https://ui.example"})
	req := httptest.NewRequest(http.MethodOptions, "/v1/screen", nil)
	req.Header.Set("Origin", "https://ui.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://ui.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildRouter_RateLimit(t *testing.T) {
	h := newTestRouter(config.Config{RateLimitPerMin: 1})
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/v1/screen", strings.NewReader(`{"resume_text":"x","job_requirements":{"title":"T"}}`))
		req.RemoteAddr = "10.0.0.9:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}
	require.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, isLoopback("127.0.0.1:5555"))
	assert.True(t, isLoopback("[::1]:5555"))
	assert.True(t, isLoopback("127.0.0.1"))
	assert.False(t, isLoopback("203.0.113.7:5555"))
	assert.False(t, isLoopback("not-an-addr"))
}

func TestBuildRouter_GatewayHopIsNotRateLimited(t *testing.T) {
	observability.InitMetrics()
	cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"markdown_result":"Jane Doe, Go engineer"}}`))
	}))
	defer cloud.Close()
	var secondaryCalls int
	ocrSpace := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		secondaryCalls++
		_, _ = w.Write([]byte(`{"ParsedResults":[{"ParsedText":"from secondary"}]}`))
	}))
	defer ocrSpace.Close()

	// The service calls its own /v1/ocr route, so serve the router over a real listener.
	var handler http.Handler
	self := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handler.ServeHTTP(w, r) }))
	defer self.Close()

	cfg := config.Config{
		RateLimitPerMin: 2,
		RequestTimeout:  10 * time.Second,
		ProviderTimeout: 5 * time.Second,
		HuaweiAccessKey: "ak", HuaweiSecretKey: "sk", HuaweiProjectID: "proj",
		HuaweiEndpoint: cloud.URL,
		HuaweiTimeout:  5 * time.Second,
		OCRGatewayURL:  self.URL,
		OCRSpaceAPIKey: "key",
		OCRSpaceURL:    ocrSpace.URL,
	}
	ext := usecase.NewExtractService(gateway.New(cfg), ocrspace.New(cfg), cfg.ProviderTimeout)
	an := stubAnalyzer{}
	handler = BuildRouter(cfg, httpserver.NewServer(cfg, huawei.New(cfg), ext, an, usecase.NewProcessService(ext, an)))

	for i := 1; i <= 8; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(`{"document_base64":"aGVsbG8="}`))
		req.RemoteAddr = fmt.Sprintf("203.0.113.%d:4000", i)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res domain.ExtractionResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, domain.ProviderPrimary, res.ProviderUsed, "client %d", i)
	}
	assert.Zero(t, secondaryCalls)

	// external callers of the gateway are still limited
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, gateway.Path, strings.NewReader(`{"image_base64":"aGVsbG8="}`))
		req.RemoteAddr = "198.51.100.4:4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
