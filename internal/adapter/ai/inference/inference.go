// Package inference is the primary analysis adapter for the private
// resume-scoring endpoint.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/observability"
)

// ProviderName labels the primary analysis stage.
const ProviderName = "inference"

type analyzeRequest struct {
	ResumeText      string                 `json:"resume_text"`
	JobRequirements domain.JobRequirements `json:"job_requirements"`
}

// Client implements domain.AnalysisProvider.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

// New builds a Client.
func New(cfg config.Config) *Client {
	return &Client{cfg: cfg, httpClient: observability.NewHTTPClient(cfg.ProviderTimeout)}
}

// Name implements domain.AnalysisProvider.
func (c *Client) Name() string { return ProviderName }

// Analyze posts the resume once and returns the decoded payload, flat or nested.
// A 2xx body without score or match_score counts as an empty result.
func (c *Client) Analyze(ctx context.Context, resumeText string, job domain.JobRequirements) (map[string]any, error) {
	if err := c.cfg.RequireInference(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(analyzeRequest{ResumeText: resumeText, JobRequirements: job})
	if err != nil {
		return nil, fmt.Errorf("op=inference.Analyze: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.InferenceEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("op=inference.Analyze: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.CapabilityAnalysis, ProviderName, 0, observability.TransportError(ctx, err), "")
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewProviderError(domain.CapabilityAnalysis, ProviderName, resp.StatusCode, observability.TransportError(ctx, err), "read body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("inference non-2xx",
			slog.String("provider", ProviderName),
			slog.Int("status", resp.StatusCode),
			slog.String("body", observability.Snippet(raw, 512)))
		return nil, domain.NewProviderError(domain.CapabilityAnalysis, ProviderName, resp.StatusCode, domain.ErrUpstreamProvider,
			fmt.Sprintf("primary failed %d", resp.StatusCode))
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.NewProviderError(domain.CapabilityAnalysis, ProviderName, resp.StatusCode, domain.ErrUpstreamProvider, "decode: "+err.Error())
	}
	if _, ok := payload["score"]; !ok {
		if _, ok := payload["match_score"]; !ok {
			return nil, domain.NewProviderError(domain.CapabilityAnalysis, ProviderName, resp.StatusCode, domain.ErrEmptyResult, "payload has no score")
		}
	}
	return payload, nil
}
