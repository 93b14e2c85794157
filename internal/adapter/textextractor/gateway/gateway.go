// Package gateway is the primary OCR adapter. It posts documents to the
// service's signed-OCR endpoint (/v1/ocr), which holds the cloud credentials.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/observability"
)

// Path is the route of the signed-OCR endpoint.
const Path = "/v1/ocr"

// ProviderName labels the primary OCR stage.
const ProviderName = "huawei-gateway"

// OCRRequest is the endpoint's request body.
type OCRRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

// OCRResponse is the endpoint's success body.
type OCRResponse struct {
	Success        bool            `json:"success"`
	MarkdownResult string          `json:"markdown_result"`
	RawResult      json.RawMessage `json:"raw_result,omitempty"`
	UsedProvider   domain.Provider `json:"used_provider"`
}

// Text returns markdown_result, else raw_result.result.text.
func (r OCRResponse) Text() string {
	if strings.TrimSpace(r.MarkdownResult) != "" {
		return r.MarkdownResult
	}
	var raw struct {
		Result struct {
			Text string `json:"text"`
		} `json:"result"`
	}
	if len(r.RawResult) > 0 && json.Unmarshal(r.RawResult, &raw) == nil {
		return raw.Result.Text
	}
	return ""
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client implements domain.TextProvider against the gateway endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// New builds a Client. Each request is additionally bounded by the caller's context.
func New(cfg config.Config) *Client {
	return &Client{
		url:        strings.TrimRight(cfg.OCRGatewayURL, "/") + Path,
		httpClient: observability.NewHTTPClient(cfg.ProviderTimeout),
	}
}

// Name implements domain.TextProvider.
func (c *Client) Name() string { return ProviderName }

// ExtractText implements domain.TextProvider with a single attempt.
func (c *Client) ExtractText(ctx context.Context, in domain.ExtractionRequest) (string, error) {
	body, err := json.Marshal(OCRRequest{ImageBase64: strings.TrimSpace(in.DocumentBase64)})
	if err != nil {
		return "", fmt.Errorf("op=gateway.ExtractText: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=gateway.ExtractText: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if rid := observability.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, 0, observability.TransportError(ctx, err), "")
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, observability.TransportError(ctx, err), "read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		if eb.Error.Code == "CONFIGURATION_MISSING" {
			return "", fmt.Errorf("%w: ocr gateway: %s", domain.ErrConfigurationMissing, eb.Error.Message)
		}
		reason := fmt.Sprintf("status %d", resp.StatusCode)
		if eb.Error.Message != "" {
			reason += ": " + eb.Error.Message
		}
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrUpstreamProvider, reason)
	}

	var out OCRResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrUpstreamProvider, "decode: "+err.Error())
	}
	text := out.Text()
	if strings.TrimSpace(text) == "" {
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrEmptyResult, "no text in gateway response")
	}
	return text, nil
}
