// Package openrouter is the secondary analysis adapter. Each Complete call is
// one chat-completion attempt against one model; model iteration belongs to
// the caller.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/4laawi/recruit-assistant/internal/adapter/ai/tokencount"
	obsadapter "github.com/4laawi/recruit-assistant/internal/adapter/observability"
	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/observability"
)

// ProviderName labels the secondary analysis stage.
const ProviderName = "openrouter"

// Temperature used for every screening completion.
const Temperature = 0.2

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client implements domain.CompletionProvider.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	tokens     *tokencount.Counter
}

// New builds a Client.
func New(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: observability.NewHTTPClient(cfg.ProviderTimeout),
		tokens:     tokencount.Default,
	}
}

// Name implements domain.CompletionProvider.
func (c *Client) Name() string { return ProviderName }

func (c *Client) endpoint() string {
	return strings.TrimRight(c.cfg.OpenRouterBaseURL, "/") + "/chat/completions"
}

// Complete sends prompt as a single user message and returns the first
// choice's content. Rate limits, upstream errors and blank content are
// returned as *domain.ProviderError so the caller can move to the next model.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	if err := c.cfg.RequireOpenRouter(); err != nil {
		return "", err
	}
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Stream:      false,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("op=openrouter.Complete: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=openrouter.Complete: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.cfg.OpenRouterSiteURL)
	req.Header.Set("X-Title", c.cfg.OpenRouterTitle)

	lg := observability.LoggerFromContext(ctx).With(slog.String("provider", ProviderName), slog.String("model", model))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(0, observability.TransportError(ctx, err), "")
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(resp.StatusCode, observability.TransportError(ctx, err), "read body")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		lg.Warn("ai provider rate limited",
			slog.Int("status", resp.StatusCode),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
		return "", c.fail(resp.StatusCode, domain.ErrUpstreamRateLimit, "rate limited")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		lg.Warn("ai provider non-2xx",
			slog.Int("status", resp.StatusCode),
			slog.String("endpoint", c.endpoint()),
			slog.String("body", observability.Snippet(raw, 512)))
		return "", c.fail(resp.StatusCode, domain.ErrUpstreamProvider, fmt.Sprintf("chat status %d", resp.StatusCode))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", c.fail(resp.StatusCode, domain.ErrUpstreamProvider, "decode: "+err.Error())
	}
	if out.Error != nil {
		return "", c.fail(resp.StatusCode, domain.ErrUpstreamProvider, fmt.Sprintf("provider error %v: %s", out.Error.Code, out.Error.Message))
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", c.fail(resp.StatusCode, domain.ErrEmptyResult, "empty completion")
	}
	content := out.Choices[0].Message.Content

	if out.Model != "" && out.Model != model {
		lg.Debug("model substitution detected", slog.String("actual_model", out.Model))
	}
	usage := c.tokens.Estimate(model, prompt, content)
	obsadapter.RecordTokens(model, usage.PromptTokens, usage.CompletionTokens)
	lg.Info("completion received",
		slog.Int("prompt_tokens", usage.PromptTokens),
		slog.Int("completion_tokens", usage.CompletionTokens))
	return content, nil
}

func (c *Client) fail(status int, err error, reason string) error {
	return domain.NewProviderError(domain.CapabilityAnalysis, ProviderName, status, err, reason)
}
