// Package huawei calls the cloud general-text OCR API with SDK-HMAC-SHA256
// signed requests. It backs the service's own /v1/ocr gateway endpoint.
package huawei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/4laawi/recruit-assistant/internal/adapter/signer"
	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/observability"
)

// ProviderName labels metrics and logs for the cloud OCR hop.
const ProviderName = "huawei"

// Result is the recognized text plus the untouched upstream payload.
type Result struct {
	Markdown string
	Text     string
	Raw      json.RawMessage
}

type recognizeRequest struct {
	Image                string `json:"image"`
	DetectDirection      bool   `json:"detect_direction"`
	QuickMode            bool   `json:"quick_mode"`
	ReturnMarkdownResult bool   `json:"return_markdown_result"`
}

type recognizeResponse struct {
	Result struct {
		MarkdownResult string `json:"markdown_result"`
		Text           string `json:"text"`
		WordsBlockList []struct {
			Words string `json:"words"`
		} `json:"words_block_list"`
	} `json:"result"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Client is a signed cloud OCR client. Construction never fails; missing
// credentials surface from Recognize as domain.ErrConfigurationMissing.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	call       *observability.ProviderCall
}

// New builds a Client from configuration.
func New(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: observability.NewHTTPClient(cfg.HuaweiTimeout),
		call:       observability.NewProviderCall(domain.CapabilityOCR, ProviderName, cfg.HuaweiEndpoint, cfg.HuaweiTimeout),
	}
}

// target splits HUAWEI_ENDPOINT into scheme and host; a bare host means https.
func (c *Client) target() (scheme, host string) {
	ep := strings.TrimRight(strings.TrimSpace(c.cfg.HuaweiEndpoint), "/")
	if strings.Contains(ep, "://") {
		if u, err := url.Parse(ep); err == nil && u.Host != "" {
			return u.Scheme, u.Host
		}
	}
	return "https", ep
}

// Recognize runs general-text OCR over a base64 image.
func (c *Client) Recognize(ctx context.Context, imageBase64 string) (Result, error) {
	if err := c.cfg.RequireHuawei(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(imageBase64) == "" {
		return Result{}, fmt.Errorf("%w: image is empty", domain.ErrInvalidArgument)
	}

	body, err := json.Marshal(recognizeRequest{
		Image:                imageBase64,
		DetectDirection:      true,
		QuickMode:            false,
		ReturnMarkdownResult: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("op=huawei.Recognize: %w", err)
	}

	scheme, host := c.target()
	path := "/v2/" + c.cfg.HuaweiProjectID + "/ocr/general-text"
	s := signer.New(c.cfg.HuaweiAccessKey, c.cfg.HuaweiSecretKey)

	var out Result
	err = c.call.Execute(ctx, "general-text", func(callCtx context.Context) error {
		headers := s.Sign(http.MethodPost, host, path, http.Header{"Content-Type": {"application/json"}}, body)
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, scheme+"://"+host+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header = headers
		req.Host = host

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domain.NewProviderError(domain.CapabilityOCR, ProviderName, 0, observability.TransportError(callCtx, err), "")
		}
		defer func() { _ = resp.Body.Close() }()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, err, "read body")
		}

		var parsed recognizeResponse
		_ = json.Unmarshal(raw, &parsed)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			reason := fmt.Sprintf("status %d", resp.StatusCode)
			if parsed.ErrorCode != "" {
				reason = fmt.Sprintf("%s: %s", parsed.ErrorCode, parsed.ErrorMsg)
			}
			slog.Warn("cloud ocr non-2xx",
				slog.String("provider", ProviderName),
				slog.Int("status", resp.StatusCode),
				slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
				slog.String("body", observability.Snippet(raw, 512)))
			return domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrUpstreamProvider, reason)
		}

		out = Result{
			Markdown: parsed.Result.MarkdownResult,
			Text:     parsed.Result.Text,
			Raw:      json.RawMessage(raw),
		}
		if strings.TrimSpace(out.Markdown) == "" && strings.TrimSpace(out.Text) == "" {
			words := make([]string, 0, len(parsed.Result.WordsBlockList))
			for _, w := range parsed.Result.WordsBlockList {
				if t := strings.TrimSpace(w.Words); t != "" {
					words = append(words, t)
				}
			}
			out.Text = strings.Join(words, "\n")
		}
		if strings.TrimSpace(out.BestText()) == "" {
			return domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrEmptyResult, "no text recognized")
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return out, nil
}

// BestText returns markdown when present, else plain text.
func (r Result) BestText() string {
	if strings.TrimSpace(r.Markdown) != "" {
		return r.Markdown
	}
	return r.Text
}
