// Package ocrspace is the secondary OCR adapter backed by the OCR.space parse API.
package ocrspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
	"github.com/4laawi/recruit-assistant/internal/observability"
)

// ProviderName labels the secondary OCR stage.
const ProviderName = "ocrspace"

const defaultFilename = "uploaded_file"

// quoteEscaper escapes a Content-Disposition parameter the way mime/multipart does.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type parseResponse struct {
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
	ParsedResults         []struct {
		ParsedText   string `json:"ParsedText"`
		ErrorMessage string `json:"ErrorMessage"`
	} `json:"ParsedResults"`
}

// errorMessages accepts ErrorMessage as a string or an array of strings.
func (p parseResponse) errorMessages() string {
	if len(p.ErrorMessage) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(p.ErrorMessage, &list); err == nil {
		return strings.Join(list, ", ")
	}
	var one string
	if err := json.Unmarshal(p.ErrorMessage, &one); err == nil {
		return one
	}
	return ""
}

// Client implements domain.TextProvider.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

// New builds a Client.
func New(cfg config.Config) *Client {
	return &Client{cfg: cfg, httpClient: observability.NewHTTPClient(cfg.ProviderTimeout)}
}

// Name implements domain.TextProvider.
func (c *Client) Name() string { return ProviderName }

// ExtractText uploads the document once and returns the first parsed page text.
func (c *Client) ExtractText(ctx context.Context, in domain.ExtractionRequest) (string, error) {
	if err := c.cfg.RequireOCRSpace(); err != nil {
		return "", err
	}
	doc, err := in.Decode()
	if err != nil {
		return "", err
	}

	body, contentType, err := c.form(doc, in.FilenameHint, in.LanguageOr(c.cfg.OCRLanguage))
	if err != nil {
		return "", fmt.Errorf("op=ocrspace.ExtractText: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OCRSpaceURL, body)
	if err != nil {
		return "", fmt.Errorf("op=ocrspace.ExtractText: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

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
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrUpstreamProvider,
			fmt.Sprintf("status %d: %s", resp.StatusCode, observability.Snippet(raw, 256)))
	}

	var out parseResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrUpstreamProvider, "decode: "+err.Error())
	}
	if out.IsErroredOnProcessing {
		msg := out.errorMessages()
		if msg == "" {
			msg = "Unknown error"
		}
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrUpstreamProvider, "processing error: "+msg)
	}
	if len(out.ParsedResults) == 0 || strings.TrimSpace(out.ParsedResults[0].ParsedText) == "" {
		return "", domain.NewProviderError(domain.CapabilityOCR, ProviderName, resp.StatusCode, domain.ErrEmptyResult, "no text found in OCR response")
	}
	return strings.TrimSpace(out.ParsedResults[0].ParsedText), nil
}

// form builds the multipart body; the file part is typed by content sniffing.
func (c *Client) form(doc []byte, filename, lang string) (io.Reader, string, error) {
	mt := mimetype.Detect(doc)
	if strings.TrimSpace(filename) == "" {
		filename = defaultFilename + mt.Extension()
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"apikey", c.cfg.OCRSpaceAPIKey},
		{"language", lang},
		{"OCREngine", "1"},
		{"isOverlayRequired", "false"},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mt.String())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
