package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
)

func newClient(url string) *Client {
	return New(config.Config{OCRGatewayURL: url, ProviderTimeout: 2 * time.Second})
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{"markdown", 200, `{"success":true,"markdown_result":"HELLO","used_provider":"primary"}`, "HELLO", nil},
		{"raw text", 200, `{"success":true,"raw_result":{"result":{"text":"HI"}}}`, "HI", nil},
		{"blank", 200, `{"success":true,"markdown_result":"  "}`, "", domain.ErrEmptyResult},
		{"bad json", 200, `not json`, "", domain.ErrUpstreamProvider},
		{"cloud down", 503, `{"error":{"code":"SERVICE_UNAVAILABLE","message":"ocr failed"}}`, "", domain.ErrUpstreamProvider},
		{"not configured", 500, `{"error":{"code":"CONFIGURATION_MISSING","message":"HUAWEI_ACCESS_KEY"}}`, "", domain.ErrConfigurationMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, Path, r.URL.Path)
				var in OCRRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
				assert.Equal(t, "aGVsbG8=", in.ImageBase64)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := newClient(srv.URL).ExtractText(context.Background(), domain.ExtractionRequest{DocumentBase64: "aGVsbG8="})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractText_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url).ExtractText(context.Background(), domain.ExtractionRequest{DocumentBase64: "aGVsbG8="})
	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ProviderName, pe.Provider)
}
