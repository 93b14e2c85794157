package huawei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4laawi/recruit-assistant/internal/adapter/signer"
	"github.com/4laawi/recruit-assistant/internal/config"
	"github.com/4laawi/recruit-assistant/internal/domain"
)

func testConfig(endpoint string) config.Config {
	return config.Config{
		HuaweiAccessKey: "AK",
		HuaweiSecretKey: "SK",
		HuaweiProjectID: "proj123",
		HuaweiEndpoint:  endpoint,
		HuaweiTimeout:   2 * time.Second,
	}
}

func TestRecognize_SignedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/proj123/ocr/general-text", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), signer.Algorithm+" Access=AK, SignedHeaders="))
		assert.NotEmpty(t, r.Header.Get(signer.HeaderDate))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "aGVsbG8=", body["image"])
		assert.Equal(t, true, body["detect_direction"])
		assert.Equal(t, false, body["quick_mode"])
		assert.Equal(t, true, body["return_markdown_result"])

		_, _ = w.Write([]byte(`{"result":{"markdown_result":"# Jane Doe","text":"Jane Doe"}}`))
	}))
	defer srv.Close()

	res, err := New(testConfig(srv.URL)).Recognize(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "# Jane Doe", res.BestText())
	assert.Equal(t, "Jane Doe", res.Text)
	assert.Contains(t, string(res.Raw), "markdown_result")
}

func TestRecognize_TextFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain text", `{"result":{"text":"HELLO"}}`, "HELLO"},
		{"words blocks", `{"result":{"words_block_list":[{"words":"HELLO"},{"words":" "},{"words":"WORLD"}]}}`, "HELLO\nWORLD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			res, err := New(testConfig(srv.URL)).Recognize(context.Background(), "aGVsbG8=")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.BestText())
		})
	}
}

func TestRecognize_Failures(t *testing.T) {
	t.Run("non-2xx carries upstream code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error_code":"APIG.0301","error_msg":"Incorrect IAM authentication information"}`))
		}))
		defer srv.Close()
		_, err := New(testConfig(srv.URL)).Recognize(context.Background(), "aGVsbG8=")
		var pe *domain.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, http.StatusUnauthorized, pe.HTTPStatus)
		assert.Contains(t, pe.Reason, "APIG.0301")
	})

	t.Run("empty result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"result":{}}`))
		}))
		defer srv.Close()
		_, err := New(testConfig(srv.URL)).Recognize(context.Background(), "aGVsbG8=")
		assert.ErrorIs(t, err, domain.ErrEmptyResult)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()
		cfg := testConfig(srv.URL)
		cfg.HuaweiTimeout = 50 * time.Millisecond
		_, err := New(cfg).Recognize(context.Background(), "aGVsbG8=")
		assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := testConfig("ocr.example.com")
		cfg.HuaweiSecretKey = ""
		_, err := New(cfg).Recognize(context.Background(), "aGVsbG8=")
		assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
		assert.Contains(t, err.Error(), "HUAWEI_SECRET_KEY")
	})

	t.Run("empty image", func(t *testing.T) {
		_, err := New(testConfig("ocr.example.com")).Recognize(context.Background(), " ")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestTarget(t *testing.T) {
	c := New(testConfig("ocr.ap-southeast-1.myhuaweicloud.com"))
	scheme, host := c.target()
	assert.Equal(t, "https", scheme)
	assert.Equal(t, "ocr.ap-southeast-1.myhuaweicloud.com", host)

	c = New(testConfig("http://127.0.0.1:9000/"))
	scheme, host = c.target()
	assert.Equal(t, "http", scheme)
	assert.Equal(t, "127.0.0.1:9000", host)
}
