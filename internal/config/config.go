// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

// DefaultModels is the OpenRouter model chain tried in order by the secondary analysis stage.
var DefaultModels = []string{
	"deepseek/deepseek-r1-0528:free",
	"meta-llama/llama-3.3-8b-instruct:free",
	"qwen/qwen3-8b",
}

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv                string        `env:"APP_ENV" envDefault:"dev"`
	Port                  int           `env:"PORT" envDefault:"8080"`
	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"180s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"190s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// ProviderTimeout bounds every single provider or model attempt.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`

	// Cloud OCR (signed requests). HuaweiTimeout is the gateway's own bound on the
	// cloud hop and must stay below ProviderTimeout.
	HuaweiAccessKey string        `env:"HUAWEI_ACCESS_KEY"`
	HuaweiSecretKey string        `env:"HUAWEI_SECRET_KEY"`
	HuaweiProjectID string        `env:"HUAWEI_PROJECT_ID"`
	HuaweiEndpoint  string        `env:"HUAWEI_ENDPOINT" envDefault:"ocr.ap-southeast-1.myhuaweicloud.com"`
	HuaweiTimeout   time.Duration `env:"HUAWEI_TIMEOUT" envDefault:"25s"`
	// OCRGatewayURL is where the primary OCR adapter reaches the signed-OCR endpoint.
	OCRGatewayURL string `env:"OCR_GATEWAY_URL" envDefault:"http://localhost:8080"`

	OCRSpaceAPIKey string `env:"OCRSPACE_API_KEY"`
	OCRSpaceURL    string `env:"OCRSPACE_URL" envDefault:"https://api.ocr.space/parse/image"`
	OCRLanguage    string `env:"OCR_LANGUAGE" envDefault:"eng"`

	InferenceEndpoint string `env:"INFERENCE_ENDPOINT" envDefault:"http://159.138.23.8:8000/analyze"`

	OpenRouterAPIKey  string   `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string   `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterSiteURL string   `env:"OPENROUTER_SITE_URL" envDefault:"http://localhost:3000"`
	OpenRouterTitle   string   `env:"OPENROUTER_TITLE" envDefault:"Resume Analyzer"`
	AnalysisModels    []string `env:"ANALYSIS_MODELS" envSeparator:","`
	// AnalysisModelsFile optionally points at a YAML model catalog that overrides AnalysisModels.
	AnalysisModelsFile string `env:"ANALYSIS_MODELS_FILE"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"recruit-assistant"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if cfg.AnalysisModelsFile != "" {
		catalog, err := LoadModelCatalog(cfg.AnalysisModelsFile)
		if err != nil {
			return Config{}, fmt.Errorf("op=config.Load: %w", err)
		}
		cfg.AnalysisModels = catalog.Candidates()
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// Models returns the ordered model candidate list, defaulting to DefaultModels.
func (c Config) Models() []string {
	out := make([]string, 0, len(c.AnalysisModels))
	seen := make(map[string]struct{}, len(c.AnalysisModels))
	for _, m := range c.AnalysisModels {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultModels...)
	}
	return out
}

// RequireHuawei reports ErrConfigurationMissing when cloud OCR credentials are absent.
func (c Config) RequireHuawei() error {
	return requireNonEmpty(map[string]string{
		"HUAWEI_ACCESS_KEY": c.HuaweiAccessKey,
		"HUAWEI_SECRET_KEY": c.HuaweiSecretKey,
		"HUAWEI_PROJECT_ID": c.HuaweiProjectID,
		"HUAWEI_ENDPOINT":   c.HuaweiEndpoint,
	})
}

// RequireOCRSpace reports ErrConfigurationMissing when the OCR.space key is absent.
func (c Config) RequireOCRSpace() error {
	return requireNonEmpty(map[string]string{"OCRSPACE_API_KEY": c.OCRSpaceAPIKey})
}

// RequireOpenRouter reports ErrConfigurationMissing when the OpenRouter key is absent.
func (c Config) RequireOpenRouter() error {
	return requireNonEmpty(map[string]string{"OPENROUTER_API_KEY": c.OpenRouterAPIKey})
}

// RequireInference reports ErrConfigurationMissing when the inference endpoint is blank.
func (c Config) RequireInference() error {
	return requireNonEmpty(map[string]string{"INFERENCE_ENDPOINT": c.InferenceEndpoint})
}

func requireNonEmpty(values map[string]string) error {
	var missing []string
	for k, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", domain.ErrConfigurationMissing, strings.Join(missing, ", "))
}

