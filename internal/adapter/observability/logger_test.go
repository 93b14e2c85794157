package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4laawi/recruit-assistant/internal/config"
)

func TestSetupLogger_DevAndProd(t *testing.T) {
	require.NotNil(t, SetupLogger(config.Config{AppEnv: "dev", OTELServiceName: "svc"}))
	require.NotNil(t, SetupLogger(config.Config{AppEnv: "prod", OTELServiceName: "svc"}))
}

func TestNewLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	lg := newLogger(&buf, config.Config{AppEnv: "prod", OTELServiceName: "recruit-assistant"})
	lg.Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "recruit-assistant", rec["service"])
	assert.Equal(t, "prod", rec["env"])
	assert.Equal(t, "hello", rec["msg"])

	assert.False(t, lg.Enabled(context.Background(), slog.LevelDebug))
	dev := newLogger(&buf, config.Config{AppEnv: "dev"})
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug))
}
