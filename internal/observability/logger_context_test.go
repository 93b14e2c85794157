package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWithLoggerAndLoggerFromContext(t *testing.T) {
	lg := slog.Default().With(slog.String("k", "v"))
	base := context.Background()

	ctx := ContextWithLogger(base, lg)
	assert.NotEqual(t, base, ctx)
	assert.Same(t, lg, LoggerFromContext(ctx))

	assert.Equal(t, base, ContextWithLogger(base, nil))
	assert.NotNil(t, LoggerFromContext(context.Background()))
	//nolint:staticcheck // nil context is tolerated
	assert.NotNil(t, LoggerFromContext(nil))
}

func TestRequestAndCallIDs(t *testing.T) {
	base := context.Background()
	assert.Equal(t, "", RequestIDFromContext(base))
	assert.Equal(t, "", CallIDFromContext(base))

	ctx := ContextWithRequestID(base, "req-123")
	ctx = ContextWithCallID(ctx, "call-456")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	assert.Equal(t, "call-456", CallIDFromContext(ctx))

	assert.Equal(t, base, ContextWithRequestID(base, ""))
	assert.Equal(t, base, ContextWithCallID(base, ""))
}
