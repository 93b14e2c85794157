package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

// NewHTTPClient returns a traced outbound client that opens a fresh
// connection per request. timeout bounds the whole exchange.
func NewHTTPClient(timeout time.Duration) *http.Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		DisableKeepAlives:     true,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(base),
	}
}

// TransportError marks err as domain.ErrUpstreamTimeout when ctx expired or
// the client deadline fired while the request was in flight.
func TransportError(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, domain.ErrUpstreamTimeout) {
		return err
	}
	var ne net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	return err
}

// Snippet returns at most n bytes of b for logging.
func Snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
