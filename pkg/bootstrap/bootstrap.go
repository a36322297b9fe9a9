// Package bootstrap builds process-wide collaborators: the logger and the record store HTTP client.
package bootstrap

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abgdnv/productproxy/pkg/client/http/roundtrippers"
	"github.com/abgdnv/productproxy/pkg/config"
	"github.com/abgdnv/productproxy/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewLogger creates a new slog.Logger instance with the specified log level.
func NewLogger(level string) *slog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := logger.NewContextHandler(slog.NewJSONHandler(w, loggerOpts))
	return slog.New(logHandler)
}

// NewStoreClient creates the HTTP client used to reach the record store.
// Transport chain, outermost first: tracing, circuit breaker (if enabled), per-request timeout.
func NewStoreClient(cfg config.RecordStoreConfig, logger *slog.Logger) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport.(*http.Transport).Clone()
	rt = roundtrippers.Timeout(rt, cfg.Timeout)
	if cfg.CircuitBreaker.Enabled {
		rt = roundtrippers.CircuitBreaker(rt, roundtrippers.NewCircuitBreaker("record-store-cb", cfg.CircuitBreaker, logger))
	}
	rt = otelhttp.NewTransport(rt)
	client := &http.Client{Transport: rt}
	if cfg.Timeout > 0 {
		// safety net over the whole exchange, including the body read
		client.Timeout = cfg.Timeout + time.Second
	}
	return client
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
