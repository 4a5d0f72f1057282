package github

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
)

// loggingTransport logs each GitHub request with method, path, status, and duration.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func newLoggingTransport(base http.RoundTripper, logger *slog.Logger) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base, logger: logger}
}

// RoundTrip delegates to the wrapped transport and logs the outcome.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("github request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start).Round(time.Microsecond),
			"error", err,
		)
		return nil, err
	}

	t.logger.Debug("github request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"cached", resp.Header.Get(httpcache.XFromCache) == "1",
		"duration", time.Since(start).Round(time.Microsecond),
	)

	return resp, nil
}
