// Package httpc is the shared HTTP plumbing: clients with full
// timeout coverage and a retrying request helper for flaky upstream
// APIs.
package httpc

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Connection-level timeouts applied to every client.
const (
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// NewClient builds an HTTP client with the given overall timeout.
// Dial, TLS, and idle timeouts are always set, so a stuck upstream
// can never hang a request forever.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// RetryableStatus reports whether a response status is worth retrying.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// DoRetry issues req until a non-retryable response arrives or
// attempts run out, resending body each time. Transport errors, 429s,
// and 5xx responses retry with a linearly growing delay. The final
// response comes back unconsumed whatever its status, so callers can
// parse upstream error bodies.
func DoRetry(ctx context.Context, hc *http.Client, logger *slog.Logger, req *http.Request, body []byte, attempts int, delay time.Duration) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay * time.Duration(attempt-1)):
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := hc.Do(req)
		if err != nil {
			lastErr = err
			logger.Warn("request failed", "attempt", attempt, "error", err)
			continue
		}

		if !RetryableStatus(resp.StatusCode) || attempt == attempts {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		logger.Warn("retrying request", "attempt", attempt, "status", resp.StatusCode)
	}

	return nil, lastErr
}
