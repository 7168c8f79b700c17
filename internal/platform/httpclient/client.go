// Package httpclient is the outbound HTTP client shared by all collaborator
// clients. It applies a bounded timeout and a small number of retries on
// transport failures and 5xx responses. Semantic failures (4xx) are returned
// to the caller untouched and never retried.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"custodia/internal/platform/metrics"
	dErrors "custodia/pkg/domain-errors"
)

// StatusError is a non-2xx, non-retryable response. Collaborator clients
// inspect the status and body to translate it into a domain error.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Client wraps http.Client with retry semantics.
type Client struct {
	http    *http.Client
	retries int
	backoff time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithBackoff overrides the base retry backoff; tests use a tiny value.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// New builds a client with a per-request timeout and a retry budget for
// transient failures. retries is the number of additional attempts after the
// first.
func New(timeout time.Duration, retries int, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: timeout},
		retries: retries,
		backoff: 100 * time.Millisecond,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON sends a JSON body and decodes a JSON response into out (out may be
// nil for fire-and-forget endpoints).
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, body, out)
}

// GetJSON issues a GET and decodes a JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.metrics.ObserveUpstreamRetry(url)
			select {
			case <-time.After(c.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return dErrors.Wrap(ctx.Err(), dErrors.CodeUpstreamUnavailable, "upstream call cancelled")
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.logger.WarnContext(ctx, "upstream call failed",
				"url", url, "attempt", attempt, "error", err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: respBody}
			c.logger.WarnContext(ctx, "upstream returned server error",
				"url", url, "status", resp.StatusCode, "attempt", attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			// Semantic failure: the caller decides what it means. Never retried.
			return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode response from %s: %w", url, err)
			}
		}
		return nil
	}

	return dErrors.Wrap(lastErr, dErrors.CodeUpstreamUnavailable, "upstream call exhausted retries")
}
