// Package webhook implements an HTTP POST Call Logger subscriber.
//
// Publishes every call/return/error CallRecord as a JSON POST to a
// configurable URL. Retries with exponential backoff on transient
// failures, the same retry/status-code discipline adapter/webhook/
// webhook.go uses for run-completion events, retargeted here from a
// one-shot "run finished" publish to a per-call fan-out.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kordless/mystic/iox"
	"github.com/kordless/mystic/logx"
	"github.com/kordless/mystic/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the webhook subscriber.
type Config struct {
	// URL is the HTTP endpoint to POST to (required).
	URL string
	// Headers are custom HTTP headers added to each request.
	Headers map[string]string
	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
}

// Subscriber publishes CallRecords via HTTP POST. It implements
// logx.Subscriber.
type Subscriber struct {
	config  Config
	client  *http.Client
	onError func(error)
}

// Option configures a Subscriber at construction.
type Option func(*Subscriber)

// WithErrorHandler sets a callback invoked when a publish ultimately
// fails after all retries (or hits a non-retriable 4xx). Without one,
// failures are silently dropped, matching logx.Subscriber's "Handle must
// not block" contract.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Subscriber) { s.onError = fn }
}

// New creates a webhook subscriber from the given config.
func New(cfg Config, opts ...Option) (*Subscriber, error) {
	if cfg.URL == "" {
		return nil, errors.New("notify/webhook: config requires a URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("notify/webhook: retries must be >= 0, got %d", cfg.Retries)
	}

	s := &Subscriber{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name identifies this subscriber for logging.
func (s *Subscriber) Name() string { return "notify-webhook" }

// Handle posts record, retrying with exponential backoff on 5xx
// responses and network errors; 4xx responses fail immediately without
// retrying. Failures are reported via the configured error handler, if
// any, and otherwise dropped.
func (s *Subscriber) Handle(record types.CallRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout*time.Duration(1+s.config.Retries)+time.Second)
	defer cancel()
	if err := s.publish(ctx, record); err != nil && s.onError != nil {
		s.onError(err)
	}
}

func (s *Subscriber) publish(ctx context.Context, record types.CallRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("notify/webhook: marshal record: %w", err)
	}

	var lastErr error
	attempts := 1 + s.config.Retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("notify/webhook: context canceled: %w", err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("notify/webhook: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = s.doRequest(ctx, body)
		if lastErr == nil {
			return nil
		}

		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500 {
			return fmt.Errorf("notify/webhook: non-retriable error: %w", lastErr)
		}
	}

	return fmt.Errorf("notify/webhook: failed after %d attempts: %w", attempts, lastErr)
}

// StatusError is returned for non-2xx HTTP responses. Wrapping the
// status code lets publish distinguish retriable (5xx) from
// non-retriable (4xx) failures.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

func (s *Subscriber) doRequest(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// Close releases subscriber resources.
func (s *Subscriber) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

var _ logx.Subscriber = (*Subscriber)(nil)
