// Package redis implements a Redis pub/sub Call Logger subscriber.
//
// Publishes every call/return/error CallRecord as JSON to a configurable
// channel. Retries with exponential backoff on connection errors, the
// same retry discipline adapter/redis/redis.go uses for run-completion
// events, retargeted here from a one-shot "run finished" publish to a
// per-call fan-out.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kordless/mystic/logx"
	"github.com/kordless/mystic/types"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "mystic:call_events"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis pub/sub subscriber.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: mystic:call_events).
	Channel string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
}

// Subscriber publishes CallRecords via Redis PUBLISH. It implements
// logx.Subscriber.
type Subscriber struct {
	config  Config
	client  *goredis.Client
	onError func(error)
}

// Option configures a Subscriber at construction.
type Option func(*Subscriber)

// WithErrorHandler sets a callback invoked when a publish ultimately
// fails after all retries. Without one, failures are silently dropped,
// matching logx.Subscriber's "Handle must not block" contract — there is
// no caller left to return an error to once a call has already returned.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Subscriber) { s.onError = fn }
}

// New creates a Redis pub/sub subscriber from the given config.
func New(cfg Config, opts ...Option) (*Subscriber, error) {
	if cfg.URL == "" {
		return nil, errors.New("notify/redis: config requires a URL")
	}

	clientOpts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("notify/redis: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("notify/redis: retries must be >= 0, got %d", cfg.Retries)
	}

	s := &Subscriber{config: cfg, client: goredis.NewClient(clientOpts)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name identifies this subscriber for logging.
func (s *Subscriber) Name() string { return "notify-redis" }

// Handle publishes record, retrying with exponential backoff. Failures
// are reported via the configured error handler, if any, and otherwise
// dropped — per logx.Subscriber's contract, Handle has no error return
// to propagate to.
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
		return fmt.Errorf("notify/redis: marshal record: %w", err)
	}

	var lastErr error
	attempts := 1 + s.config.Retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("notify/redis: context canceled: %w", err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("notify/redis: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		publishCtx, publishCancel := context.WithTimeout(ctx, s.config.Timeout)
		lastErr = s.client.Publish(publishCtx, s.config.Channel, body).Err()
		publishCancel()

		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("notify/redis: failed after %d attempts: %w", attempts, lastErr)
}

// Close releases subscriber resources.
func (s *Subscriber) Close() error {
	return s.client.Close()
}

var _ logx.Subscriber = (*Subscriber)(nil)
