// Package notify wraps logx.Subscriber implementations (redis, webhook)
// and, via BatchSubscriber, the generic bounded-buffer/drop-oldest
// discipline from the policy package, for subscribers where one network
// call per CallRecord is wasteful under load.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/kordless/mystic/logx"
	"github.com/kordless/mystic/policy"
	"github.com/kordless/mystic/types"
)

// subscriberSink adapts a logx.Subscriber into a policy.Sink, so a
// Subscriber can sit behind a policy.Policy's buffering instead of
// receiving every record immediately.
type subscriberSink struct {
	sub logx.Subscriber
}

func (s *subscriberSink) WriteRecords(_ context.Context, records []*types.CallRecord) error {
	for _, r := range records {
		s.sub.Handle(*r)
	}
	return nil
}

func (s *subscriberSink) Close() error {
	if closer, ok := s.sub.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

var _ policy.Sink = (*subscriberSink)(nil)

// BatchSubscriber wraps a logx.Subscriber with policy.BufferedPolicy's
// bounded-buffer, drop-oldest-droppable discipline, flushing to the
// wrapped subscriber on a timer instead of on every Handle call.
type BatchSubscriber struct {
	name string
	pol  *policy.BufferedPolicy
	done chan struct{}
	wg   sync.WaitGroup
}

// NewBatchSubscriber wraps sub, buffering records per cfg and flushing
// every interval.
func NewBatchSubscriber(sub logx.Subscriber, cfg policy.BufferedConfig, interval time.Duration) (*BatchSubscriber, error) {
	pol, err := policy.NewBufferedPolicy(&subscriberSink{sub: sub}, cfg)
	if err != nil {
		return nil, err
	}

	b := &BatchSubscriber{
		name: sub.Name(),
		pol:  pol,
		done: make(chan struct{}),
	}
	b.wg.Add(1)
	go b.flushLoop(interval)
	return b, nil
}

func (b *BatchSubscriber) flushLoop(interval time.Duration) {
	defer b.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = b.pol.Flush(context.Background())
		case <-b.done:
			return
		}
	}
}

// Name returns the wrapped subscriber's name.
func (b *BatchSubscriber) Name() string { return b.name }

// Handle buffers record per the wrapped policy's drop rules instead of
// delivering it immediately.
func (b *BatchSubscriber) Handle(record types.CallRecord) {
	_ = b.pol.Ingest(&record)
}

// Stats returns the underlying buffering policy's statistics.
func (b *BatchSubscriber) Stats() policy.Stats {
	return b.pol.Stats()
}

// Close stops the flush loop, flushes any remaining buffered records, and
// closes the wrapped subscriber.
func (b *BatchSubscriber) Close() error {
	close(b.done)
	b.wg.Wait()
	return b.pol.Close()
}

var _ logx.Subscriber = (*BatchSubscriber)(nil)
