package policy

import (
	"context"
	"sync"

	"github.com/kordless/mystic/types"
)

// Sink abstracts persistence for a Policy. Implementations may write to
// a rotating file, forward to a queue, or stub for testing. The method
// is batch-oriented so a single flush can write many records at once.
type Sink interface {
	// WriteRecords persists a batch of call records, preserving order.
	// Returns error on failure; caller decides whether to retry.
	WriteRecords(ctx context.Context, records []*types.CallRecord) error
	// Close releases any resources held by the sink.
	Close() error
}

// StubSink is a test sink that accepts writes without persisting.
// Tracks write statistics for test assertions.
type StubSink struct {
	mu sync.Mutex

	RecordsWritten int64
	Batches        int64
	Closed         bool
	WrittenRecords []*types.CallRecord
	ErrorOnWrite   error
}

// NewStubSink creates a new stub sink for testing.
func NewStubSink() *StubSink {
	return &StubSink{WrittenRecords: make([]*types.CallRecord, 0)}
}

// WriteRecords records the batch without persisting.
func (s *StubSink) WriteRecords(_ context.Context, records []*types.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrorOnWrite != nil {
		return s.ErrorOnWrite
	}

	s.Batches++
	s.RecordsWritten += int64(len(records))
	s.WrittenRecords = append(s.WrittenRecords, records...)
	return nil
}

// Close marks the sink as closed.
func (s *StubSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}
