package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/kordless/mystic/policy"
	"github.com/kordless/mystic/types"
)

// recordingSubscriber collects every record Handle is called with.
type recordingSubscriber struct {
	mu      sync.Mutex
	name    string
	records []types.CallRecord
}

func (r *recordingSubscriber) Name() string { return r.name }

func (r *recordingSubscriber) Handle(record types.CallRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recordingSubscriber) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func testCallRecord() types.CallRecord {
	return types.CallRecord{
		Type:     types.CallRecordCall,
		Ts:       time.Now(),
		Identity: types.FunctionIdentity{Module: "m", QualifiedName: "f"},
	}
}

func TestBatchSubscriber_BuffersUntilFlush(t *testing.T) {
	rec := &recordingSubscriber{name: "test-sub"}
	b, err := NewBatchSubscriber(rec, policy.BufferedConfig{MaxBufferRecords: 100}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer b.Close()

	if b.Name() != "test-sub" {
		t.Errorf("Name() = %q, want test-sub", b.Name())
	}

	b.Handle(testCallRecord())
	b.Handle(testCallRecord())

	if got := rec.count(); got != 0 {
		t.Errorf("expected 0 records delivered before flush, got %d", got)
	}
	if got := b.Stats().TotalRecords; got != 2 {
		t.Errorf("TotalRecords = %d, want 2", got)
	}
}

func TestBatchSubscriber_FlushesOnTimer(t *testing.T) {
	rec := &recordingSubscriber{name: "test-sub"}
	b, err := NewBatchSubscriber(rec, policy.BufferedConfig{MaxBufferRecords: 100}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer b.Close()

	b.Handle(testCallRecord())

	deadline := time.Now().Add(time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := rec.count(); got != 1 {
		t.Errorf("expected 1 record delivered after timer flush, got %d", got)
	}
}

func TestBatchSubscriber_CloseFlushesRemaining(t *testing.T) {
	rec := &recordingSubscriber{name: "test-sub"}
	b, err := NewBatchSubscriber(rec, policy.BufferedConfig{MaxBufferRecords: 100}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b.Handle(testCallRecord())
	b.Handle(testCallRecord())
	b.Handle(testCallRecord())

	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := rec.count(); got != 3 {
		t.Errorf("expected 3 records delivered after Close, got %d", got)
	}
}

func TestNewBatchSubscriber_RejectsInvalidConfig(t *testing.T) {
	rec := &recordingSubscriber{name: "test-sub"}
	if _, err := NewBatchSubscriber(rec, policy.BufferedConfig{}, time.Second); err == nil {
		t.Fatal("expected error for config with no buffer limit set")
	}
}
