package logx

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kordless/mystic/correlate"
	"github.com/kordless/mystic/types"
)

func testIdentity() types.FunctionIdentity {
	return types.FunctionIdentity{Module: "m", QualifiedName: "f"}
}

func TestLogCall_GeneratesCorrelationID(t *testing.T) {
	defer correlate.Clear()
	l := NewLogger()
	id := l.LogCall(testIdentity(), []any{1, 2}, nil, "")
	if id == "" {
		t.Fatal("expected non-empty correlation id")
	}
	if correlate.Current() != id {
		t.Fatalf("expected correlation context updated, got %q want %q", correlate.Current(), id)
	}
}

func TestLogCall_UsesGivenID(t *testing.T) {
	defer correlate.Clear()
	l := NewLogger()
	id := l.LogCall(testIdentity(), nil, nil, "explicit-id")
	if id != "explicit-id" {
		t.Fatalf("got %q", id)
	}
}

func TestLogReturn_FallsBackToAmbientCorrelation(t *testing.T) {
	defer correlate.Clear()
	l := NewLogger()
	correlate.SetCurrent("ambient-id")
	// LogReturn with no correlation id uses whatever the context holds,
	// even if it wasn't set by a matching LogCall — documented behavior.
	l.LogReturn(testIdentity(), 42, time.Millisecond, "", nil)
}

func TestRedaction_AppliedBeforeEmission(t *testing.T) {
	sub := &recordingSubscriber{name: "rec"}
	l := NewLogger()
	l.Subscribe(sub)
	defer l.Close()

	l.LogCall(testIdentity(), []any{"password=hunter2"}, nil, "cid")
	waitForDelivery(t, sub, 1)

	records := sub.snapshot()
	if records[0].Args[0] != "password=****" {
		t.Fatalf("expected redacted arg, got %v", records[0].Args[0])
	}
}

func TestLogReturn_ErrorSetsRecordTypeAndKind(t *testing.T) {
	sub := &recordingSubscriber{name: "rec"}
	l := NewLogger()
	l.Subscribe(sub)
	defer l.Close()

	l.LogReturn(testIdentity(), nil, time.Millisecond, "cid", errors.New("boom"))
	waitForDelivery(t, sub, 1)

	records := sub.snapshot()
	if records[0].Type != types.CallRecordError {
		t.Fatalf("expected error record type, got %v", records[0].Type)
	}
	if records[0].Error == nil || records[0].Error.Message != "boom" {
		t.Fatalf("expected error message recorded, got %+v", records[0].Error)
	}
}

func TestSubscribeFanOut_MultipleSubscribers(t *testing.T) {
	a := &recordingSubscriber{name: "a"}
	b := &recordingSubscriber{name: "b"}
	l := NewLogger()
	l.Subscribe(a)
	l.Subscribe(b)
	defer l.Close()

	l.LogCall(testIdentity(), nil, nil, "cid")
	waitForDelivery(t, a, 1)
	waitForDelivery(t, b, 1)
}

func TestSubscriberPanicIsContained(t *testing.T) {
	panicky := &panickingSubscriber{}
	l := NewLogger()
	l.Subscribe(panicky)
	defer l.Close()

	// Should not panic the caller.
	l.LogCall(testIdentity(), nil, nil, "cid")
	time.Sleep(20 * time.Millisecond)
}

func TestUnsubscribe(t *testing.T) {
	sub := &recordingSubscriber{name: "rec"}
	l := NewLogger()
	l.Subscribe(sub)
	l.Unsubscribe("rec")
	l.LogCall(testIdentity(), nil, nil, "cid")
	time.Sleep(10 * time.Millisecond)
	if len(sub.snapshot()) != 0 {
		t.Fatal("expected no delivery after unsubscribe")
	}
}

func TestRingBuffer_Recent(t *testing.T) {
	l := NewLogger(WithRingSize(2))

	l.LogCall(testIdentity(), []any{"a"}, nil, "1")
	l.LogCall(testIdentity(), []any{"b"}, nil, "2")
	l.LogCall(testIdentity(), []any{"c"}, nil, "3")

	recent := l.Recent(10)
	if len(recent) != 2 {
		t.Fatalf("expected ring capped at 2, got %d", len(recent))
	}
	if recent[0].CorrelationID != "2" || recent[1].CorrelationID != "3" {
		t.Fatalf("expected oldest-to-newest [2,3], got %v, %v", recent[0].CorrelationID, recent[1].CorrelationID)
	}
}

// --- test doubles ---

type recordingSubscriber struct {
	name string
	mu   sync.Mutex
	recs []types.CallRecord
}

func (s *recordingSubscriber) Name() string { return s.name }
func (s *recordingSubscriber) Handle(r types.CallRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, r)
}
func (s *recordingSubscriber) snapshot() []types.CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.CallRecord, len(s.recs))
	copy(out, s.recs)
	return out
}

type panickingSubscriber struct{}

func (panickingSubscriber) Name() string               { return "panicky" }
func (panickingSubscriber) Handle(r types.CallRecord) { panic("boom") }

func waitForDelivery(t *testing.T, s *recordingSubscriber, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.snapshot()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d deliveries", n)
}
