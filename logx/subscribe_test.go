package logx

import (
	"sync"
	"testing"
	"time"

	"github.com/kordless/mystic/types"
)

type blockingSubscriber struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingSubscriber) Name() string { return "blocker" }
func (b *blockingSubscriber) Handle(r types.CallRecord) {
	b.once.Do(func() { close(b.started) })
	<-b.release
}

func TestSubscriberQueue_DropsUnderPressure(t *testing.T) {
	sub := &blockingSubscriber{release: make(chan struct{}), started: make(chan struct{})}
	q := newSubscriberQueue(sub)
	defer q.stop()

	q.push(rec("first"))
	<-sub.started // first record is now blocking inside Handle

	// Fill the queue well past capacity; every push beyond capacity must
	// drop the oldest pending record rather than block the caller.
	for i := 0; i < subscriberQueueCapacity+50; i++ {
		q.push(rec("filler"))
	}

	if q.droppedCount == 0 {
		t.Fatal("expected drops once the queue filled")
	}

	close(sub.release)
}

func TestLoggerDroppedCount_UnknownSubscriber(t *testing.T) {
	l := NewLogger()
	if got := l.DroppedCount("nope"); got != 0 {
		t.Fatalf("expected 0 for unknown subscriber, got %d", got)
	}
}

func TestLoggerClose_StopsAllQueues(t *testing.T) {
	a := &recordingSubscriber{name: "a"}
	l := NewLogger()
	l.Subscribe(a)
	l.Close()

	if len(l.subs) != 0 {
		t.Fatalf("expected subs cleared after Close, got %d", len(l.subs))
	}

	// Pushing after Close should not panic since the subscriber map is empty.
	l.LogCall(testIdentity(), nil, nil, "cid")
	time.Sleep(10 * time.Millisecond)
}
