package logx

import (
	"github.com/kordless/mystic/types"
)

// subscriberQueueCapacity bounds each subscriber's pending-delivery
// queue. A slow subscriber drops its oldest pending record rather than
// blocking the emitting call or starving other subscribers, the same
// drop-oldest discipline policy.BufferedPolicy applies to its own
// buffer, here scoped per subscriber instead of per sink.
const subscriberQueueCapacity = 256

// subscriberQueue delivers records to one Subscriber on its own
// goroutine, off a bounded channel. Full channel -> drop oldest pending
// by draining one before pushing, incrementing Dropped.
type subscriberQueue struct {
	sub          Subscriber
	ch           chan types.CallRecord
	done         chan struct{}
	droppedCount int64
}

func newSubscriberQueue(sub Subscriber) *subscriberQueue {
	q := &subscriberQueue{
		sub:  sub,
		ch:   make(chan types.CallRecord, subscriberQueueCapacity),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *subscriberQueue) run() {
	for {
		select {
		case record, ok := <-q.ch:
			if !ok {
				return
			}
			q.deliver(record)
		case <-q.done:
			return
		}
	}
}

// deliver invokes the subscriber, catching any panic so a broken
// subscriber never affects the caller or other subscribers, per
// spec.md §4.E ("exceptions in a subscriber are caught and recorded").
func (q *subscriberQueue) deliver(record types.CallRecord) {
	defer func() {
		_ = recover()
	}()
	q.sub.Handle(record)
}

// push enqueues record, dropping the oldest pending record if the queue
// is full rather than blocking the emitting call.
func (q *subscriberQueue) push(record types.CallRecord) {
	select {
	case q.ch <- record:
		return
	default:
	}

	// Full: drop the oldest pending record to make room.
	select {
	case <-q.ch:
		q.droppedCount++
	default:
	}
	select {
	case q.ch <- record:
	default:
		q.droppedCount++
	}
}

func (q *subscriberQueue) stop() {
	close(q.done)
}

// Subscribe registers sub to receive every subsequent emitted record on
// its own bounded queue. Subscribers may be added or removed at any
// time per spec.md §4.E.
func (l *Logger) Subscribe(sub Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs[sub.Name()] = newSubscriberQueue(sub)
}

// Unsubscribe stops delivering to the named subscriber.
func (l *Logger) Unsubscribe(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if q, ok := l.subs[name]; ok {
		q.stop()
		delete(l.subs, name)
	}
}

// DroppedCount reports how many records were dropped for the named
// subscriber due to queue pressure.
func (l *Logger) DroppedCount(name string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if q, ok := l.subs[name]; ok {
		return q.droppedCount
	}
	return 0
}

func (l *Logger) fanOut(record types.CallRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, q := range l.subs {
		q.push(record)
	}
}

// Close stops every subscriber's delivery goroutine.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, q := range l.subs {
		q.stop()
	}
	l.subs = make(map[string]*subscriberQueue)
}
