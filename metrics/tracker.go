// Package metrics is the Performance Tracker (spec.md §4.D): per-function
// rolling call statistics under a concurrency discipline, extending the
// teacher's counter-collector pattern (sync.Mutex-guarded state,
// nil-receiver-safe increments, Snapshot returning an immutable copy) with
// Welford's online algorithm so variance never needs a second pass over
// the samples.
package metrics

import (
	"sync"
	"time"

	"github.com/kordless/mystic/types"
)

// Tracker accumulates per-identity call statistics. The zero value is not
// usable; use NewTracker.
type Tracker struct {
	mu       sync.Mutex
	threadUnsafe bool
	sampleMem    bool
	entries  map[types.FunctionIdentity]*types.MetricsEntry
}

// Option configures a Tracker at construction.
type Option func(*Tracker)

// WithThreadUnsafe disables locking for single-threaded hot paths, per
// spec.md §4.D ("the tracker may be configured thread-unsafe"). Only use
// this when the caller can guarantee Track is never called concurrently.
func WithThreadUnsafe() Option {
	return func(t *Tracker) { t.threadUnsafe = true }
}

// WithMemorySampling turns on the optional Go heap (HeapAlloc) probe. Off by
// default: spec.md's ≤1µs-per-call overhead target assumes it is off.
func WithMemorySampling() Option {
	return func(t *Tracker) { t.sampleMem = true }
}

// NewTracker builds a Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{entries: make(map[types.FunctionIdentity]*types.MetricsEntry)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track records one call's duration against identity, updating the
// running mean/variance via Welford's algorithm. memoryDelta is recorded
// only when non-nil; pass nil when the caller didn't sample memory.
func (t *Tracker) Track(identity types.FunctionIdentity, duration time.Duration, memoryDelta *int64) {
	if t == nil {
		return
	}
	if !t.threadUnsafe {
		t.mu.Lock()
		defer t.mu.Unlock()
	}

	e, ok := t.entries[identity]
	if !ok {
		e = &types.MetricsEntry{MinTime: duration, MaxTime: duration}
		t.entries[identity] = e
	}

	e.CallCount++
	e.TotalTime += duration
	if duration < e.MinTime || e.CallCount == 1 {
		e.MinTime = duration
	}
	if duration > e.MaxTime {
		e.MaxTime = duration
	}
	e.LastCallTs = time.Now()

	// Welford: delta = x - mean; mean += delta/n; M2 += delta*(x-mean_new).
	x := duration.Seconds()
	delta := x - e.RunningMean
	e.RunningMean += delta / float64(e.CallCount)
	delta2 := x - e.RunningMean
	e.RunningM2 += delta * delta2

	if memoryDelta != nil {
		e.MemoryDeltaSamples++
		e.MemoryDeltaTotal += *memoryDelta
	}
}

// Snapshot returns an immutable copy of every tracked identity's current
// MetricsEntry.
func (t *Tracker) Snapshot() map[types.FunctionIdentity]types.MetricsEntry {
	if t == nil {
		return nil
	}
	if !t.threadUnsafe {
		t.mu.Lock()
		defer t.mu.Unlock()
	}
	out := make(map[types.FunctionIdentity]types.MetricsEntry, len(t.entries))
	for id, e := range t.entries {
		out[id] = *e
	}
	return out
}

// Reset clears the statistics of the given identity only; ResetAll clears
// the whole tracker.
func (t *Tracker) Reset(identity types.FunctionIdentity) {
	if t == nil {
		return
	}
	if !t.threadUnsafe {
		t.mu.Lock()
		defer t.mu.Unlock()
	}
	delete(t.entries, identity)
}

// ResetAll clears every tracked identity's statistics.
func (t *Tracker) ResetAll() {
	if t == nil {
		return
	}
	if !t.threadUnsafe {
		t.mu.Lock()
		defer t.mu.Unlock()
	}
	t.entries = make(map[types.FunctionIdentity]*types.MetricsEntry)
}

// SampleMemory reports whether this Tracker was configured to sample
// memory, so callers (the wrapper) know whether to pay for a probe.
func (t *Tracker) SampleMemory() bool {
	return t != nil && t.sampleMem
}
