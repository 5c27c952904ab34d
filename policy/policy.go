// Package policy implements the bounded, drop-aware buffering discipline
// the Call Logger (spec.md §4.E) uses when persisting CallRecords to a
// Sink. It generalizes the teacher's ingestion-policy package: the
// event/chunk split and the three-flush-mode state machine don't apply
// to a flat stream of call records, but the bounded-buffer-with-drop-
// rules discipline does, so that part survives close to verbatim.
package policy

import (
	"context"

	"github.com/kordless/mystic/types"
)

// Policy buffers and persists CallRecords emitted by the Call Logger.
type Policy interface {
	// Ingest buffers one record, applying drop rules if the buffer is full.
	Ingest(record *types.CallRecord) error
	// Flush writes all buffered records to the sink.
	Flush(ctx context.Context) error
	// Close flushes and releases the sink.
	Close() error
	// Stats returns an atomic snapshot of buffering statistics.
	Stats() Stats
}

// Stats reports buffering/persistence counters for observability.
type Stats struct {
	TotalRecords     int64
	RecordsPersisted int64
	RecordsDropped   int64
	DroppedByType    map[types.CallRecordType]int64
	BufferSize       int64
	FlushCount       int64
	Errors           int64
}

// droppableTypes classifies which CallRecordTypes may be dropped under
// buffer pressure. Error records are kept: they are the highest-value
// signal for a developer debugging a hijacked call, so the logger would
// rather drop a routine call/return pair than lose an error.
var droppableTypes = map[types.CallRecordType]bool{
	types.CallRecordCall:   true,
	types.CallRecordReturn: true,
	types.CallRecordError:  false,
}

// IsDroppable reports whether t may be dropped by a Policy under buffer
// pressure.
func IsDroppable(t types.CallRecordType) bool {
	return droppableTypes[t]
}

// statsRecorder is a thread-safe accumulator for Stats. Methods suffixed
// Locked assume the caller already holds the owning Policy's mutex, so
// that buffer-state mutation and counter updates stay atomic together.
type statsRecorder struct {
	stats Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{stats: Stats{DroppedByType: make(map[types.CallRecordType]int64)}}
}

func (r *statsRecorder) incTotalLocked()            { r.stats.TotalRecords++ }
func (r *statsRecorder) incPersistedLocked(n int64) { r.stats.RecordsPersisted += n }
func (r *statsRecorder) incErrorsLocked()           { r.stats.Errors++ }
func (r *statsRecorder) incFlushLocked()            { r.stats.FlushCount++ }
func (r *statsRecorder) setBufferSizeLocked(n int64) { r.stats.BufferSize = n }

func (r *statsRecorder) incDroppedLocked(t types.CallRecordType) {
	r.stats.RecordsDropped++
	r.stats.DroppedByType[t]++
}

func (r *statsRecorder) snapshotLocked(bufferSize int64) Stats {
	s := r.stats
	s.BufferSize = bufferSize
	s.DroppedByType = make(map[types.CallRecordType]int64, len(r.stats.DroppedByType))
	for k, v := range r.stats.DroppedByType {
		s.DroppedByType[k] = v
	}
	return s
}
