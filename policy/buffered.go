package policy

import (
	"context"
	"errors"
	"sync"

	"github.com/kordless/mystic/types"

	"github.com/kordless/mystic/log"
)

// BufferedConfig configures a BufferedPolicy.
type BufferedConfig struct {
	// MaxBufferRecords is the maximum number of records to buffer. Zero
	// means no limit (use MaxBufferBytes instead).
	MaxBufferRecords int
	// MaxBufferBytes is the maximum estimated buffer size in bytes. Zero
	// means no limit. At least one limit must be set.
	MaxBufferBytes int64
	// Logger is an optional logger for drop/overflow observability.
	Logger *log.Logger
}

// DefaultBufferedConfig returns sensible defaults for buffered logging.
func DefaultBufferedConfig() BufferedConfig {
	return BufferedConfig{
		MaxBufferRecords: 1000,
		MaxBufferBytes:   10 * 1024 * 1024,
	}
}

// ErrBufferFull is returned when the buffer is full and the incoming
// record is non-droppable (an error record) with no droppable record
// available to evict in its place.
var ErrBufferFull = errors.New("policy: buffer full, cannot accept non-droppable record")

// ErrInvalidConfig is returned when BufferedConfig has no limit set.
var ErrInvalidConfig = errors.New("policy: at least one of MaxBufferRecords or MaxBufferBytes must be set")

// BufferedPolicy buffers CallRecords in memory and flushes them to a
// Sink in batches, applying drop rules under pressure: call/return
// records may be dropped to make room, error records never are.
type BufferedPolicy struct {
	sink   Sink
	config BufferedConfig
	logger *log.Logger

	mu          sync.Mutex
	buffer      []*types.CallRecord
	bufferBytes int64
	stats       *statsRecorder
}

// NewBufferedPolicy creates a new buffered policy writing to sink.
func NewBufferedPolicy(sink Sink, config BufferedConfig) (*BufferedPolicy, error) {
	if config.MaxBufferRecords <= 0 && config.MaxBufferBytes <= 0 {
		return nil, ErrInvalidConfig
	}
	return &BufferedPolicy{
		sink:   sink,
		config: config,
		logger: config.Logger,
		buffer: make([]*types.CallRecord, 0, max(config.MaxBufferRecords, 100)),
		stats:  newStatsRecorder(),
	}, nil
}

// Ingest buffers record, applying drop rules if the buffer is full.
//
// Drop strategy when full:
//   - incoming record droppable: drop it, record in stats
//   - incoming record non-droppable and buffer has droppable records:
//     drop the oldest droppable record to make room
//   - incoming record non-droppable and no droppable records to evict:
//     return ErrBufferFull
func (p *BufferedPolicy) Ingest(record *types.CallRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.incTotalLocked()
	size := estimateRecordSize(record)

	if p.hasRoom(size) {
		p.append(record, size)
		return nil
	}

	if IsDroppable(record.Type) {
		p.stats.incDroppedLocked(record.Type)
		p.logDrop(record.Type, "buffer_full")
		return nil
	}

	if p.dropOldestDroppable() && p.hasRoomForBytes(size) {
		p.append(record, size)
		return nil
	}

	p.stats.incErrorsLocked()
	p.logOverflow(record.Type)
	return ErrBufferFull
}

func (p *BufferedPolicy) append(record *types.CallRecord, size int64) {
	p.buffer = append(p.buffer, record)
	p.bufferBytes += size
	p.stats.setBufferSizeLocked(p.bufferBytes)
}

// Flush writes all buffered records to the sink, preserving all buffered
// data on failure so a retry does not lose anything (at-least-once).
func (p *BufferedPolicy) Flush(ctx context.Context) error {
	p.mu.Lock()
	p.stats.incFlushLocked()
	records := p.buffer
	p.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	if err := p.sink.WriteRecords(ctx, records); err != nil {
		p.mu.Lock()
		p.stats.incErrorsLocked()
		p.mu.Unlock()
		p.logFlushFailure(err)
		return err
	}

	p.mu.Lock()
	p.stats.incPersistedLocked(int64(len(records)))
	p.buffer = make([]*types.CallRecord, 0, max(p.config.MaxBufferRecords, 100))
	p.bufferBytes = 0
	p.stats.setBufferSizeLocked(0)
	p.mu.Unlock()

	return nil
}

// Close flushes any remaining records and closes the sink.
func (p *BufferedPolicy) Close() error {
	_ = p.Flush(context.Background())
	return p.sink.Close()
}

// Stats returns an atomic snapshot of buffering statistics.
func (p *BufferedPolicy) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.snapshotLocked(p.bufferBytes)
}

func (p *BufferedPolicy) hasRoom(size int64) bool {
	if p.config.MaxBufferRecords > 0 && len(p.buffer) >= p.config.MaxBufferRecords {
		return false
	}
	return p.hasRoomForBytes(size)
}

func (p *BufferedPolicy) hasRoomForBytes(size int64) bool {
	if p.config.MaxBufferBytes > 0 && p.bufferBytes+size > p.config.MaxBufferBytes {
		return false
	}
	return true
}

// dropOldestDroppable evicts the oldest droppable record. Caller holds mu.
func (p *BufferedPolicy) dropOldestDroppable() bool {
	for i, r := range p.buffer {
		if IsDroppable(r.Type) {
			size := estimateRecordSize(r)
			p.buffer = append(p.buffer[:i], p.buffer[i+1:]...)
			p.bufferBytes -= size
			p.stats.setBufferSizeLocked(p.bufferBytes)
			p.stats.incDroppedLocked(r.Type)
			p.logDrop(r.Type, "evicted_for_non_droppable")
			return true
		}
	}
	return false
}

// estimateRecordSize gives a rough size estimate for buffer accounting.
// A fixed envelope cost plus a per-argument/result guess, the same style
// of estimate the teacher used for EventEnvelope payloads.
func estimateRecordSize(r *types.CallRecord) int64 {
	size := int64(150)
	size += int64(len(r.Args)) * 50
	size += int64(len(r.Kwargs)) * 50
	if r.Result != nil {
		size += 50
	}
	return size
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (p *BufferedPolicy) logDrop(t types.CallRecordType, reason string) {
	if p.logger == nil {
		return
	}
	p.logger.Warn("call record dropped", map[string]any{
		"record_type": string(t),
		"reason":      reason,
		"policy":      "buffered",
	})
}

func (p *BufferedPolicy) logOverflow(t types.CallRecordType) {
	if p.logger == nil {
		return
	}
	p.logger.Error("call log buffer overflow", map[string]any{
		"record_type": string(t),
		"policy":      "buffered",
	})
}

func (p *BufferedPolicy) logFlushFailure(err error) {
	if p.logger == nil {
		return
	}
	p.logger.Error("call log flush failed", map[string]any{
		"error":  err.Error(),
		"policy": "buffered",
	})
}

var _ Policy = (*BufferedPolicy)(nil)
