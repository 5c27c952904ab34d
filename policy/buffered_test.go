package policy

import (
	"context"
	"testing"
	"time"

	"github.com/kordless/mystic/types"
)

func callRecord(typ types.CallRecordType) *types.CallRecord {
	return &types.CallRecord{
		Type: typ,
		Ts:   time.Now(),
		Identity: types.FunctionIdentity{Module: "m", QualifiedName: "f"},
	}
}

func TestBufferedPolicy_IngestAndFlush(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 10})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Ingest(callRecord(types.CallRecordCall)); err != nil {
		t.Fatal(err)
	}
	if err := p.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sink.RecordsWritten != 1 {
		t.Fatalf("expected 1 record written, got %d", sink.RecordsWritten)
	}
}

func TestBufferedPolicy_DropsOldestDroppableUnderPressure(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 1})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Ingest(callRecord(types.CallRecordCall)); err != nil {
		t.Fatal(err)
	}
	// Buffer full of a droppable record; a non-droppable error record
	// must evict it rather than fail.
	if err := p.Ingest(callRecord(types.CallRecordError)); err != nil {
		t.Fatalf("expected error record to evict droppable, got %v", err)
	}

	stats := p.Stats()
	if stats.RecordsDropped != 1 {
		t.Fatalf("expected 1 dropped record, got %d", stats.RecordsDropped)
	}
}

func TestBufferedPolicy_RejectsNonDroppableWhenNoRoom(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 1})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Ingest(callRecord(types.CallRecordError)); err != nil {
		t.Fatal(err)
	}
	if err := p.Ingest(callRecord(types.CallRecordError)); err != ErrBufferFull {
		t.Fatalf("expected ErrBufferFull, got %v", err)
	}
}

func TestBufferedPolicy_DropsIncomingDroppableWhenFull(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Ingest(callRecord(types.CallRecordError)); err != nil {
		t.Fatal(err)
	}
	// Buffer full of a non-droppable record; an incoming droppable
	// record is simply dropped rather than evicting the error.
	if err := p.Ingest(callRecord(types.CallRecordCall)); err != nil {
		t.Fatal(err)
	}
	if stats := p.Stats(); stats.RecordsDropped != 1 {
		t.Fatalf("expected incoming droppable record dropped, got %d", stats.RecordsDropped)
	}
}

func TestBufferedPolicy_InvalidConfig(t *testing.T) {
	_, err := NewBufferedPolicy(NewStubSink(), BufferedConfig{})
	if err != ErrInvalidConfig {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBufferedPolicy_FlushPreservesBufferOnSinkFailure(t *testing.T) {
	sink := NewStubSink()
	sink.ErrorOnWrite = ErrBufferFull
	p, err := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 10})
	if err != nil {
		t.Fatal(err)
	}
	_ = p.Ingest(callRecord(types.CallRecordCall))
	if err := p.Flush(context.Background()); err == nil {
		t.Fatal("expected flush error to propagate")
	}
	stats := p.Stats()
	if stats.BufferSize == 0 {
		t.Fatal("expected buffer to remain populated after failed flush")
	}
}

func TestBufferedPolicy_Close(t *testing.T) {
	sink := NewStubSink()
	p, _ := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 10})
	_ = p.Ingest(callRecord(types.CallRecordCall))
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !sink.Closed {
		t.Fatal("expected sink to be closed")
	}
	if sink.RecordsWritten != 1 {
		t.Fatal("expected close to flush remaining records")
	}
}

func TestIsDroppable(t *testing.T) {
	if !IsDroppable(types.CallRecordCall) {
		t.Error("expected call records to be droppable")
	}
	if !IsDroppable(types.CallRecordReturn) {
		t.Error("expected return records to be droppable")
	}
	if IsDroppable(types.CallRecordError) {
		t.Error("expected error records to be non-droppable")
	}
}
