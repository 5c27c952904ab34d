// Package logx is the Call Logger (spec.md §4.E): structured call/return/
// MCP event emission with correlation, redaction, a recent-history ring
// buffer, and best-effort subscriber fan-out. It is grounded on
// log/logger.go's zap core construction and policy/buffered.go's
// bounded-buffer drop discipline, generalized here to each subscriber's
// own bounded queue instead of one shared buffer in front of a disk sink.
package logx

import (
	"sync"
	"time"

	"github.com/kordless/mystic/correlate"
	"github.com/kordless/mystic/log"
	"github.com/kordless/mystic/redact"
	"github.com/kordless/mystic/types"
)

// Subscriber receives every CallRecord the logger emits. Handle must not
// block for long: it runs on the subscriber's own delivery goroutine,
// but a slow Handle still causes that subscriber's queue to back up and
// drop under pressure.
type Subscriber interface {
	Name() string
	Handle(record types.CallRecord)
}

// Logger is the Call Logger: formats and emits call/return/MCP events,
// maintains a ring buffer of recent records, and fans them out to
// subscribers on bounded, independent queues.
type Logger struct {
	base     *log.Logger
	sugar    *log.SugaredLogger
	format   log.Format
	redactor *redact.Redactor
	filter   bool

	ring *ringBuffer

	mu   sync.Mutex
	subs map[string]*subscriberQueue
}

// Option configures a Logger at construction.
type Option func(*Logger)

// WithFormat selects the emitted event format (console/file/json_rpc/
// structured/mcp_debug); console is used if omitted.
func WithFormat(f log.Format) Option {
	return func(l *Logger) { l.format = f }
}

// WithRedactor overrides the default built-ins-only Redactor.
func WithRedactor(r *redact.Redactor) Option {
	return func(l *Logger) { l.redactor = r }
}

// WithFilterSensitive toggles whether redaction runs before emission;
// mirrors config.Config.FilterSensitive.
func WithFilterSensitive(on bool) Option {
	return func(l *Logger) { l.filter = on }
}

// WithRingSize sets the recent-history ring buffer capacity; 0 disables
// history retention.
func WithRingSize(n int) Option {
	return func(l *Logger) { l.ring = newRingBuffer(n) }
}

// WithBaseLogger lets a caller supply an already-configured *log.Logger
// (e.g. one writing to a rotating file) instead of the stderr default.
func WithBaseLogger(base *log.Logger) Option {
	return func(l *Logger) { l.base = base }
}

// NewLogger builds a Call Logger.
func NewLogger(opts ...Option) *Logger {
	l := &Logger{
		format:   log.FormatConsole,
		redactor: redact.New(),
		filter:   true,
		ring:     newRingBuffer(256),
		subs:     make(map[string]*subscriberQueue),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.base == nil {
		l.base = log.NewLoggerWithFormat(l.format)
	}
	l.sugar = l.base.Sugar()
	return l
}

// LogCall records a call's entry. If correlationID is empty, one is
// generated and set current per spec.md §4.E. Returns the correlation id
// used so the wrapper can pass it through to LogReturn.
func (l *Logger) LogCall(identity types.FunctionIdentity, args []any, kwargs map[string]any, correlationID string) string {
	id := correlationID
	if id == "" {
		id = correlate.Current()
	}
	if id == "" {
		id = correlate.Generate()
	}
	correlate.SetCurrent(id)

	record := types.CallRecord{
		Type:          types.CallRecordCall,
		Ts:            time.Now(),
		CorrelationID: id,
		Identity:      identity,
		Args:          l.maybeRedactSlice(args),
		Kwargs:        l.maybeRedactMap(kwargs),
	}
	l.emit(record)
	return id
}

// LogReturn records a call's exit. err and result are mutually
// exclusive; correlationID is whatever the caller (or the ambient
// correlation context) holds, even if it was generated by an earlier,
// unrelated call on the same goroutine — that is documented behavior,
// not a bug.
func (l *Logger) LogReturn(identity types.FunctionIdentity, result any, duration time.Duration, correlationID string, err error) {
	if correlationID == "" {
		correlationID = correlate.Current()
	}
	record := types.CallRecord{
		Type:          types.CallRecordReturn,
		Ts:            time.Now(),
		CorrelationID: correlationID,
		Identity:      identity,
	}
	durS := duration.Seconds()
	record.DurationS = &durS
	if err != nil {
		record.Type = types.CallRecordError
		record.Error = types.NewErrorRecord(err)
	} else {
		record.Result = l.maybeRedact(result)
	}
	l.emit(record)
}

// LogMCPRequest emits a JSON-RPC-shaped request event; id becomes the
// correlation id for the life of the handler.
func (l *Logger) LogMCPRequest(method string, params any, id string) {
	correlate.SetCurrent(id)
	l.sugar.Infof("→ mcp request method=%s id=%s params=%s", method, id, redact.String(params))
}

// LogMCPResponse emits a JSON-RPC-shaped response event.
func (l *Logger) LogMCPResponse(result any, id string, err error) {
	if err != nil {
		l.sugar.Infof("← mcp response id=%s error=%s", id, err.Error())
		return
	}
	l.sugar.Infof("← mcp response id=%s result=%s", id, redact.String(result))
}

func (l *Logger) maybeRedact(v any) any {
	if !l.filter || v == nil {
		return v
	}
	return l.redactor.Redact(v)
}

func (l *Logger) maybeRedactSlice(v []any) []any {
	if !l.filter {
		return v
	}
	out := make([]any, len(v))
	for i, e := range v {
		out[i] = l.redactor.Redact(e)
	}
	return out
}

func (l *Logger) maybeRedactMap(v map[string]any) map[string]any {
	if !l.filter || v == nil {
		return v
	}
	out := make(map[string]any, len(v))
	for k, e := range v {
		out[k] = l.redactor.Redact(e)
	}
	return out
}

func (l *Logger) emit(record types.CallRecord) {
	l.writeFormatted(record)
	l.ring.push(record)
	l.fanOut(record)
}

func (l *Logger) writeFormatted(record types.CallRecord) {
	fields := map[string]any{
		"type":           string(record.Type),
		"correlation_id": record.CorrelationID,
		"identity":       record.Identity.String(),
	}
	if record.Error != nil {
		l.base.Error("call event", fields)
		return
	}
	l.base.Info("call event", fields)
}

// Recent returns up to n of the most recently emitted records, newest
// last. It lets a subscriber attaching late catch up on recent history.
func (l *Logger) Recent(n int) []types.CallRecord {
	return l.ring.recent(n)
}
