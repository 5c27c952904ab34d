// Package hijack is the Interception Engine (spec.md §4.G), Mystic's
// core: wrapping an arbitrary Go func value in a signature-preserving
// stub that runs an ordered chain of Strategy values, recording exactly
// one authoritative result per call while guaranteeing the original runs
// at most once. Grounded on the teacher's closed-interface-over-open-
// variant shape (policy.Policy) for Strategy, on proxy/selector.go for
// multi-target Redirect selection (hijack/select.go), and on
// lode.Sink/lode.Client's "interface + stub + real impl" shape for the
// Cache strategy's disk persistence boundary (hijack/cachestore.go).
package hijack

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/kordless/mystic/correlate"
	"github.com/kordless/mystic/logx"
	"github.com/kordless/mystic/metrics"
	"github.com/kordless/mystic/types"
)

// Wrapper is the callable a client gets back from Hijack: it carries the
// original function, an ordered strategy chain, and call bookkeeping, per
// spec.md §4.G's "Wrapper object".
type Wrapper struct {
	identity     types.FunctionIdentity
	original     reflect.Value
	originalType reflect.Type
	wrapped      reflect.Value

	lock *reentrantLock

	statsMu    sync.Mutex
	strategies []types.Strategy
	callCount  int64
	lastArgs   []any
	lastResult any

	subMu          sync.Mutex
	mcpSubscribers []func()

	logger  *logx.Logger
	tracker *metrics.Tracker
}

// Func returns the wrapped callable to pass wherever the original
// function's type is expected — reflect.MakeFunc guarantees it has the
// exact same function type as the original.
func (w *Wrapper) Func() any {
	return w.wrapped.Interface()
}

// Identity returns the wrapped function's stable identity.
func (w *Wrapper) Identity() types.FunctionIdentity {
	return w.identity
}

// AddStrategy appends strategy to the chain, re-sorting by priority
// descending, stable on insertion order for equal priorities.
func (w *Wrapper) AddStrategy(s types.Strategy) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.strategies = append(w.strategies, s)
	sort.SliceStable(w.strategies, func(i, j int) bool {
		return w.strategies[i].Priority() > w.strategies[j].Priority()
	})
}

// RemoveStrategy removes the first strategy with the given name, if any.
func (w *Wrapper) RemoveStrategy(name string) bool {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	for i, s := range w.strategies {
		if s.Name() == name {
			w.strategies = append(w.strategies[:i], w.strategies[i+1:]...)
			return true
		}
	}
	return false
}

// Strategies returns a snapshot of the current chain, in evaluation order.
func (w *Wrapper) Strategies() []types.Strategy {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	out := make([]types.Strategy, len(w.strategies))
	copy(out, w.strategies)
	return out
}

// CallCount reports how many times Call has run.
func (w *Wrapper) CallCount() int64 {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return w.callCount
}

// LastSeen returns the most recent call's args and result.
func (w *Wrapper) LastSeen() (args []any, result any) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return w.lastArgs, w.lastResult
}

// Subscribe registers a zero-arg callable notified on every call's entry
// and exit, per spec.md §4.G's "mcp_subscribers".
func (w *Wrapper) Subscribe(notify func()) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	w.mcpSubscribers = append(w.mcpSubscribers, notify)
}

func (w *Wrapper) notifySubscribers() {
	w.subMu.Lock()
	subs := append([]func(){}, w.mcpSubscribers...)
	w.subMu.Unlock()
	for _, notify := range subs {
		func() {
			defer func() { _ = recover() }()
			notify()
		}()
	}
}

// call runs the full interception algorithm per spec.md §4.G: build
// context, run the strategy chain in priority order, fall through to the
// original on a full miss, log, track, and notify.
func (w *Wrapper) call(args []reflect.Value) []reflect.Value {
	unlock := w.lock.lock()
	defer unlock()

	ctx := context.Background()
	argsAny := make([]any, len(args))
	for i, a := range args {
		argsAny[i] = a.Interface()
	}

	correlationID := w.logCall(argsAny)
	hc := &types.HijackContext{
		Identity:      w.identity,
		Args:          argsAny,
		CorrelationID: correlationID,
		StartedAt:     time.Now(),
	}

	w.notifySubscribers()

	value, err, originalPanicVal := w.runChain(ctx, hc, args)

	duration := time.Since(hc.StartedAt)
	w.tracker.Track(w.identity, duration, nil)
	w.logReturn(value, duration, correlationID, err)

	w.statsMu.Lock()
	w.callCount++
	w.lastArgs = argsAny
	w.lastResult = value
	w.statsMu.Unlock()

	w.notifySubscribers()

	if originalPanicVal != nil {
		// OriginalFault: logged and tracked above, now propagated to the
		// caller exactly as if they had called the original directly.
		panic(originalPanicVal)
	}

	return resultToReflectValues(w.originalType, value, err)
}

// originalPanic tags a panic that unwound from the wrapped original
// callable itself, as opposed to one raised by a strategy's own logic.
// Strategies invoke the original through the "original" closure handed to
// Handle (e.g. Cache.Handle, Conditional's delegated branch); without this
// tag invokeStrategy's recover cannot tell "the original panicked while a
// strategy called it" apart from "the strategy panicked on its own", and
// would swallow the former as a declined strategy result — which then
// falls through to call's own original invocation and runs the original a
// second time, violating the at-most-once guarantee.
type originalPanic struct{ value any }

// callOriginalGuarded calls callOriginal and re-panics any panic tagged as
// originalPanic, so it unwinds through strategy.Handle and invokeStrategy
// without being mistaken for the strategy's own failure.
func callOriginalGuarded(fn reflect.Value, args []reflect.Value) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			panic(originalPanic{value: p})
		}
	}()
	return callOriginal(fn, args)
}

// runChain runs the strategy chain and, on a full miss, the original
// callable, recovering an OriginalFault panic so call can log and track it
// like any other return before re-raising it to the real caller. A panic
// that is not tagged originalPanic is a genuine bug elsewhere in this
// method and is left to crash normally.
func (w *Wrapper) runChain(ctx context.Context, hc *types.HijackContext, args []reflect.Value) (value any, err error, panicVal any) {
	defer func() {
		if p := recover(); p != nil {
			op, ok := p.(originalPanic)
			if !ok {
				panic(p)
			}
			panicVal = op.value
			err = fmt.Errorf("hijack: original callable %q panicked: %v", w.identity.QualifiedName, op.value)
		}
	}()

	executed := false
	for _, strategy := range w.strategies {
		if !strategy.ShouldIntercept(ctx, hc) {
			continue
		}
		result := w.invokeStrategy(strategy, ctx, hc)
		if result.Executed {
			value, err = result.Value, result.Err
			executed = true
			break
		}
	}

	if !executed {
		value, err = callOriginalGuarded(w.original, args)
	}
	return value, err, nil
}

// invokeStrategy runs strategy.Handle, catching a panic so a broken
// strategy never crashes the call path: it is treated as a declined
// (Executed=false) result and the chain continues, per spec.md §4.G's
// failure semantics ("strategy internal failures: swallowed"). A panic
// tagged originalPanic did not come from the strategy itself — it is the
// original callable unwinding from inside the strategy's delegated call —
// and is re-raised untouched so runChain can recover it as an
// OriginalFault instead of this treating it as a StrategyFault.
func (w *Wrapper) invokeStrategy(strategy types.Strategy, ctx context.Context, hc *types.HijackContext) (result types.HijackResult) {
	defer func() {
		if p := recover(); p != nil {
			if op, ok := p.(originalPanic); ok {
				panic(op)
			}
			if w.logger != nil {
				w.logger.LogReturn(w.identity, nil, 0, hc.CorrelationID, fmt.Errorf("hijack: strategy %q panicked: %v", strategy.Name(), p))
			}
			result = types.Passthrough()
		}
	}()
	original := func(_ context.Context, callArgs []any) (any, error) {
		values := make([]reflect.Value, len(callArgs))
		for i, a := range callArgs {
			if a == nil {
				values[i] = reflect.Zero(w.originalType.In(i))
			} else {
				values[i] = reflect.ValueOf(a)
			}
		}
		return callOriginalGuarded(w.original, values)
	}
	return strategy.Handle(ctx, hc, original)
}

func (w *Wrapper) logCall(args []any) string {
	if w.logger == nil {
		id := correlate.Current()
		if id == "" {
			id = correlate.Generate()
		}
		correlate.SetCurrent(id)
		return id
	}
	return w.logger.LogCall(w.identity, args, nil, "")
}

func (w *Wrapper) logReturn(value any, duration time.Duration, correlationID string, err error) {
	if w.logger == nil {
		return
	}
	w.logger.LogReturn(w.identity, value, duration, correlationID, err)
}
