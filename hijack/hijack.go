package hijack

import (
	"fmt"
	"reflect"

	"github.com/kordless/mystic/logx"
	"github.com/kordless/mystic/metrics"
	"github.com/kordless/mystic/types"
)

// Option configures a Wrapper at Hijack time.
type Option func(*Wrapper)

// WithLogger attaches a Call Logger so call/return/error events are
// emitted for this wrapper; without one, correlation ids still advance
// but nothing is logged.
func WithLogger(l *logx.Logger) Option {
	return func(w *Wrapper) { w.logger = l }
}

// WithTracker attaches a Performance Tracker; without one, timing is
// measured but discarded.
func WithTracker(t *metrics.Tracker) Option {
	return func(w *Wrapper) { w.tracker = t }
}

// WithStrategies appends the given strategies at construction, in
// addition to any re-sort Hijack performs.
func WithStrategies(strategies ...types.Strategy) Option {
	return func(w *Wrapper) {
		for _, s := range strategies {
			w.AddStrategy(s)
		}
	}
}

// Hijack wraps fn in a signature-preserving Wrapper and registers it in
// the process-wide registry, keyed by fn's FunctionIdentity. Per
// spec.md §4.G, hijacking an already-hijacked function is idempotent:
// the existing Wrapper is returned with any new strategies appended
// rather than replaced, and fn itself is ignored (it should be the same
// underlying callable, reached a second time by whatever call site still
// holds the pre-wrap reference).
func Hijack(fn any, opts ...Option) (*Wrapper, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("hijack: %T is not a hijackable func", fn)
	}

	identity, err := types.IdentityOf(fn)
	if err != nil {
		return nil, fmt.Errorf("hijack: %w", err)
	}

	if existing, ok := defaultRegistry.lookup(identity); ok {
		for _, opt := range opts {
			opt(existing)
		}
		return existing, nil
	}

	w := &Wrapper{
		identity:     identity,
		original:     v,
		originalType: v.Type(),
		lock:         newReentrantLock(),
	}
	w.wrapped = reflect.MakeFunc(v.Type(), w.call)

	for _, opt := range opts {
		opt(w)
	}

	defaultRegistry.register(identity, w)
	return w, nil
}
