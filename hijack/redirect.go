package hijack

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kordless/mystic/types"
)

// RedirectTarget is a single callable a Redirect strategy may dispatch
// to in place of the original. It must accept the same argument count
// the wrapped function does; types are reconciled by reflection at call
// time, the same conversion rules hijack/result.go uses for strategy
// results.
type RedirectTarget = any

// Redirect sends the call to one or more alternate callables instead of
// the original, per spec.md §4.G. With a single target it always
// dispatches there; with multiple targets it consults a targetSelector
// (round-robin / random / sticky, grounded on proxy/selector.go).
// ArgsTransform and ResultTransform, if set, let the caller reshape the
// call before dispatch and the result before it's handed back.
type Redirect struct {
	Targets        []RedirectTarget
	ArgsTransform  func(args []any) []any
	ResultTransform func(value any, err error) (any, error)
	StickyKeyFunc  func(hc *types.HijackContext) string

	selector *targetSelector
}

// NewRedirect builds a Redirect strategy over one or more targets. For
// len(targets) > 1, strategy/recencyWindow configure selection among
// them; both are ignored for a single target.
func NewRedirect(targets []RedirectTarget, strategy RedirectSelectStrategy, recencyWindow int) *Redirect {
	r := &Redirect{Targets: targets}
	if len(targets) > 1 {
		r.selector = newTargetSelector(len(targets), strategy, recencyWindow)
	}
	return r
}

func (*Redirect) Name() string                 { return "redirect" }
func (*Redirect) Priority() types.Priority     { return types.PriorityNormal }
func (*Redirect) ShouldIntercept(context.Context, *types.HijackContext) bool { return true }

func (r *Redirect) Handle(_ context.Context, hc *types.HijackContext, _ types.Original) types.HijackResult {
	if len(r.Targets) == 0 {
		return types.HijackResult{Executed: true, Err: fmt.Errorf("hijack: redirect has no targets")}
	}

	target, err := r.pickTarget(hc)
	if err != nil {
		return types.HijackResult{Executed: true, Err: err}
	}

	args := hc.Args
	if r.ArgsTransform != nil {
		args = r.ArgsTransform(args)
	}

	value, callErr := r.invoke(target, args)
	if r.ResultTransform != nil {
		value, callErr = r.ResultTransform(value, callErr)
	}
	return types.HijackResult{Executed: true, Value: value, Err: callErr}
}

func (r *Redirect) pickTarget(hc *types.HijackContext) (RedirectTarget, error) {
	if r.selector == nil {
		return r.Targets[0], nil
	}
	key := ""
	if r.StickyKeyFunc != nil {
		key = r.StickyKeyFunc(hc)
	}
	idx, err := r.selector.Select(key)
	if err != nil {
		return nil, err
	}
	return r.Targets[idx], nil
}

// invoke calls target with args via reflection, applying the same
// result-shape convention hijack/result.go uses for the outer wrapper:
// last return is the error if it implements error, the rest collapse to
// nil/bare-value/[]any.
func (r *Redirect) invoke(target RedirectTarget, args []any) (value any, err error) {
	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Func {
		return nil, fmt.Errorf("hijack: redirect target %T is not callable", target)
	}
	tt := tv.Type()

	in := make([]reflect.Value, 0, len(args))
	for i, a := range args {
		if i >= tt.NumIn() && !tt.IsVariadic() {
			break
		}
		in = append(in, argToReflectValue(tt, i, a))
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("hijack: redirect target panicked: %v", p)
			value = nil
		}
	}()

	var out []reflect.Value
	if tt.IsVariadic() {
		out = tv.CallSlice(in)
	} else {
		out = tv.Call(in)
	}
	return splitResults(tt, out)
}

// argToReflectValue converts a positional argument to the reflect.Value
// a target's parameter slot expects, falling back to the zero value of
// that slot's type when a nil or mismatched argument is supplied.
func argToReflectValue(fnType reflect.Type, idx int, arg any) reflect.Value {
	paramType := paramTypeAt(fnType, idx)
	if arg == nil {
		return reflect.Zero(paramType)
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(paramType) {
		return av
	}
	if av.Type().ConvertibleTo(paramType) {
		return av.Convert(paramType)
	}
	return reflect.Zero(paramType)
}

func paramTypeAt(fnType reflect.Type, idx int) reflect.Type {
	if fnType.IsVariadic() && idx >= fnType.NumIn()-1 {
		return fnType.In(fnType.NumIn() - 1).Elem()
	}
	if idx < fnType.NumIn() {
		return fnType.In(idx)
	}
	return reflect.TypeOf((*any)(nil)).Elem()
}

var _ types.Strategy = (*Redirect)(nil)
