package hijack

import "reflect"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callOriginal invokes fn (already bound as a reflect.Value) with args and
// collapses its reflect.Value results into Mystic's (value, err) shape.
// Go's multi-value returns don't fit spec.md's single-value "result"
// vocabulary, so the last return is treated as the error per Go
// convention when its static type implements error; every other return is
// collected positionally into a []any when there is more than one, or
// returned bare when there is exactly one.
func callOriginal(fn reflect.Value, args []reflect.Value) (value any, err error) {
	out := fn.Call(args)
	return splitResults(fn.Type(), out)
}

func splitResults(fnType reflect.Type, out []reflect.Value) (value any, err error) {
	n := len(out)
	if n == 0 {
		return nil, nil
	}

	hasErr := fnType.Out(n-1).Implements(errorType)
	valueOuts := out
	if hasErr {
		if e, ok := out[n-1].Interface().(error); ok {
			err = e
		}
		valueOuts = out[:n-1]
	}

	switch len(valueOuts) {
	case 0:
		return nil, err
	case 1:
		return valueOuts[0].Interface(), err
	default:
		vals := make([]any, len(valueOuts))
		for i, v := range valueOuts {
			vals[i] = v.Interface()
		}
		return vals, err
	}
}

// resultToReflectValues is splitResults run in reverse: it shapes a
// strategy-produced (value, err) pair into the []reflect.Value a
// reflect.MakeFunc stub must return, matching fnType's declared outputs.
// A []any value is unpacked positionally across the non-error outputs; a
// bare value fills the single non-error output; nil fills a zero value.
func resultToReflectValues(fnType reflect.Type, value any, err error) []reflect.Value {
	n := fnType.NumOut()
	out := make([]reflect.Value, n)

	hasErr := n > 0 && fnType.Out(n-1).Implements(errorType)
	valueSlots := n
	if hasErr {
		valueSlots = n - 1
	}

	assign := func(slot int, v any) {
		t := fnType.Out(slot)
		if v == nil {
			out[slot] = reflect.Zero(t)
			return
		}
		rv := reflect.ValueOf(v)
		if rv.Type().AssignableTo(t) {
			out[slot] = rv
			return
		}
		if rv.Type().ConvertibleTo(t) {
			out[slot] = rv.Convert(t)
			return
		}
		out[slot] = reflect.Zero(t)
	}

	switch valueSlots {
	case 0:
		// no value slots; nothing to assign
	case 1:
		assign(0, value)
	default:
		if vals, ok := value.([]any); ok {
			for i := 0; i < valueSlots; i++ {
				if i < len(vals) {
					assign(i, vals[i])
				} else {
					out[i] = reflect.Zero(fnType.Out(i))
				}
			}
		} else {
			for i := 0; i < valueSlots; i++ {
				out[i] = reflect.Zero(fnType.Out(i))
			}
		}
	}

	if hasErr {
		errType := fnType.Out(n - 1)
		if err == nil {
			out[n-1] = reflect.Zero(errType)
		} else {
			out[n-1] = reflect.ValueOf(err)
		}
	}
	return out
}
