package state

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// now is a single indirection point so tests can't accidentally depend
// on wall-clock ordering across fast successive captures; production
// always uses the real clock.
var now = time.Now

// coerceJSON reduces data to the form it would take after a JSON
// marshal/unmarshal round trip (maps, slices, and JSON primitives),
// matching spec.md's "coerced to a JSON-serializable form at capture
// time". Values that cannot be marshaled (channels, funcs, values
// containing them) fall back to a {"__type__", "__repr__"} wrapper, the
// Go analogue of spec.md's `{__class__, __dict__}` fallback for
// non-JSON-native objects.
func coerceJSON(data any) any {
	if data == nil {
		return nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return map[string]any{
			"__type__": fmt.Sprintf("%T", data),
			"__repr__": fmt.Sprintf("%+v", data),
		}
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return map[string]any{
			"__type__": fmt.Sprintf("%T", data),
			"__repr__": fmt.Sprintf("%+v", data),
		}
	}
	return decoded
}

// deepCopy returns an independent copy of an already-coerceJSON'd
// value, via the same marshal/unmarshal round trip. Safe to call with
// nil.
func deepCopy(data any) any {
	if data == nil {
		return nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return data
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return data
	}
	return decoded
}

// jsonEqual reports whether two already-coerced values are
// structurally equal.
func jsonEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
