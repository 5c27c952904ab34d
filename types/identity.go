// Package types holds the shared data model for Mystic's core subsystems:
// identity, call context, strategies, cache entries, call records,
// function analysis, metrics, and snapshots. Every subsystem keys its
// registries off FunctionIdentity; no subsystem keys off a Go func value's
// address, which is not stable across reflect.MakeFunc wrapping.
package types

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// FunctionIdentity is the stable (module, qualified_name) key for a
// callable. It is derived once, at hijack time, from the target's program
// counter and never recomputed from object identity.
type FunctionIdentity struct {
	// Module is the Go package path the function is declared in.
	Module string
	// QualifiedName is the function or method name, including any
	// receiver type for methods (e.g. "(*Tracker).Snapshot").
	QualifiedName string
}

// String renders the identity as "module.QualifiedName", matching the
// format Go's runtime itself uses for FuncForPC names.
func (id FunctionIdentity) String() string {
	if id.Module == "" {
		return id.QualifiedName
	}
	return id.Module + "." + id.QualifiedName
}

// IdentityOf derives a FunctionIdentity from any function value.
// Returns the zero identity if fn is not a func or is nil.
func IdentityOf(fn any) (FunctionIdentity, error) {
	if fn == nil {
		return FunctionIdentity{}, fmt.Errorf("types: IdentityOf: nil function")
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return FunctionIdentity{}, fmt.Errorf("types: IdentityOf: %T is not a func", fn)
	}
	if v.IsNil() {
		return FunctionIdentity{}, fmt.Errorf("types: IdentityOf: nil function value")
	}
	pc := v.Pointer()
	rf := runtime.FuncForPC(pc)
	if rf == nil {
		return FunctionIdentity{}, fmt.Errorf("types: IdentityOf: no runtime.Func for pointer %#x", pc)
	}
	return parseFuncName(rf.Name()), nil
}

// parseFuncName splits a runtime.Func.Name() result ("pkg/path.Func" or
// "pkg/path.(*Type).Method") into a FunctionIdentity. The split point is
// the first "." after the last "/", so a receiver segment and any method
// name stay in QualifiedName.
func parseFuncName(full string) FunctionIdentity {
	lastSlash := strings.LastIndex(full, "/")
	searchFrom := 0
	if lastSlash >= 0 {
		searchFrom = lastSlash
	}
	rest := full[searchFrom:]
	dot := strings.Index(rest, ".")
	if dot < 0 {
		return FunctionIdentity{QualifiedName: full}
	}
	module := full[:searchFrom+dot]
	qualified := full[searchFrom+dot+1:]
	return FunctionIdentity{Module: module, QualifiedName: qualified}
}
