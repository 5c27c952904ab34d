package inspect

import (
	"testing"
)

func TestInspect_Signature(t *testing.T) {
	insp := New()
	analysis, err := insp.Inspect(Add)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if analysis.Signature.Name != "Add" {
		t.Fatalf("got name %q", analysis.Signature.Name)
	}
	if len(analysis.Signature.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d: %+v", len(analysis.Signature.Parameters), analysis.Signature.Parameters)
	}
	if analysis.Signature.Parameters[0].Name != "a" || analysis.Signature.Parameters[1].Name != "b" {
		t.Fatalf("expected param names a, b, got %+v", analysis.Signature.Parameters)
	}
	if analysis.Signature.ReturnType != "int" {
		t.Fatalf("expected return type int, got %q", analysis.Signature.ReturnType)
	}
}

func TestInspect_Docstring(t *testing.T) {
	insp := New()
	analysis, err := insp.Inspect(Add)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if analysis.Doc.Summary != "Add returns the sum of a and b." {
		t.Fatalf("unexpected summary: %q", analysis.Doc.Summary)
	}
	if analysis.Doc.Params["a"] != "the first addend" {
		t.Fatalf("unexpected param doc: %+v", analysis.Doc.Params)
	}
	if analysis.Doc.Returns == "" {
		t.Fatal("expected non-empty Returns section")
	}
}

func TestInspect_RaisesSection(t *testing.T) {
	insp := New()
	analysis, err := insp.Inspect(Divide)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if analysis.Doc.Raises["ErrDivideByZero"] != "when b is zero" {
		t.Fatalf("unexpected raises: %+v", analysis.Doc.Raises)
	}
}

func TestInspect_VariadicSchema(t *testing.T) {
	insp := New()
	analysis, err := insp.Inspect(Sum)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !analysis.Schema.AdditionalProperties {
		t.Fatal("expected AdditionalProperties true for variadic func")
	}
	if len(analysis.Schema.Properties) != 0 {
		t.Fatalf("expected no named properties for a purely variadic func, got %+v", analysis.Schema.Properties)
	}
}

func TestInspect_Recursion(t *testing.T) {
	insp := New()
	analysis, err := insp.Inspect(Fib)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !analysis.Performance.Recursive {
		t.Fatal("expected Fib to be flagged recursive")
	}
	if analysis.Performance.HasLoops {
		t.Fatal("Fib has no loop, only recursion and an if")
	}
}

func TestInspect_Method(t *testing.T) {
	w := &widget{}
	insp := New()
	analysis, err := insp.Inspect(w.Increment)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if analysis.Signature.Name != "Increment" {
		t.Fatalf("got %q", analysis.Signature.Name)
	}
}

func TestInspect_CachesUntilReset(t *testing.T) {
	insp := New()
	first, err := insp.Inspect(Add)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	second, err := insp.Inspect(Add)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if first.ASTHash != second.ASTHash {
		t.Fatalf("expected stable ast hash across calls, got %q vs %q", first.ASTHash, second.ASTHash)
	}

	insp.Reset()
	third, err := insp.Inspect(Add)
	if err != nil {
		t.Fatalf("Inspect after reset: %v", err)
	}
	if third.ASTHash != first.ASTHash {
		t.Fatal("expected identical hash after reset re-parse")
	}
}

func TestInspect_NilFuncReturnsError(t *testing.T) {
	insp := New()
	if _, err := insp.Inspect(nil); err == nil {
		t.Fatal("expected error for nil")
	}
}

func TestInspect_NonFuncReturnsError(t *testing.T) {
	insp := New()
	if _, err := insp.Inspect(42); err == nil {
		t.Fatal("expected error for non-func value")
	}
}
