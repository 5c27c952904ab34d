package hijack

import (
	"context"
	"errors"
	"testing"

	"github.com/kordless/mystic/types"
)

func testHC() *types.HijackContext {
	return &types.HijackContext{
		Identity: types.FunctionIdentity{Module: "hijack_test", QualifiedName: "f"},
		Args:     []any{1, 2},
	}
}

func noopOriginal(context.Context, []any) (any, error) { return nil, nil }

func TestBlock_RaisesError(t *testing.T) {
	b := NewBlock("maintenance", true, nil)
	if !b.ShouldIntercept(context.Background(), testHC()) {
		t.Fatal("expected ShouldIntercept true")
	}
	result := b.Handle(context.Background(), testHC(), noopOriginal)
	if !result.Executed {
		t.Fatal("expected Executed true")
	}
	var be *BlockedError
	if !errors.As(result.Err, &be) {
		t.Fatalf("expected *BlockedError, got %v", result.Err)
	}
	if be.Reason != "maintenance" {
		t.Fatalf("expected reason %q, got %q", "maintenance", be.Reason)
	}
}

func TestBlock_ReturnsSentinel(t *testing.T) {
	b := NewBlock("disabled", false, "fallback")
	result := b.Handle(context.Background(), testHC(), noopOriginal)
	if !result.Executed || result.Err != nil {
		t.Fatalf("expected Executed=true, Err=nil, got %+v", result)
	}
	if result.Value != "fallback" {
		t.Fatalf("expected sentinel %q, got %v", "fallback", result.Value)
	}
}

func TestBlock_Priority(t *testing.T) {
	if NewBlock("x", true, nil).Priority() != types.PriorityHigh {
		t.Fatal("expected PriorityHigh")
	}
}
