package hijack

import (
	"context"
	"testing"

	"github.com/kordless/mystic/types"
)

func TestConditional_RoutesToTrueBranch(t *testing.T) {
	c := NewConditional(
		func(context.Context, *types.HijackContext) bool { return true },
		NewMock("yes", "development"),
		NewMock("no", "development"),
	)
	result := c.Handle(context.Background(), testHC(), noopOriginal)
	if result.Value != "yes" {
		t.Fatalf("expected %q, got %v", "yes", result.Value)
	}
}

func TestConditional_RoutesToFalseBranch(t *testing.T) {
	c := NewConditional(
		func(context.Context, *types.HijackContext) bool { return false },
		NewMock("yes", "development"),
		NewMock("no", "development"),
	)
	result := c.Handle(context.Background(), testHC(), noopOriginal)
	if result.Value != "no" {
		t.Fatalf("expected %q, got %v", "no", result.Value)
	}
}

func TestConditional_NilBranchIsPassthrough(t *testing.T) {
	c := NewConditional(func(context.Context, *types.HijackContext) bool { return true }, nil, NewMock("no", "development"))
	result := c.Handle(context.Background(), testHC(), noopOriginal)
	if result.Executed {
		t.Fatalf("expected Passthrough, got %+v", result)
	}
}

func TestConditional_ShouldInterceptDelegatesToBranch(t *testing.T) {
	c := NewConditional(
		func(context.Context, *types.HijackContext) bool { return true },
		NewMock("x", "production"), // ShouldIntercept false for production default
		nil,
	)
	if c.ShouldIntercept(context.Background(), testHC()) {
		t.Fatal("expected ShouldIntercept to reflect the chosen branch's own gate")
	}
}

func TestConditional_NilPredicateTreatedAsNilBranch(t *testing.T) {
	c := &Conditional{IfTrue: NewMock("x", "development")}
	if c.ShouldIntercept(context.Background(), testHC()) {
		t.Fatal("expected false with no predicate")
	}
	result := c.Handle(context.Background(), testHC(), noopOriginal)
	if result.Executed {
		t.Fatal("expected Passthrough with no predicate")
	}
}
