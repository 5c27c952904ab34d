package hijack

import (
	"context"

	"github.com/kordless/mystic/types"
)

// Conditional delegates to one of two sub-strategies based on a
// predicate evaluated against the call, per spec.md §4.G. A nil branch
// is treated as Passthrough.
type Conditional struct {
	Predicate func(ctx context.Context, hc *types.HijackContext) bool
	IfTrue    types.Strategy
	IfFalse   types.Strategy
}

// NewConditional builds a Conditional strategy.
func NewConditional(predicate func(context.Context, *types.HijackContext) bool, ifTrue, ifFalse types.Strategy) *Conditional {
	return &Conditional{Predicate: predicate, IfTrue: ifTrue, IfFalse: ifFalse}
}

func (*Conditional) Name() string             { return "conditional" }
func (*Conditional) Priority() types.Priority { return types.PriorityNormal }

func (c *Conditional) ShouldIntercept(ctx context.Context, hc *types.HijackContext) bool {
	branch := c.branch(ctx, hc)
	if branch == nil {
		return false
	}
	return branch.ShouldIntercept(ctx, hc)
}

func (c *Conditional) Handle(ctx context.Context, hc *types.HijackContext, original types.Original) types.HijackResult {
	branch := c.branch(ctx, hc)
	if branch == nil {
		return types.Passthrough()
	}
	return branch.Handle(ctx, hc, original)
}

func (c *Conditional) branch(ctx context.Context, hc *types.HijackContext) types.Strategy {
	if c.Predicate == nil {
		return nil
	}
	if c.Predicate(ctx, hc) {
		return c.IfTrue
	}
	return c.IfFalse
}

var _ types.Strategy = (*Conditional)(nil)
