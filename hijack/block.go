package hijack

import (
	"context"
	"fmt"

	"github.com/kordless/mystic/types"
)

// BlockedError is raised (as the call's error result) by a Block strategy
// configured with RaiseError, per spec.md §4.G.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("hijack: call blocked: %s", e.Reason)
}

// Block unconditionally prevents the original from running, either
// returning a configured sentinel value or failing with BlockedError.
type Block struct {
	Reason     string
	RaiseError bool
	Sentinel   any
}

// NewBlock builds a Block strategy.
func NewBlock(reason string, raiseError bool, sentinel any) *Block {
	return &Block{Reason: reason, RaiseError: raiseError, Sentinel: sentinel}
}

func (*Block) Name() string                 { return "block" }
func (*Block) Priority() types.Priority     { return types.PriorityHigh }
func (*Block) ShouldIntercept(context.Context, *types.HijackContext) bool { return true }

func (b *Block) Handle(_ context.Context, _ *types.HijackContext, _ types.Original) types.HijackResult {
	if b.RaiseError {
		return types.HijackResult{Executed: true, Err: &BlockedError{Reason: b.Reason}}
	}
	return types.HijackResult{Executed: true, Value: b.Sentinel}
}

var _ types.Strategy = (*Block)(nil)
