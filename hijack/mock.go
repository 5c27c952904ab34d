package hijack

import (
	"context"

	"github.com/kordless/mystic/types"
)

// Mock substitutes a fixed value or callable-derived value for the
// original, gated by the process environment tag, per spec.md §4.G.
type Mock struct {
	// Data is returned verbatim unless it is a func(args []any) any, in
	// which case it is invoked with the call's args and its result used.
	Data any
	// Environments restricts which environment tags trigger the mock;
	// empty defaults to {"development", "testing"}.
	Environments map[string]bool
	// Environment is the active environment tag, normally wired from
	// config.Config.Environment.
	Environment string
}

// NewMock builds a Mock strategy. environment is the process's current
// environment tag; environments, if non-empty, overrides the default
// development/testing allow-set.
func NewMock(data any, environment string, environments ...string) *Mock {
	m := &Mock{Data: data, Environment: environment}
	if len(environments) > 0 {
		m.Environments = make(map[string]bool, len(environments))
		for _, e := range environments {
			m.Environments[e] = true
		}
	}
	return m
}

func (*Mock) Name() string             { return "mock" }
func (*Mock) Priority() types.Priority { return types.PriorityHigh }

func (m *Mock) ShouldIntercept(context.Context, *types.HijackContext) bool {
	if len(m.Environments) == 0 {
		return m.Environment == "development" || m.Environment == "testing"
	}
	return m.Environments[m.Environment]
}

func (m *Mock) Handle(_ context.Context, hc *types.HijackContext, _ types.Original) types.HijackResult {
	if fn, ok := m.Data.(func(args []any) any); ok {
		return types.HijackResult{Executed: true, Value: fn(hc.Args)}
	}
	return types.HijackResult{Executed: true, Value: m.Data}
}

var _ types.Strategy = (*Mock)(nil)
