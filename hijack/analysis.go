package hijack

import (
	"context"
	"sync"
	"time"

	"github.com/kordless/mystic/metrics"
	"github.com/kordless/mystic/types"
)

// Analysis passively observes calls without ever producing the call's
// result: it is the only built-in strategy whose Handle normally returns
// Executed=false, letting the chain continue, per spec.md §4.G. Grounded
// on the teacher's runtime/fanout.go EnqueueObserver hook shape — a
// passive callback invoked alongside the real pipeline rather than
// replacing a stage of it.
type Analysis struct {
	Callback         func(hc *types.HijackContext, value any, err error, duration time.Duration)
	TrackPerformance bool
	TrackArguments   bool
	TrackMemory      bool

	tracker *metrics.Tracker

	mu           sync.Mutex
	observedArgs [][]any
}

// NewAnalysis builds an Analysis strategy. tracker, if non-nil, receives
// timing samples when TrackPerformance is set (in addition to whatever
// tracker the Wrapper itself is configured with).
func NewAnalysis(tracker *metrics.Tracker) *Analysis {
	return &Analysis{tracker: tracker}
}

func (*Analysis) Name() string                 { return "analysis" }
func (*Analysis) Priority() types.Priority     { return types.PriorityLow }
func (*Analysis) ShouldIntercept(context.Context, *types.HijackContext) bool { return true }

func (a *Analysis) Handle(_ context.Context, hc *types.HijackContext, original types.Original) types.HijackResult {
	start := time.Now()
	if a.TrackArguments {
		a.mu.Lock()
		a.observedArgs = append(a.observedArgs, hc.Args)
		a.mu.Unlock()
	}

	// Analysis never calls original itself: invariant I2 reserves "at most
	// once" execution for the chain's fallthrough step, and a passive
	// observer calling original here would both violate that and make the
	// strategy indistinguishable from Redirect.
	duration := time.Since(start)
	if a.TrackPerformance && a.tracker != nil {
		a.tracker.Track(hc.Identity, duration, nil)
	}
	if a.Callback != nil {
		func() {
			defer func() { _ = recover() }()
			a.Callback(hc, nil, nil, duration)
		}()
	}
	return types.Passthrough()
}

// ObservedArgCount reports how many calls TrackArguments has recorded.
func (a *Analysis) ObservedArgCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.observedArgs)
}

var _ types.Strategy = (*Analysis)(nil)
