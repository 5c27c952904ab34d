package hijack

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kordless/mystic/metrics"
	"github.com/kordless/mystic/types"
)

func TestAnalysis_AlwaysPassthrough(t *testing.T) {
	a := NewAnalysis(nil)
	result := a.Handle(context.Background(), testHC(), noopOriginal)
	if result.Executed {
		t.Fatal("expected Analysis to never set Executed")
	}
}

func TestAnalysis_TracksArguments(t *testing.T) {
	a := NewAnalysis(nil)
	a.TrackArguments = true
	for i := 0; i < 3; i++ {
		a.Handle(context.Background(), testHC(), noopOriginal)
	}
	if got := a.ObservedArgCount(); got != 3 {
		t.Fatalf("expected 3 observed calls, got %d", got)
	}
}

func TestAnalysis_TracksPerformance(t *testing.T) {
	tr := metrics.NewTracker()
	a := NewAnalysis(tr)
	a.TrackPerformance = true
	hc := testHC()
	a.Handle(context.Background(), hc, noopOriginal)

	snap := tr.Snapshot()
	if snap[hc.Identity].CallCount != 1 {
		t.Fatalf("expected tracker to record 1 call, got %+v", snap[hc.Identity])
	}
}

func TestAnalysis_CallbackInvoked(t *testing.T) {
	var mu sync.Mutex
	var gotDuration time.Duration
	called := false

	a := NewAnalysis(nil)
	a.Callback = func(hc *types.HijackContext, value any, err error, duration time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		called = true
		gotDuration = duration
	}
	a.Handle(context.Background(), testHC(), noopOriginal)

	mu.Lock()
	defer mu.Unlock()
	if !called {
		t.Fatal("expected callback to be invoked")
	}
	if gotDuration < 0 {
		t.Fatal("expected non-negative duration")
	}
}

func TestAnalysis_PanickingCallbackContained(t *testing.T) {
	a := NewAnalysis(nil)
	a.Callback = func(*types.HijackContext, any, error, time.Duration) { panic("boom") }

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("expected panic to be contained, got %v", r)
		}
	}()
	a.Handle(context.Background(), testHC(), noopOriginal)
}
