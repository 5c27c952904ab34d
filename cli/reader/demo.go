package reader

import (
	"fmt"
	"sort"

	"github.com/kordless/mystic/hijack"
	"github.com/kordless/mystic/inspect"
	"github.com/kordless/mystic/logx"
	"github.com/kordless/mystic/mcpserver"
	"github.com/kordless/mystic/metrics"
	"github.com/kordless/mystic/state"
	"github.com/kordless/mystic/types"
)

// SampleTask and SampleLookup are registered with the demo catalog so
// `list`/`inspect` have something to show before a host registers its own
// functions. They mirror the teacher's StubReader role: shape-correct
// output when nothing real has been wired up yet.
func SampleTask(name string) string { return "processing " + name }

func SampleLookup(id int) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("invalid id: %d", id)
	}
	return fmt.Sprintf("record-%d", id), nil
}

// DemoReader wraps a self-contained set of core subsystems seeded with a
// couple of illustrative functions. It is the default Reader: a host
// embedding mystic replaces it via SetReader with a Reader backed by its
// own Catalog/Tracker/State/Logger once those are wired into its process.
type DemoReader struct {
	catalog   *mcpserver.Catalog
	inspector *inspect.Inspector
	tracker   *metrics.Tracker
	manager   *state.Manager
	logger    *logx.Logger
}

// NewDemoReader builds a DemoReader with SampleTask/SampleLookup
// registered in its catalog.
func NewDemoReader() *DemoReader {
	catalog := mcpserver.NewCatalog()
	_, _ = catalog.Register(SampleTask)
	_, _ = catalog.Register(SampleLookup)

	return &DemoReader{
		catalog:   catalog,
		inspector: inspect.New(),
		tracker:   metrics.NewTracker(),
		manager:   state.New(0),
		logger:    logx.NewLogger(),
	}
}

func (r *DemoReader) ListFunctions(moduleFilter string, includePrivate bool) []FunctionSummary {
	identities := r.catalog.List(moduleFilter, includePrivate)
	out := make([]FunctionSummary, 0, len(identities))
	for _, id := range identities {
		out = append(out, FunctionSummary{
			FullName: id.String(),
			Module:   id.Module,
			Name:     id.QualifiedName,
		})
	}
	return out
}

func (r *DemoReader) InspectFunction(fullName string) (*FunctionDetail, error) {
	fn, identity, ok := r.catalog.Lookup(fullName)
	if !ok {
		return nil, fmt.Errorf("reader: unknown function %q", fullName)
	}

	analysis, err := r.inspector.Inspect(fn)
	if err != nil {
		return nil, fmt.Errorf("reader: inspect %q: %w", fullName, err)
	}

	detail := &FunctionDetail{
		FullName:     identity.String(),
		Signature:    signatureString(analysis.Signature),
		Doc:          analysis.Doc.Summary,
		Dependencies: analysis.Dependencies.Calls,
	}

	if w, ok := hijack.Lookup(identity); ok {
		detail.Hijacked = true
		detail.CallCount = w.CallCount()
	}

	return detail, nil
}

func signatureString(sig types.Signature) string {
	out := sig.Name + "("
	for i, param := range sig.Parameters {
		if i > 0 {
			out += ", "
		}
		out += param.Name + " " + param.Type
	}
	out += ") " + sig.ReturnType
	return out
}

func (r *DemoReader) ListHijacked() []HijackedItem {
	wrappers := hijack.List()
	out := make([]HijackedItem, 0, len(wrappers))
	for _, w := range wrappers {
		strategies := make([]string, 0, len(w.Strategies()))
		for _, s := range w.Strategies() {
			strategies = append(strategies, s.Name())
		}
		out = append(out, HijackedItem{
			FullName:   w.Identity().String(),
			Strategies: strategies,
			CallCount:  w.CallCount(),
		})
	}
	return out
}

func (r *DemoReader) StatsMetrics() *MetricsSnapshot {
	snapshot := r.tracker.Snapshot()
	entries := make([]MetricsEntryView, 0, len(snapshot))
	for identity, entry := range snapshot {
		mean := 0.0
		if entry.CallCount > 0 {
			mean = entry.TotalTime.Seconds() / float64(entry.CallCount)
		}
		entries = append(entries, MetricsEntryView{
			FullName:   identity.String(),
			CallCount:  entry.CallCount,
			TotalTimeS: entry.TotalTime.Seconds(),
			MinTimeS:   entry.MinTime.Seconds(),
			MaxTimeS:   entry.MaxTime.Seconds(),
			MeanTimeS:  mean,
			LastCallTs: entry.LastCallTs,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FullName < entries[j].FullName })

	return &MetricsSnapshot{FunctionCount: len(entries), Entries: entries}
}

func (r *DemoReader) StatsState() *StateStats {
	return &StateStats{
		Count:     r.manager.Count(),
		Cursor:    r.manager.Cursor(),
		Bookmarks: r.manager.Bookmarks(),
	}
}

func (r *DemoReader) StatsLogs() *LogStats {
	recent := r.logger.Recent(0)
	stats := &LogStats{RecentCount: len(recent)}
	for _, rec := range recent {
		switch rec.Type {
		case "call":
			stats.CallCount++
		case "return":
			stats.ReturnCount++
		case "error":
			stats.ErrorCount++
		}
	}
	return stats
}

var _ Reader = (*DemoReader)(nil)
