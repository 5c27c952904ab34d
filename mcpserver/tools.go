package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kordless/mystic/hijack"
	"github.com/kordless/mystic/state"
	"github.com/kordless/mystic/types"
)

// registerBuiltinTools wires spec.md §6's canonical MCP tool set to this
// server's subsystems.
func (s *Server) registerBuiltinTools() {
	s.RegisterHandler("discover_functions", s.discoverFunctions)
	s.RegisterHandler("inspect_function", s.inspectFunction)
	s.RegisterHandler("hijack_function", s.hijackFunction)
	s.RegisterHandler("unhijack_function", s.unhijackFunction)
	s.RegisterHandler("list_hijacked", s.listHijacked)
	s.RegisterHandler("get_function_metrics", s.getFunctionMetrics)
	s.RegisterHandler("state_snapshots", s.stateSnapshots)
	s.RegisterHandler("state_timeline", s.stateTimeline)
	s.RegisterHandler("logs_query", s.logsQuery)
}

// discoveredFunction is one discover_functions list entry, per spec.md
// §6's table.
type discoveredFunction struct {
	Name      string `json:"name"`
	Module    string `json:"module"`
	FullName  string `json:"full_name"`
	Signature string `json:"signature"`
	Docstring string `json:"docstring"`
	File      string `json:"file"`
	Line      int    `json:"line"`
	IsAsync   bool   `json:"is_async"`
}

type discoverFunctionsParams struct {
	ModuleFilter   string `json:"module_filter"`
	IncludePrivate bool   `json:"include_private"`
}

func (s *Server) discoverFunctions(_ context.Context, params json.RawMessage) (any, error) {
	var p discoverFunctionsParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	identities := s.Catalog.List(p.ModuleFilter, p.IncludePrivate)
	out := make([]discoveredFunction, 0, len(identities))
	for _, identity := range identities {
		fn, _, ok := s.Catalog.Lookup(identity.String())
		if !ok {
			continue
		}
		analysis, err := s.Inspector.Inspect(fn)
		if err != nil {
			continue
		}
		out = append(out, discoveredFunction{
			Name:      analysis.Signature.Name,
			Module:    identity.Module,
			FullName:  identity.String(),
			Signature: signatureString(analysis.Signature),
			Docstring: analysis.Doc.Summary,
			Line:      0,
			IsAsync:   analysis.Signature.Flags.IsAsync,
		})
	}
	return out, nil
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

type fullNameParams struct {
	FullName string `json:"full_name"`
}

func (s *Server) inspectFunction(_ context.Context, params json.RawMessage) (any, error) {
	var p fullNameParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	fn, _, ok := s.Catalog.Lookup(p.FullName)
	if !ok {
		return nil, fmt.Errorf("mcpserver: no function registered as %q", p.FullName)
	}
	return s.Inspector.Inspect(fn)
}

// hijackFunctionParams mirrors spec.md §6's
// `{full_name, strategy ∈ {cache,mock,block,redirect,analyze}, options}`.
type hijackFunctionParams struct {
	FullName string          `json:"full_name"`
	Strategy string          `json:"strategy"`
	Options  json.RawMessage `json:"options"`
}

type hijackFunctionResult struct {
	OK       bool   `json:"ok"`
	Identity string `json:"identity"`
}

func (s *Server) hijackFunction(_ context.Context, params json.RawMessage) (any, error) {
	var p hijackFunctionParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	fn, _, ok := s.Catalog.Lookup(p.FullName)
	if !ok {
		return nil, fmt.Errorf("mcpserver: no function registered as %q", p.FullName)
	}

	strategy, err := s.buildStrategy(p.Strategy, p.Options)
	if err != nil {
		return nil, err
	}

	opts := []hijack.Option{hijack.WithStrategies(strategy)}
	if s.Tracker != nil {
		opts = append(opts, hijack.WithTracker(s.Tracker))
	}
	if s.Logger != nil {
		opts = append(opts, hijack.WithLogger(s.Logger))
	}
	w, err := hijack.Hijack(fn, opts...)
	if err != nil {
		return nil, err
	}
	return hijackFunctionResult{OK: true, Identity: w.Identity().String()}, nil
}

// buildStrategy constructs the named built-in Strategy from a JSON
// options object. conditional is deliberately absent here: its branches
// are Go Strategy values and its predicate a Go func, neither of which a
// JSON-RPC caller can supply — spec.md §6's own strategy enum omits it
// for the same reason every other MCP-exposed strategy must be fully
// data-driven.
func (s *Server) buildStrategy(kind string, options json.RawMessage) (types.Strategy, error) {
	switch kind {
	case "block":
		var o struct {
			Reason     string `json:"reason"`
			RaiseError bool   `json:"raise_error"`
			Sentinel   any    `json:"sentinel"`
		}
		if err := decodeParams(options, &o); err != nil {
			return nil, err
		}
		return hijack.NewBlock(o.Reason, o.RaiseError, o.Sentinel), nil

	case "mock":
		var o struct {
			Data         any      `json:"data"`
			Environment  string   `json:"environment"`
			Environments []string `json:"environments"`
		}
		if err := decodeParams(options, &o); err != nil {
			return nil, err
		}
		return hijack.NewMock(o.Data, o.Environment, o.Environments...), nil

	case "cache":
		var o struct {
			TTLSeconds float64 `json:"ttl_seconds"`
			MaxEntries int     `json:"max_entries"`
		}
		if err := decodeParams(options, &o); err != nil {
			return nil, err
		}
		ttl := time.Duration(o.TTLSeconds * float64(time.Second))
		return hijack.NewCache(ttl, o.MaxEntries, nil), nil

	case "redirect":
		var o struct {
			Targets       []string `json:"targets"`
			Select        string   `json:"select"`
			RecencyWindow int      `json:"recency_window"`
		}
		if err := decodeParams(options, &o); err != nil {
			return nil, err
		}
		if len(o.Targets) == 0 {
			return nil, fmt.Errorf("mcpserver: redirect strategy requires at least one target")
		}
		targets := make([]hijack.RedirectTarget, 0, len(o.Targets))
		for _, fullName := range o.Targets {
			fn, _, ok := s.Catalog.Lookup(fullName)
			if !ok {
				return nil, fmt.Errorf("mcpserver: redirect target %q is not a registered function", fullName)
			}
			targets = append(targets, fn)
		}
		strategy := hijack.SelectRoundRobin
		switch o.Select {
		case "random":
			strategy = hijack.SelectRandom
		case "sticky":
			strategy = hijack.SelectSticky
		}
		return hijack.NewRedirect(targets, strategy, o.RecencyWindow), nil

	case "analyze":
		var o struct {
			TrackPerformance bool `json:"track_performance"`
			TrackArguments   bool `json:"track_arguments"`
		}
		if err := decodeParams(options, &o); err != nil {
			return nil, err
		}
		a := hijack.NewAnalysis(s.Tracker)
		a.TrackPerformance = o.TrackPerformance
		a.TrackArguments = o.TrackArguments
		return a, nil

	default:
		return nil, fmt.Errorf("mcpserver: unknown strategy %q", kind)
	}
}

func (s *Server) unhijackFunction(_ context.Context, params json.RawMessage) (any, error) {
	var p fullNameParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	_, identity, ok := s.Catalog.Lookup(p.FullName)
	if !ok {
		return nil, fmt.Errorf("mcpserver: no function registered as %q", p.FullName)
	}
	if err := hijack.Unhijack(identity); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type hijackedEntry struct {
	Identity   string   `json:"identity"`
	Strategies []string `json:"strategies"`
	CallCount  int64    `json:"call_count"`
}

func (s *Server) listHijacked(context.Context, json.RawMessage) (any, error) {
	wrappers := hijack.List()
	out := make([]hijackedEntry, 0, len(wrappers))
	for _, w := range wrappers {
		strategies := w.Strategies()
		names := make([]string, len(strategies))
		for i, strat := range strategies {
			names[i] = strat.Name()
		}
		out = append(out, hijackedEntry{
			Identity:   w.Identity().String(),
			Strategies: names,
			CallCount:  w.CallCount(),
		})
	}
	return out, nil
}

type getFunctionMetricsParams struct {
	FullName string `json:"full_name"`
}

func (s *Server) getFunctionMetrics(_ context.Context, params json.RawMessage) (any, error) {
	if s.Tracker == nil {
		return map[types.FunctionIdentity]types.MetricsEntry{}, nil
	}
	var p getFunctionMetricsParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	snapshot := s.Tracker.Snapshot()
	if p.FullName == "" {
		return snapshot, nil
	}
	_, identity, ok := s.Catalog.Lookup(p.FullName)
	if !ok {
		return nil, fmt.Errorf("mcpserver: no function registered as %q", p.FullName)
	}
	entry, ok := snapshot[identity]
	if !ok {
		return types.MetricsEntry{}, nil
	}
	return entry, nil
}

type stateSnapshotsParams struct {
	Filter struct {
		Kind     string `json:"kind"`
		Function string `json:"function"`
	} `json:"filter"`
	Limit int `json:"limit"`
}

func (s *Server) stateSnapshots(_ context.Context, params json.RawMessage) (any, error) {
	if s.State == nil {
		return []*types.Snapshot{}, nil
	}
	var p stateSnapshotsParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	filter := state.ListFilter{
		Kind:     types.SnapshotKind(p.Filter.Kind),
		Function: p.Filter.Function,
		Limit:    p.Limit,
	}
	return s.State.List(filter), nil
}

type stateTimelineResult struct {
	Count     int               `json:"count"`
	Cursor    int               `json:"cursor"`
	Bookmarks map[string]string `json:"bookmarks"`
}

func (s *Server) stateTimeline(context.Context, json.RawMessage) (any, error) {
	if s.State == nil {
		return stateTimelineResult{Bookmarks: map[string]string{}}, nil
	}
	return stateTimelineResult{
		Count:     s.State.Count(),
		Cursor:    s.State.Cursor(),
		Bookmarks: s.State.Bookmarks(),
	}, nil
}

type logsQueryParams struct {
	FullName string `json:"identity"`
	Since    string `json:"since"`
	Limit    int    `json:"limit"`
}

func (s *Server) logsQuery(_ context.Context, params json.RawMessage) (any, error) {
	if s.Logger == nil {
		return []types.CallRecord{}, nil
	}
	var p logsQueryParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}
	records := s.Logger.Recent(limit)

	var sinceTs time.Time
	if p.Since != "" {
		if parsed, err := time.Parse(time.RFC3339, p.Since); err == nil {
			sinceTs = parsed
		}
	}

	var identity types.FunctionIdentity
	filterByIdentity := false
	if p.FullName != "" {
		if _, id, ok := s.Catalog.Lookup(p.FullName); ok {
			identity, filterByIdentity = id, true
		}
	}

	out := make([]types.CallRecord, 0, len(records))
	for _, rec := range records {
		if filterByIdentity && rec.Identity != identity {
			continue
		}
		if !sinceTs.IsZero() && rec.Ts.Before(sinceTs) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeParams unmarshals params into dest, treating an empty/nil params
// as a no-op (every tool's fields are optional-by-zero-value).
func decodeParams(params json.RawMessage, dest any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return fmt.Errorf("mcpserver: invalid params: %w", err)
	}
	return nil
}
