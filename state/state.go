// Package state implements the State Manager (spec.md §4.H): an ordered
// snapshot timeline with a navigable cursor, bookmarks, watchers, and
// breakpoints. Grounded on policy.BufferedPolicy's in-memory bounded
// buffer (append, trim-from-head when over a configured maximum) and on
// the teacher's "stub client records everything for inspection" shape
// from lode.StubClient, repurposed here as the timeline's own
// export/import round trip rather than a test double.
package state

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kordless/mystic/types"
)

// Manager owns the snapshot timeline for one process. All methods are
// safe for concurrent use, serialized by a single lock per spec.md §5
// ("the state manager uses one lock for the snapshot list and cursor").
type Manager struct {
	mu sync.Mutex

	snapshots []*types.Snapshot
	cursor    int
	nextSeq   int64

	maxSnapshots int

	bookmarks map[string]string // name -> snapshot id

	watchers []func(*types.Snapshot)

	breakpoints map[breakpointKey]func(*types.Snapshot)
}

type breakpointKey struct {
	function string
	line     int
}

// New builds a Manager. maxSnapshots of 0 means unbounded; otherwise the
// timeline is trimmed from the head (oldest first) once it grows past
// maxSnapshots, per spec.md §3's Snapshot lifecycle.
func New(maxSnapshots int) *Manager {
	return &Manager{
		maxSnapshots: maxSnapshots,
		bookmarks:    make(map[string]string),
		breakpoints:  make(map[breakpointKey]func(*types.Snapshot)),
		cursor:       -1,
	}
}

// Watch registers a callback invoked on every Capture, after the
// snapshot is appended. Panics inside the callback are recovered and
// discarded, per spec.md §4.H ("exceptions swallowed").
func (m *Manager) Watch(fn func(*types.Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, fn)
}

// Breakpoint registers fn to additionally fire when Capture targets the
// given (function, line) pair.
func (m *Manager) Breakpoint(function string, line int, fn func(*types.Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakpoints[breakpointKey{function, line}] = fn
}

// RemoveBreakpoint removes any breakpoint registered for (function, line).
func (m *Manager) RemoveBreakpoint(function string, line int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.breakpoints, breakpointKey{function, line})
}

// Capture appends a new snapshot to the timeline, coercing data to a
// JSON-serializable form, and returns its monotone id ("snapshot_N").
// The cursor advances to the new snapshot.
func (m *Manager) Capture(kind types.SnapshotKind, data any, function string, line int, metadata map[string]any) string {
	snap := &types.Snapshot{
		Kind:         kind,
		Data:         coerceJSON(data),
		FunctionName: function,
		Line:         line,
		Metadata:     metadata,
	}
	snap.Ts = now()

	m.mu.Lock()
	m.nextSeq++
	snap.ID = fmt.Sprintf("snapshot_%d", m.nextSeq)
	m.snapshots = append(m.snapshots, snap)
	m.cursor = len(m.snapshots) - 1
	m.trimLocked()

	watchers := append([]func(*types.Snapshot){}, m.watchers...)
	var bp func(*types.Snapshot)
	if function != "" {
		bp = m.breakpoints[breakpointKey{function, line}]
	}
	m.mu.Unlock()

	for _, w := range watchers {
		notify(w, snap)
	}
	if bp != nil {
		notify(bp, snap)
	}
	return snap.ID
}

func notify(fn func(*types.Snapshot), snap *types.Snapshot) {
	defer func() { _ = recover() }()
	fn(snap)
}

// trimLocked drops the oldest snapshots once the timeline exceeds
// maxSnapshots. Bookmarks pointing at dropped ids are left dangling
// (GotoBookmark reports an error for them) rather than silently
// re-targeted, since spec.md gives bookmarks no such fallback.
func (m *Manager) trimLocked() {
	if m.maxSnapshots <= 0 || len(m.snapshots) <= m.maxSnapshots {
		return
	}
	drop := len(m.snapshots) - m.maxSnapshots
	m.snapshots = m.snapshots[drop:]
	m.cursor -= drop
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Get returns the snapshot with the given id.
func (m *Manager) Get(id string) (*types.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.snapshots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("state: no snapshot with id %q", id)
}

// GetAt returns the snapshot at the given timeline index.
func (m *Manager) GetAt(index int) (*types.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.snapshots) {
		return nil, fmt.Errorf("state: index %d out of range [0,%d)", index, len(m.snapshots))
	}
	return m.snapshots[index], nil
}

// ListFilter narrows List's results. A zero-value filter matches every
// snapshot. Limit <= 0 means unbounded.
type ListFilter struct {
	Kind     types.SnapshotKind
	Function string
	Limit    int
	Offset   int
}

// List returns snapshots matching filter, in capture order.
func (m *Manager) List(filter ListFilter) []*types.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*types.Snapshot
	for _, s := range m.snapshots {
		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		if filter.Function != "" && s.FunctionName != filter.Function {
			continue
		}
		matched = append(matched, s)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched
}

// Cursor returns the current timeline position (an index into the
// snapshot list, or -1 when the timeline is empty).
func (m *Manager) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Count returns the number of snapshots currently held.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}

// Goto moves the cursor to the snapshot identified by id and returns a
// deep copy of its data as the new "current state". Navigation never
// mutates the stored snapshot.
func (m *Manager) Goto(id string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.snapshots {
		if s.ID == id {
			m.cursor = i
			return deepCopy(s.Data), nil
		}
	}
	return nil, fmt.Errorf("state: no snapshot with id %q", id)
}

// GotoDelta moves the cursor by delta positions (negative moves back)
// and returns a deep copy of the resulting snapshot's data.
func (m *Manager) GotoDelta(delta int) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := m.cursor + delta
	if target < 0 || target >= len(m.snapshots) {
		return nil, fmt.Errorf("state: delta %d from cursor %d out of range", delta, m.cursor)
	}
	m.cursor = target
	return deepCopy(m.snapshots[target].Data), nil
}

// Diff compares two snapshots' data at the top level, per spec.md
// §4.H: mapping data yields added/removed/changed; any other shape
// yields a before/after pair.
func (m *Manager) Diff(idA, idB string) (types.SnapshotDiff, error) {
	a, err := m.Get(idA)
	if err != nil {
		return types.SnapshotDiff{}, err
	}
	b, err := m.Get(idB)
	if err != nil {
		return types.SnapshotDiff{}, err
	}
	return diffData(a.Data, b.Data), nil
}

func diffData(before, after any) types.SnapshotDiff {
	bm, bok := before.(map[string]any)
	am, aok := after.(map[string]any)
	if !bok || !aok {
		return types.SnapshotDiff{Before: before, After: after}
	}

	diff := types.SnapshotDiff{
		Added:   map[string]any{},
		Removed: map[string]any{},
		Changed: map[string][2]any{},
	}
	for k, av := range am {
		bv, existed := bm[k]
		if !existed {
			diff.Added[k] = av
			continue
		}
		if !jsonEqual(bv, av) {
			diff.Changed[k] = [2]any{bv, av}
		}
	}
	for k, bv := range bm {
		if _, stillThere := am[k]; !stillThere {
			diff.Removed[k] = bv
		}
	}
	return diff
}

// Bookmark names an existing snapshot id for later retrieval via
// GotoBookmark.
func (m *Manager) Bookmark(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.snapshots {
		if s.ID == id {
			m.bookmarks[name] = id
			return nil
		}
	}
	return fmt.Errorf("state: no snapshot with id %q to bookmark", id)
}

// Bookmarks returns a copy of the current name -> snapshot id map.
func (m *Manager) Bookmarks() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.bookmarks))
	for k, v := range m.bookmarks {
		out[k] = v
	}
	return out
}

// GotoBookmark moves the cursor to the snapshot a named bookmark points
// at.
func (m *Manager) GotoBookmark(name string) (any, error) {
	m.mu.Lock()
	id, ok := m.bookmarks[name]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("state: no bookmark named %q", name)
	}
	return m.Goto(id)
}

// exportedTimeline is the JSON wire shape Export/Import use.
type exportedTimeline struct {
	Version   int               `json:"version"`
	Cursor    int               `json:"cursor"`
	Snapshots []*types.Snapshot `json:"snapshots"`
	Bookmarks map[string]string `json:"bookmarks"`
	NextSeq   int64             `json:"next_seq"`
}

// Export serializes the full timeline (version, cursor, snapshots and
// bookmarks) as JSON. Every Snapshot field already carries json tags, so JSON is the
// natural wire form here rather than introducing a second encoding.
func (m *Manager) Export() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Marshal(exportedTimeline{
		Version:   1,
		Cursor:    m.cursor,
		Snapshots: m.snapshots,
		Bookmarks: m.bookmarks,
		NextSeq:   m.nextSeq,
	})
}

// Import replaces the current timeline with one decoded from data,
// resetting the cursor to the last snapshot, per spec.md §4.H.
func (m *Manager) Import(data []byte) error {
	var imported exportedTimeline
	if err := json.Unmarshal(data, &imported); err != nil {
		return fmt.Errorf("state: import: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = imported.Snapshots
	if imported.Bookmarks != nil {
		m.bookmarks = imported.Bookmarks
	} else {
		m.bookmarks = make(map[string]string)
	}
	m.nextSeq = imported.NextSeq
	m.cursor = len(m.snapshots) - 1
	return nil
}
