// Package reader provides the read-side data access layer for the mystic
// CLI. It isolates `list`/`inspect`/`stats` from the core subsystems
// (hijack, metrics, state, logx) the way the teacher's cli/reader isolates
// read-only commands from runtime internals, via a swappable Reader
// interface defaulting to DemoReader.
package reader

import "time"

// FunctionSummary is one entry in a discover/list response.
type FunctionSummary struct {
	FullName string `json:"full_name"`
	Module   string `json:"module"`
	Name     string `json:"name"`
}

// FunctionDetail is the response for inspecting a single function.
type FunctionDetail struct {
	FullName     string   `json:"full_name"`
	Signature    string   `json:"signature"`
	Doc          string   `json:"doc"`
	Dependencies []string `json:"dependencies"`
	Hijacked     bool     `json:"hijacked"`
	CallCount    int64    `json:"call_count"`
}

// HijackedItem is one entry in the list_hijacked response.
type HijackedItem struct {
	FullName   string   `json:"full_name"`
	Strategies []string `json:"strategies"`
	CallCount  int64    `json:"call_count"`
}

// MetricsSnapshot aggregates Performance Tracker entries across every
// tracked identity.
type MetricsSnapshot struct {
	FunctionCount int                 `json:"function_count"`
	Entries       []MetricsEntryView  `json:"entries"`
}

// MetricsEntryView is one tracked function's rolling statistics.
type MetricsEntryView struct {
	FullName    string    `json:"full_name"`
	CallCount   int64     `json:"call_count"`
	TotalTimeS  float64   `json:"total_time_s"`
	MinTimeS    float64   `json:"min_time_s"`
	MaxTimeS    float64   `json:"max_time_s"`
	MeanTimeS   float64   `json:"mean_time_s"`
	LastCallTs  time.Time `json:"last_call_ts"`
}

// StateStats summarizes the State Manager's timeline.
type StateStats struct {
	Count     int            `json:"count"`
	Cursor    int            `json:"cursor"`
	Bookmarks map[string]string `json:"bookmarks"`
}

// LogStats summarizes the Call Logger's ring buffer.
type LogStats struct {
	RecentCount int `json:"recent_count"`
	CallCount   int `json:"call_count"`
	ReturnCount int `json:"return_count"`
	ErrorCount  int `json:"error_count"`
}
