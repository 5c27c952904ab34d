package types

import "time"

// MetricsEntry is the per-identity rolling statistics snapshot produced by
// the Performance Tracker (4.D). RunningMean/RunningM2 are Welford's
// online-algorithm accumulators; variance = RunningM2 / CallCount.
type MetricsEntry struct {
	CallCount   int64         `json:"call_count"`
	TotalTime   time.Duration `json:"total_time"`
	MinTime     time.Duration `json:"min_time"`
	MaxTime     time.Duration `json:"max_time"`
	RunningMean float64       `json:"running_mean_seconds"`
	RunningM2   float64       `json:"running_m2"`
	LastCallTs  time.Time     `json:"last_call_ts"`
	MemoryDeltaSamples int64  `json:"memory_delta_samples,omitempty"`
	MemoryDeltaTotal   int64  `json:"memory_delta_total,omitempty"`
}

// Variance reports the population variance of observed call durations, in
// seconds^2. Returns 0 when fewer than 2 calls have been recorded.
func (m MetricsEntry) Variance() float64 {
	if m.CallCount < 2 {
		return 0
	}
	return m.RunningM2 / float64(m.CallCount)
}
