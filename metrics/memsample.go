package metrics

import "runtime"

// HeapSample returns the current process heap allocation in bytes, used
// as the before/after pair for a call's memory_delta sample. Reading
// /proc/self/status for true RSS is Linux-only and adds syscall latency
// on every call; runtime.ReadMemStats's HeapAlloc is the stdlib-only
// signal spec.md §4.D settles for when memory sampling is enabled.
//
// Failures are not possible with ReadMemStats, but the func signature
// mirrors a fallible probe so callers treat a future alternate
// implementation (cgo RSS probe, /proc read) the same way: a bool ok that
// is false means "record memory_delta = nil", never a panic.
func HeapSample() (bytes int64, ok bool) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return int64(stats.HeapAlloc), true
}

// MemoryDelta samples before/after heap usage and reports the delta as
// the *int64 shape Tracker.Track expects, or nil if sampling failed.
func MemoryDelta(before int64) *int64 {
	after, ok := HeapSample()
	if !ok {
		return nil
	}
	delta := after - before
	return &delta
}
