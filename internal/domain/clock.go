package domain

import "time"

// MonotonicNow returns the current monotonic-ns clock reading, used only
// for latency measurement (order creation/submit/accept/first-fill
// timestamps, histogram buckets). It must never be serialized across the
// API boundary or compared against an epoch-ns value.
func MonotonicNow() int64 {
	return monotonicNanos()
}

// EpochNow returns the current epoch-ns clock reading, used for anything
// that crosses the API boundary: exchange timestamps, audit events, quote
// receipt times, trade execution times.
func EpochNow() int64 {
	return time.Now().UnixNano()
}

var processStart = time.Now()

// monotonicNanos derives a monotonic nanosecond count from time.Since,
// which on all Go runtimes uses the monotonic reading embedded in
// time.Time rather than the wall clock.
func monotonicNanos() int64 {
	return int64(time.Since(processStart))
}
