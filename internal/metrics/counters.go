// Package metrics provides the atomic counters, gauges and latency
// histogram used by the MetricsHandler stage.
//
// This is implemented on the standard library rather than wrapping
// github.com/prometheus/client_golang (present in the example pack): the
// histogram here is read synchronously and in-process (percentile
// queries, not scrape exports),
// and a label-vector-based client adds allocation and lookup overhead that
// the ring's zero-allocation steady state is built to avoid. See
// DESIGN.md for the full justification.
package metrics

import "sync/atomic"

// Counter is a simple atomic monotonic counter.
type Counter struct {
	v atomic.Int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.v.Add(1) }

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) { c.v.Add(delta) }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.v.Load() }

// Reset zeroes the counter and returns its prior value.
func (c *Counter) Reset() int64 { return c.v.Swap(0) }

// Gauge is an atomic value that can move in either direction.
type Gauge struct {
	v atomic.Int64
}

// Set stores v.
func (g *Gauge) Set(v int64) { g.v.Store(v) }

// Value returns the current value.
func (g *Gauge) Value() int64 { return g.v.Load() }
