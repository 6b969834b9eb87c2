package metrics

import "testing"

func TestHistogramPercentilesMonotonic(t *testing.T) {
	h := DefaultLatencyHistogram()
	for _, v := range []int64{500, 1_500, 3_000, 7_000, 50_000, 100_000} {
		h.Observe(v)
	}

	p50 := h.Percentile(50)
	p99 := h.Percentile(99)
	if p50 > p99 {
		t.Fatalf("p50 (%d) > p99 (%d)", p50, p99)
	}

	snap := h.Snapshot()
	if snap.Count != 6 {
		t.Fatalf("count = %d, want 6", snap.Count)
	}
}

func TestCounterAddAndReset(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Fatalf("value = %d, want 5", c.Value())
	}
	prior := c.Reset()
	if prior != 5 || c.Value() != 0 {
		t.Fatalf("reset returned %d, now %d", prior, c.Value())
	}
}
