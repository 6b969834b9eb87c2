package ring

import (
	"runtime"
	"time"
)

// WaitStrategy is consulted once per spin iteration by a consumer stage
// waiting for the next sequence to become available, and by a producer
// waiting for a slot on a full ring. Implementa-
// tions trade CPU for latency: BusySpin never yields and gives the lowest
// latency at the cost of a pinned core; Yield and Park progressively trade
// latency for lower CPU usage.
type WaitStrategy interface {
	Idle(iteration int)
}

// BusySpin never yields the CPU. This is the default per §4.1: lowest
// latency, CPU-bound.
type BusySpin struct{}

func (BusySpin) Idle(int) {}

// Yield calls runtime.Gosched() every iteration, letting the Go scheduler
// run other goroutines between spins.
type Yield struct{}

func (Yield) Idle(int) { runtime.Gosched() }

// Park sleeps for a short, slowly-growing backoff. There is no suitable
// OS-level futex/park primitive in the example pack's dependency set, so
// this uses time.Sleep the way the examples themselves fall back to when
// not busy-spinning — the idiomatic Go substitute, not a performance
// equivalent of a true futex park.
type Park struct {
	base time.Duration
	max  time.Duration
}

// NewPark builds a Park strategy with the given base backoff and ceiling.
func NewPark(base, max time.Duration) Park {
	if base <= 0 {
		base = time.Microsecond
	}
	if max <= 0 {
		max = time.Millisecond
	}
	return Park{base: base, max: max}
}

func (p Park) Idle(iteration int) {
	d := p.base * time.Duration(1<<uint(min(iteration, 10)))
	if d > p.max {
		d = p.max
	}
	time.Sleep(d)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// WaitStrategyKind names a configurable wait strategy (§6 configuration
// surface: waitStrategy ∈ {busy_spin, yield, park}).
type WaitStrategyKind string

const (
	WaitBusySpin WaitStrategyKind = "busy_spin"
	WaitYield    WaitStrategyKind = "yield"
	WaitPark     WaitStrategyKind = "park"
)

// NewWaitStrategy builds the WaitStrategy named by kind, defaulting to
// BusySpin for an empty or unrecognized kind.
func NewWaitStrategy(kind WaitStrategyKind) WaitStrategy {
	switch kind {
	case WaitYield:
		return Yield{}
	case WaitPark:
		return NewPark(time.Microsecond, time.Millisecond)
	default:
		return BusySpin{}
	}
}
