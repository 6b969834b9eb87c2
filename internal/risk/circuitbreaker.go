package risk

import "sync"

// BreakerState is the circuit breaker's state machine (§4.4).
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker trips to OPEN after a run of consecutive rule failures and
// rejects every order while open. There is no background timer: the
// OPEN -> HALF_OPEN transition is evaluated lazily, the first time Allow is
// called after the cooldown has elapsed.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold  int
	cooldownMs int64

	state           BreakerState
	consecutiveFail int
	openedAtMs      int64
	latched         bool
}

// NewCircuitBreaker builds a breaker starting CLOSED.
func NewCircuitBreaker(threshold int, cooldownMs int64) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:  threshold,
		cooldownMs: cooldownMs,
		state:      BreakerClosed,
	}
}

// Allow reports whether an order may proceed to the rule pipeline, lazily
// advancing OPEN -> HALF_OPEN once the cooldown window has passed. A latched
// breaker (forced open via Trip) never advances: it stays OPEN regardless of
// elapsed time until an explicit Reset.
func (b *CircuitBreaker) Allow(nowMs int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.latched {
		return false
	}
	if b.state == BreakerOpen && nowMs-b.openedAtMs >= b.cooldownMs {
		b.state = BreakerHalfOpen
	}
	return b.state != BreakerOpen
}

// RecordSuccess resets the breaker to CLOSED. A single success while
// HALF_OPEN is enough to fully close it (§4.4). No-op while latched.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latched {
		return
	}
	b.consecutiveFail = 0
	b.state = BreakerClosed
}

// RecordFailure counts a rejected or errored check. From CLOSED it trips to
// OPEN after `threshold` consecutive failures; from HALF_OPEN a single
// failure re-opens the breaker and restarts the cooldown clock. No-op while
// latched.
func (b *CircuitBreaker) RecordFailure(nowMs int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.latched {
		return
	}
	if b.state == BreakerHalfOpen {
		b.state = BreakerOpen
		b.openedAtMs = nowMs
		return
	}

	b.consecutiveFail++
	if b.consecutiveFail >= b.threshold {
		b.state = BreakerOpen
		b.openedAtMs = nowMs
	}
}

// State returns the breaker's current state without evaluating the lazy
// transition (for metrics/inspection only; Allow is the authoritative
// check).
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Trip forces the breaker OPEN regardless of the failure count, used by
// Engine.Disable for a hard invariant violation. It latches the breaker:
// Allow never advances it toward HALF_OPEN on its own, no matter how much
// time passes. Only Reset can recover from a forced trip.
func (b *CircuitBreaker) Trip(nowMs int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerOpen
	b.openedAtMs = nowMs
	b.consecutiveFail = b.threshold
	b.latched = true
}

// Reset forces the breaker back to CLOSED, clearing the failure count and
// any latch installed by Trip.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.consecutiveFail = 0
	b.latched = false
}
