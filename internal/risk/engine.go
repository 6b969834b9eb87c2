package risk

import (
	"sort"
	"sync"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog"
)

// Decision is the outcome of a pre-trade Check.
type Decision struct {
	Approved   bool
	Rejection  *Rejection
	BreakerHit bool // true if the order never reached the rule pipeline
}

// Listener is notified of every Check outcome, approved or not.
type Listener interface {
	OnDecision(order *domain.Order, decision Decision)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(order *domain.Order, decision Decision)

func (f ListenerFunc) OnDecision(order *domain.Order, decision Decision) { f(order, decision) }

// Engine runs the ordered rule pipeline behind a circuit breaker (§4.4).
// It owns its own daily counters; ResetDailyCounters must be called by the
// caller on a session boundary since the engine has no calendar awareness.
type Engine struct {
	mu sync.Mutex

	limits  Limits
	rules   []Rule
	breaker *CircuitBreaker
	pos     PositionView
	log     zerolog.Logger

	listeners []Listener

	ordersToday   int64
	notionalToday int64
}

// NewEngine builds an Engine from the given limits, position view, and
// rule set sorted by ascending priority. Pass risk.DefaultRules() for the
// standard eight.
func NewEngine(limits Limits, pos PositionView, rules []Rule, log zerolog.Logger) *Engine {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })

	return &Engine{
		limits:  limits,
		rules:   sorted,
		breaker: NewCircuitBreaker(limits.CircuitBreakerThreshold, limits.CircuitBreakerCooldownMs),
		pos:     pos,
		log:     log.With().Str("component", "risk").Logger(),
	}
}

// AddListener registers a decision listener.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Check runs the full pipeline for order: the circuit breaker gate first,
// then every rule in priority order, stopping at the first rejection.
func (e *Engine) Check(order *domain.Order, nowMs int64) Decision {
	e.mu.Lock()

	if !e.breaker.Allow(nowMs) {
		decision := Decision{Approved: false, BreakerHit: true, Rejection: &Rejection{
			RuleName: "CircuitBreaker",
			Reason:   "breaker is OPEN",
		}}
		e.mu.Unlock()
		e.notify(order, decision)
		return decision
	}

	ctx := &RuleContext{
		Order:              order,
		Limits:             e.limits,
		OrdersToday:        e.ordersToday,
		NotionalToday:      e.notionalToday,
		TotalPnL:           e.pos.TotalPnL(),
		CurrentPositionQty: e.pos.PositionQty(order.Symbol),
		CurrentNetExposure: e.pos.NetExposure(),
		CurrentGross:       e.pos.GrossExposure(),
	}

	var rejection *Rejection
	for _, rule := range e.rules {
		if r := rule.Check(ctx); r != nil {
			rejection = r
			break
		}
	}

	if rejection != nil {
		e.breaker.RecordFailure(nowMs)
		e.mu.Unlock()
		decision := Decision{Approved: false, Rejection: rejection}
		e.notify(order, decision)
		return decision
	}

	e.breaker.RecordSuccess()
	e.ordersToday++
	e.mu.Unlock()

	decision := Decision{Approved: true}
	e.notify(order, decision)
	return decision
}

func (e *Engine) notify(order *domain.Order, decision Decision) {
	e.mu.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l.OnDecision(order, decision)
	}
}

// Disable forces the circuit breaker permanently OPEN, bypassing the
// normal cooldown path. Used when an upstream invariant violation (e.g. a
// corrupted ring slot) means no further orders should reach the market
// until a human intervenes.
func (e *Engine) Disable(reason string, nowMs int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Error().Str("reason", reason).Msg("risk engine disabled: circuit breaker forced open")
	e.breaker.Trip(nowMs)
}

// BreakerState reports the circuit breaker's last-evaluated state.
func (e *Engine) BreakerState() BreakerState {
	return e.breaker.State()
}

// ResetBreaker clears the circuit breaker back to CLOSED, including any
// latch installed by Disable. This is the only way to recover from a forced
// trip; it is distinct from ResetDailyCounters, which only zeroes the
// order/notional counters.
func (e *Engine) ResetBreaker() {
	e.breaker.Reset()
}

// RecordFill increments notionalToday by the traded notional of a single
// fill (§4.4: "on every recorded fill it increments notionalTradedToday by
// fillQty * fillPrice"). Approval no longer touches this counter; only
// actual fills do, so MaxDailyNotional checks traded notional, not
// submitted notional.
func (e *Engine) RecordFill(fillQty, fillPrice int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notionalToday += domain.Notional(fillQty, fillPrice)
}

// ResetDailyCounters zeroes the order-count and notional counters, called
// by the caller at a session/day boundary.
func (e *Engine) ResetDailyCounters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ordersToday = 0
	e.notionalToday = 0
}
