package risk

import (
	"testing"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog"
)

type stubPositionView struct {
	qty      int64
	net      int64
	gross    int64
	totalPnL int64
}

func (s stubPositionView) PositionQty(domain.Symbol) int64 { return s.qty }
func (s stubPositionView) NetExposure() int64              { return s.net }
func (s stubPositionView) GrossExposure() int64            { return s.gross }
func (s stubPositionView) TotalPnL() int64                  { return s.totalPnL }

func testOrder(qty, price int64) *domain.Order {
	o := &domain.Order{}
	o.Reset()
	o.Symbol = domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	o.Side = domain.SideBuy
	o.Quantity = qty
	o.LimitPrice = price
	return o
}

func TestEngineApprovesWithinLimits(t *testing.T) {
	limits := DefaultLimits()
	eng := NewEngine(limits, stubPositionView{}, DefaultRules(), zerolog.Nop())

	d := eng.Check(testOrder(100, 15000), 1000)
	if !d.Approved {
		t.Fatalf("expected approval, got rejection %+v", d.Rejection)
	}
}

func TestEngineRejectsOversizedOrder(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxOrderSize = 50
	eng := NewEngine(limits, stubPositionView{}, DefaultRules(), zerolog.Nop())

	d := eng.Check(testOrder(100, 15000), 1000)
	if d.Approved {
		t.Fatal("expected rejection for order exceeding MaxOrderSize")
	}
	if d.Rejection.RuleName != "MaxOrderSize" {
		t.Fatalf("rule name = %s, want MaxOrderSize", d.Rejection.RuleName)
	}
}

func TestEngineRulePriorityOrderStopsAtFirstFailure(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxDailyLoss = 100
	limits.MaxOrderSize = 50
	eng := NewEngine(limits, stubPositionView{totalPnL: -1000}, DefaultRules(), zerolog.Nop())

	// Both MaxDailyLoss (priority 1) and MaxOrderSize (priority 10) would
	// fail; the rule with the lower priority value runs first and must be
	// the one reported.
	d := eng.Check(testOrder(100, 15000), 1000)
	if d.Approved {
		t.Fatal("expected rejection")
	}
	if d.Rejection.RuleName != "MaxDailyLoss" {
		t.Fatalf("rule name = %s, want MaxDailyLoss (higher priority)", d.Rejection.RuleName)
	}
}

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxOrderSize = 1
	limits.CircuitBreakerThreshold = 3
	limits.CircuitBreakerCooldownMs = 1000
	eng := NewEngine(limits, stubPositionView{}, DefaultRules(), zerolog.Nop())

	var lastDecision Decision
	for i := 0; i < 3; i++ {
		lastDecision = eng.Check(testOrder(100, 15000), int64(i))
		if lastDecision.BreakerHit {
			t.Fatalf("breaker should not trip before threshold failures, iteration %d", i)
		}
	}
	if eng.BreakerState() != BreakerOpen {
		t.Fatalf("breaker state = %s, want OPEN after %d consecutive failures", eng.BreakerState(), limits.CircuitBreakerThreshold)
	}

	d := eng.Check(testOrder(1, 15000), 500) // would otherwise pass every rule
	if !d.BreakerHit || d.Approved {
		t.Fatal("expected breaker to reject even a compliant order while OPEN")
	}
}

func TestCircuitBreakerHalfOpenClosesOnSuccess(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxOrderSize = 1
	limits.CircuitBreakerThreshold = 2
	limits.CircuitBreakerCooldownMs = 1000
	eng := NewEngine(limits, stubPositionView{}, DefaultRules(), zerolog.Nop())

	eng.Check(testOrder(100, 15000), 0)
	eng.Check(testOrder(100, 15000), 1)
	if eng.BreakerState() != BreakerOpen {
		t.Fatal("expected breaker OPEN after threshold failures")
	}

	// Still within cooldown: must stay OPEN.
	d := eng.Check(testOrder(1, 15000), 500)
	if !d.BreakerHit {
		t.Fatal("expected breaker still OPEN within cooldown window")
	}

	// Past cooldown: lazily moves to HALF_OPEN, and a compliant order
	// closes it again.
	d = eng.Check(testOrder(1, 15000), 1001)
	if d.BreakerHit || !d.Approved {
		t.Fatalf("expected order to pass in HALF_OPEN state, got %+v", d)
	}
	if eng.BreakerState() != BreakerClosed {
		t.Fatalf("breaker state = %s, want CLOSED after a HALF_OPEN success", eng.BreakerState())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxOrderSize = 1
	limits.CircuitBreakerThreshold = 2
	limits.CircuitBreakerCooldownMs = 1000
	eng := NewEngine(limits, stubPositionView{}, DefaultRules(), zerolog.Nop())

	eng.Check(testOrder(100, 15000), 0)
	eng.Check(testOrder(100, 15000), 1)

	// Past cooldown, HALF_OPEN, but this order still violates MaxOrderSize.
	d := eng.Check(testOrder(100, 15000), 1001)
	if d.Approved {
		t.Fatal("expected rejection in HALF_OPEN probe")
	}
	if eng.BreakerState() != BreakerOpen {
		t.Fatalf("breaker state = %s, want OPEN again after HALF_OPEN failure", eng.BreakerState())
	}
}

func TestEngineDisableForcesBreakerOpen(t *testing.T) {
	eng := NewEngine(DefaultLimits(), stubPositionView{}, DefaultRules(), zerolog.Nop())
	eng.Disable("corrupted ring slot detected", 100)

	d := eng.Check(testOrder(10, 15000), 100)
	if !d.BreakerHit || d.Approved {
		t.Fatal("expected every order rejected immediately after Disable")
	}
	if eng.BreakerState() != BreakerOpen {
		t.Fatalf("breaker state = %s, want OPEN immediately after Disable", eng.BreakerState())
	}

	// A forced trip latches: it must never auto-advance to HALF_OPEN, no
	// matter how much cooldown time elapses, until an explicit Reset.
	farFuture := int64(100) + DefaultLimits().CircuitBreakerCooldownMs*100
	d = eng.Check(testOrder(10, 15000), farFuture)
	if !d.BreakerHit || d.Approved {
		t.Fatal("expected a forced trip to still reject well past the cooldown window")
	}
	if eng.BreakerState() != BreakerOpen {
		t.Fatalf("breaker state = %s, want OPEN (latched) past the cooldown window", eng.BreakerState())
	}

	eng.ResetBreaker()
	d = eng.Check(testOrder(10, 15000), farFuture)
	if d.BreakerHit {
		t.Fatal("expected Reset to clear the latch and let the breaker evaluate again")
	}
}

func TestNotionalTodayTracksFillsNotApprovals(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxDailyNotional = 2_000_00 // 2000.00
	eng := NewEngine(limits, stubPositionView{}, DefaultRules(), zerolog.Nop())

	// Approving an order must not itself move notionalToday: only a
	// recorded fill does (§4.4).
	d := eng.Check(testOrder(10, 100_00), 0) // notional 1000.00, well within the limit
	if !d.Approved {
		t.Fatalf("expected approval, got rejection %+v", d.Rejection)
	}

	d = eng.Check(testOrder(10, 100_00), 1)
	if !d.Approved {
		t.Fatalf("approving a second order must not be blocked by unrecorded notional, got %+v", d.Rejection)
	}

	// Now record a fill large enough that a further approval checking
	// notionalToday + this order's notional would breach the limit.
	eng.RecordFill(10, 100_00) // +1000.00 traded

	d = eng.Check(testOrder(10, 100_00), 2) // would bring total to 2000.00, at the edge
	if !d.Approved {
		t.Fatalf("expected approval exactly at the limit, got %+v", d.Rejection)
	}

	eng.RecordFill(10, 100_00) // +1000.00 traded, total 2000.00 traded

	d = eng.Check(testOrder(1, 1), 3) // any further notional now breaches
	if d.Approved {
		t.Fatal("expected MaxDailyNotional rejection once recorded fills reach the limit")
	}
	if d.Rejection.RuleName != "MaxDailyNotional" {
		t.Fatalf("rule name = %s, want MaxDailyNotional", d.Rejection.RuleName)
	}
}

func TestMaxPositionSizeRejectsProjectedBreach(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxPositionSize = 150
	eng := NewEngine(limits, stubPositionView{qty: 100}, DefaultRules(), zerolog.Nop())

	d := eng.Check(testOrder(100, 15000), 0) // projects to 200, over 150
	if d.Approved {
		t.Fatal("expected rejection for projected position breach")
	}
	if d.Rejection.RuleName != "MaxPositionSize" {
		t.Fatalf("rule name = %s, want MaxPositionSize", d.Rejection.RuleName)
	}
}
