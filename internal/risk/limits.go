// Package risk implements the composable pre-trade risk engine: an
// ordered rule pipeline plus a circuit breaker, run synchronously before a
// NEW_ORDER event reaches the ring (§4.4). Adapted from the teacher's
// single hard-coded Checker.Check sequence (example pack,
// rishavpaul-system-design/order-matching-engine/internal/risk) into a
// registry of independent, priority-ordered Rule values so callers can add
// rules beyond the standard eight without touching the engine.
package risk

import "github.com/lukmusial/tradecore/internal/domain"

// Limits holds the configuration values the standard rules check against
// (§6's "Risk limits" configuration surface).
type Limits struct {
	MaxOrderSize                int64
	MaxOrderNotional             int64
	MaxPositionSize               int64
	MaxOrdersPerDay              int64
	MaxDailyNotional             int64
	MaxDailyLoss                 int64
	MaxDrawdownPerPosition       int64
	MaxUnrealizedLossPerPosition int64
	MaxNetExposure               int64
	MaxGrossExposure             int64
	CircuitBreakerThreshold      int
	CircuitBreakerCooldownMs     int64
}

// DefaultLimits returns permissive-but-sane defaults, matching the style
// of the teacher's risk.DefaultConfig.
func DefaultLimits() Limits {
	return Limits{
		MaxOrderSize:             100_000,
		MaxOrderNotional:         10_000_000_00,
		MaxPositionSize:          1_000_000,
		MaxOrdersPerDay:          10_000,
		MaxDailyNotional:         1_000_000_000_00,
		MaxDailyLoss:             100_000_00,
		MaxNetExposure:           5_000_000_00,
		MaxGrossExposure:         10_000_000_00,
		CircuitBreakerThreshold:  10,
		CircuitBreakerCooldownMs: 60_000,
	}
}

// PositionView is the read-only slice of the position book the risk
// engine needs. position.Manager implements it; the interface lives here
// (not in position) so risk never imports position and position never
// imports risk.
type PositionView interface {
	PositionQty(sym domain.Symbol) int64
	NetExposure() int64
	GrossExposure() int64
	TotalPnL() int64
}
