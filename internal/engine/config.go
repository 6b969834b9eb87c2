package engine

import (
	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/lukmusial/tradecore/internal/persistence"
	"github.com/lukmusial/tradecore/internal/ports"
	"github.com/lukmusial/tradecore/internal/risk"
	"github.com/lukmusial/tradecore/internal/ring"
)

// Config is the whole of the engine's accepted configuration surface
// (§6): ring sizing/wait strategy, risk limits, and the port/persistence
// implementations to wire in. There is no file/env loader here — that is
// out of scope; a caller populates Config directly.
type Config struct {
	RingCapacity int
	WaitStrategy ring.WaitStrategyKind

	RiskLimits risk.Limits

	OrderPorts map[domain.Venue]ports.OrderPort
	MarketData ports.MarketDataPort

	Journal       persistence.TradeJournal
	AuditLog      persistence.AuditLog
	OrderRepo     persistence.OrderRepository
	SnapshotStore persistence.PositionSnapshotStore
}

// DefaultConfig returns a Config with the ring/risk defaults named in §6,
// and no ports or persistence wired (the caller supplies those).
func DefaultConfig() Config {
	return Config{
		RingCapacity: ring.DefaultCapacity,
		WaitStrategy: ring.WaitBusySpin,
		RiskLimits:   risk.DefaultLimits(),
		OrderPorts:   make(map[domain.Venue]ports.OrderPort),
	}
}
