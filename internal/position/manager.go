// Package position applies trades to per-symbol positions and produces
// the snapshots external readers and the risk engine consume. Positions
// are exclusively owned by the Manager; everything else sees only
// immutable Snapshot/PortfolioSnapshot copies (§3, "lifecycle ownership").
package position

import (
	"sync"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog"
)

// Manager tracks one domain.Position per symbol, written only from the
// PositionHandler consumer stage (§5's shared-resource policy).
type Manager struct {
	mu        sync.RWMutex
	positions map[domain.Symbol]*domain.Position
	log       zerolog.Logger
}

// New builds an empty Manager.
func New(log zerolog.Logger) *Manager {
	return &Manager{
		positions: make(map[domain.Symbol]*domain.Position),
		log:       log.With().Str("component", "position").Logger(),
	}
}

func (m *Manager) getOrCreate(sym domain.Symbol, priceScale int64) *domain.Position {
	p, ok := m.positions[sym]
	if !ok {
		p = &domain.Position{Symbol: sym, PriceScale: priceScale}
		m.positions[sym] = p
	}
	return p
}

// ApplyFill folds an execution into the symbol's position, maintaining
// §3's invariants (i)-(v) via domain.Position.ApplyFill.
func (m *Manager) ApplyFill(sym domain.Symbol, side domain.Side, qty, price, priceScale int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.getOrCreate(sym, priceScale)
	p.ApplyFill(side, qty, price)
}

// MarkToMarket updates a symbol's current price and recomputes unrealized
// P&L and drawdown. Triggered by QUOTE_UPDATE (mid price) or TRADE_UPDATE
// (last trade price) events for the symbol.
func (m *Manager) MarkToMarket(sym domain.Symbol, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[sym]
	if !ok {
		return // no position in this symbol: nothing to mark
	}
	p.MarkToMarket(price)
}

// Snapshot returns an immutable copy of the current position in sym.
func (m *Manager) Snapshot(sym domain.Symbol, asOf int64) (domain.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.positions[sym]
	if !ok {
		return domain.Snapshot{}, false
	}
	return p.ToSnapshot(asOf), true
}

// Portfolio aggregates every tracked symbol into a single snapshot: total
// and active position counts, cumulative realized/unrealized P&L, and
// gross/net exposure across the book.
func (m *Manager) Portfolio(asOf int64) domain.PortfolioSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := domain.PortfolioSnapshot{
		TotalPositions: len(m.positions),
		Positions:      make([]domain.Snapshot, 0, len(m.positions)),
	}
	for _, p := range m.positions {
		snap := p.ToSnapshot(asOf)
		out.Positions = append(out.Positions, snap)
		out.RealizedPnL += snap.RealizedPnL
		out.UnrealizedPnL += snap.UnrealizedPnL
		out.GrossExposure += p.GrossExposure()
		out.NetExposure += p.NetExposure()
		if !p.IsFlat() {
			out.ActivePositions++
		}
	}
	return out
}

// PositionQty implements risk.PositionView: the current signed quantity
// held in sym, or 0 if no position has been opened yet.
func (m *Manager) PositionQty(sym domain.Symbol) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.positions[sym]; ok {
		return p.Quantity
	}
	return 0
}

// NetExposure implements risk.PositionView: Σ signed qty*mark across the
// book.
func (m *Manager) NetExposure() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, p := range m.positions {
		total += p.NetExposure()
	}
	return total
}

// GrossExposure implements risk.PositionView: Σ |qty*mark| across the
// book.
func (m *Manager) GrossExposure() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, p := range m.positions {
		total += p.GrossExposure()
	}
	return total
}

// TotalPnL is realized + unrealized P&L across the whole book, the value
// risk.MaxDailyLoss checks against.
func (m *Manager) TotalPnL() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, p := range m.positions {
		total += p.RealizedPnL + p.UnrealizedPnL
	}
	return total
}
