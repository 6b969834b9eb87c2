package domain

// Position is a per-symbol aggregate: signed quantity, running average
// entry price, cumulative realized P&L, last mark price, running
// unrealized P&L, and the worst (most negative) excursion of realized plus
// unrealized P&L seen so far.
//
// Invariants (enforced by the methods below, never by a caller mutating
// fields directly):
//
//	(i)   IsFlat() <=> Quantity == 0
//	(ii)  AvgEntryPrice == 0 when flat
//	(iii) same-direction add: newAvg = (oldQty*oldAvg + fillQty*fillPrice) / (oldQty+fillQty)
//	(iv)  reducing: avg entry preserved; realized P&L += (fillPrice-avgEntry) * min(|oldQty|,fillQty) * signOf(oldQty)
//	(v)   sign-reversing fill: the reducing portion realizes against the old
//	      average, the remainder opens a new position at fillPrice
type Position struct {
	Symbol        Symbol
	Quantity      int64
	AvgEntryPrice int64
	RealizedPnL   int64
	LastMarkPrice int64
	UnrealizedPnL int64
	MaxDrawdown   int64
	PriceScale    int64
}

// IsFlat reports whether the position currently holds zero quantity.
func (p *Position) IsFlat() bool {
	return p.Quantity == 0
}

// ApplyFill folds one execution into the position, maintaining invariants
// (iii)-(v). fillQty is always positive; side indicates direction.
func (p *Position) ApplyFill(side Side, fillQty, fillPrice int64) {
	signedFill := fillQty
	if side == SideSell {
		signedFill = -fillQty
	}

	switch {
	case p.Quantity == 0:
		// Flat -> open a new position.
		p.Quantity = signedFill
		p.AvgEntryPrice = fillPrice

	case SignOf(p.Quantity) == SignOf(signedFill):
		// Same direction: weighted-average the entry price.
		oldQty := AbsInt64(p.Quantity)
		addQty := AbsInt64(signedFill)
		totalNotional := Notional(oldQty, p.AvgEntryPrice) + Notional(addQty, fillPrice)
		p.Quantity += signedFill
		p.AvgEntryPrice = totalNotional / AbsInt64(p.Quantity)

	default:
		// Opposite direction: reduces, possibly reverses.
		reduceQty := MinInt64(AbsInt64(p.Quantity), AbsInt64(signedFill))
		p.RealizedPnL += (fillPrice - p.AvgEntryPrice) * reduceQty * SignOf(p.Quantity)

		remaining := AbsInt64(signedFill) - reduceQty
		newQty := p.Quantity + signedFill
		p.Quantity = newQty
		if p.Quantity == 0 {
			p.AvgEntryPrice = 0
		} else if remaining > 0 {
			// Crossed zero: the remainder opens a fresh position at fillPrice.
			p.AvgEntryPrice = fillPrice
		}
		// else: still reducing in the same direction, average entry preserved.
	}

	if p.IsFlat() {
		p.AvgEntryPrice = 0
	}
}

// MarkToMarket updates the current mark price and recomputes unrealized
// P&L and the running maximum drawdown. Called on every QUOTE_UPDATE (mid
// price) or TRADE_UPDATE (last trade price) for the position's symbol.
func (p *Position) MarkToMarket(price int64) {
	p.LastMarkPrice = price
	if p.IsFlat() {
		p.UnrealizedPnL = 0
	} else {
		p.UnrealizedPnL = (price - p.AvgEntryPrice) * p.Quantity
	}
	p.MaxDrawdown = MinInt64(p.MaxDrawdown, p.RealizedPnL+p.UnrealizedPnL)
}

// GrossExposure returns |quantity * mark|.
func (p *Position) GrossExposure() int64 {
	return AbsInt64(p.Quantity * p.LastMarkPrice)
}

// NetExposure returns signed quantity * mark.
func (p *Position) NetExposure() int64 {
	return p.Quantity * p.LastMarkPrice
}

// Snapshot is an immutable value copy of a Position, safe to share across
// goroutines and to hand to external readers.
type Snapshot struct {
	Symbol        Symbol
	Quantity      int64
	AvgEntryPrice int64
	RealizedPnL   int64
	UnrealizedPnL int64
	MarketValue   int64 // market value in native scale: Quantity * LastMarkPrice
	LastMarkPrice int64
	MaxDrawdown   int64
	AsOf          int64 // epoch-ns
}

// ToSnapshot copies the position into an immutable snapshot. See
// SPEC_FULL.md's Open Question resolution: MarketValue/LastMarkPrice are
// both stored explicitly from the last mark, never cross-derived from one
// another.
func (p *Position) ToSnapshot(asOf int64) Snapshot {
	return Snapshot{
		Symbol:        p.Symbol,
		Quantity:      p.Quantity,
		AvgEntryPrice: p.AvgEntryPrice,
		RealizedPnL:   p.RealizedPnL,
		UnrealizedPnL: p.UnrealizedPnL,
		MarketValue:   p.Quantity * p.LastMarkPrice,
		LastMarkPrice: p.LastMarkPrice,
		MaxDrawdown:   p.MaxDrawdown,
		AsOf:          asOf,
	}
}

// PortfolioSnapshot aggregates across every tracked symbol.
type PortfolioSnapshot struct {
	TotalPositions  int
	ActivePositions int
	RealizedPnL     int64
	UnrealizedPnL   int64
	GrossExposure   int64
	NetExposure     int64
	Positions       []Snapshot
}
