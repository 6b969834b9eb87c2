package domain

import "testing"

func TestPositionLongRoundTrip(t *testing.T) {
	p := &Position{Symbol: NewSymbol("aapl", VenueNASDAQ)}

	p.ApplyFill(SideBuy, 100, 15000)
	if p.Quantity != 100 || p.AvgEntryPrice != 15000 {
		t.Fatalf("after buy: qty=%d avg=%d", p.Quantity, p.AvgEntryPrice)
	}

	p.ApplyFill(SideSell, 100, 15500)
	if !p.IsFlat() {
		t.Fatalf("expected flat position, got qty=%d", p.Quantity)
	}
	if p.RealizedPnL != 50000 {
		t.Fatalf("realized pnl = %d, want 50000", p.RealizedPnL)
	}
	if p.AvgEntryPrice != 0 {
		t.Fatalf("avg entry price should be 0 when flat, got %d", p.AvgEntryPrice)
	}

	p.MarkToMarket(15500)
	if p.UnrealizedPnL != 0 {
		t.Fatalf("unrealized pnl should be 0 when flat, got %d", p.UnrealizedPnL)
	}
}

func TestPositionReversal(t *testing.T) {
	p := &Position{Symbol: NewSymbol("aapl", VenueNASDAQ)}

	p.ApplyFill(SideBuy, 100, 15000)
	p.ApplyFill(SideSell, 150, 15100)

	if p.Quantity != -50 {
		t.Fatalf("quantity = %d, want -50", p.Quantity)
	}
	if p.RealizedPnL != 10000 {
		t.Fatalf("realized pnl = %d, want 10000", p.RealizedPnL)
	}
	if p.AvgEntryPrice != 15100 {
		t.Fatalf("avg entry of remaining short = %d, want 15100", p.AvgEntryPrice)
	}
}

func TestPositionSameDirectionAverages(t *testing.T) {
	p := &Position{Symbol: NewSymbol("aapl", VenueNASDAQ)}

	p.ApplyFill(SideBuy, 100, 10000)
	p.ApplyFill(SideBuy, 100, 12000)

	if p.Quantity != 200 {
		t.Fatalf("quantity = %d, want 200", p.Quantity)
	}
	if p.AvgEntryPrice != 11000 {
		t.Fatalf("avg entry = %d, want 11000", p.AvgEntryPrice)
	}
}

func TestPositionDrawdownMonotonic(t *testing.T) {
	p := &Position{Symbol: NewSymbol("aapl", VenueNASDAQ)}
	p.ApplyFill(SideBuy, 10, 1000)

	p.MarkToMarket(900) // unrealized -1000
	if p.MaxDrawdown != -1000 {
		t.Fatalf("drawdown = %d, want -1000", p.MaxDrawdown)
	}

	p.MarkToMarket(1200) // unrealized +2000, drawdown must not improve
	if p.MaxDrawdown != -1000 {
		t.Fatalf("drawdown regressed to %d, want it to stay -1000", p.MaxDrawdown)
	}

	p.MarkToMarket(500) // unrealized -5000, new worst
	if p.MaxDrawdown != -5000 {
		t.Fatalf("drawdown = %d, want -5000", p.MaxDrawdown)
	}
}

func TestNotional128BitIntermediate(t *testing.T) {
	// Large crypto-scale quantity * price whose product still fits in an
	// int64: the 128-bit path must agree with a plain multiply.
	got := Notional(1_000_000, 9_000_000_000)
	want := int64(1_000_000) * int64(9_000_000_000)
	if got != want {
		t.Fatalf("notional = %d, want %d", got, want)
	}
}

func TestNotionalNegativeQuantityShort(t *testing.T) {
	got := Notional(-50, 200)
	if got != -10000 {
		t.Fatalf("notional = %d, want -10000", got)
	}
}
