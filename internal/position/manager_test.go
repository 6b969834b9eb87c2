package position

import (
	"testing"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog"
)

func TestManagerPortfolioAggregatesAcrossSymbols(t *testing.T) {
	m := New(zerolog.Nop())
	aapl := domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	msft := domain.NewSymbol("MSFT", domain.VenueNASDAQ)

	m.ApplyFill(aapl, domain.SideBuy, 100, 15000, 100)
	m.ApplyFill(msft, domain.SideSell, 50, 30000, 100)
	m.MarkToMarket(aapl, 15200)
	m.MarkToMarket(msft, 29500)

	port := m.Portfolio(123)
	if port.TotalPositions != 2 {
		t.Fatalf("total positions = %d, want 2", port.TotalPositions)
	}
	if port.ActivePositions != 2 {
		t.Fatalf("active positions = %d, want 2", port.ActivePositions)
	}

	wantUnrealized := (15200-15000)*100 + (29500-30000)*-50
	if port.UnrealizedPnL != wantUnrealized {
		t.Fatalf("unrealized pnl = %d, want %d", port.UnrealizedPnL, wantUnrealized)
	}
}

func TestMarkToMarketNoPositionIsNoOp(t *testing.T) {
	m := New(zerolog.Nop())
	sym := domain.NewSymbol("TSLA", domain.VenueNASDAQ)
	m.MarkToMarket(sym, 10000) // must not panic or create a phantom position

	if _, ok := m.Snapshot(sym, 0); ok {
		t.Fatal("expected no position to exist for a symbol never filled")
	}
}

func TestExposureHelpersMatchPositionMath(t *testing.T) {
	m := New(zerolog.Nop())
	sym := domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	m.ApplyFill(sym, domain.SideBuy, 100, 15000, 100)
	m.MarkToMarket(sym, 15500)

	if got, want := m.NetExposure(), int64(100*15500); got != want {
		t.Fatalf("net exposure = %d, want %d", got, want)
	}
	if got, want := m.GrossExposure(), int64(100*15500); got != want {
		t.Fatalf("gross exposure = %d, want %d", got, want)
	}
	if got, want := m.PositionQty(sym), int64(100); got != want {
		t.Fatalf("position qty = %d, want %d", got, want)
	}
}
