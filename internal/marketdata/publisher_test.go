package marketdata

import (
	"testing"

	"github.com/lukmusial/tradecore/internal/domain"
)

type recordingQuoteListener struct {
	quotes []domain.Quote
}

func (r *recordingQuoteListener) OnQuote(q domain.Quote) {
	r.quotes = append(r.quotes, q)
}

func TestPublisherFansOutQuotesToSubscribedSymbolOnly(t *testing.T) {
	p := NewPublisher(10)
	aapl := domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	msft := domain.NewSymbol("MSFT", domain.VenueNASDAQ)

	listener := &recordingQuoteListener{}
	if err := p.SubscribeQuotes([]domain.Symbol{aapl}, listener); err != nil {
		t.Fatal(err)
	}

	p.PublishQuote(domain.Quote{Symbol: aapl, BidPrice: 100, AskPrice: 101})
	p.PublishQuote(domain.Quote{Symbol: msft, BidPrice: 200, AskPrice: 201})

	if len(listener.quotes) != 1 {
		t.Fatalf("got %d quotes, want 1 (only AAPL)", len(listener.quotes))
	}
	if listener.quotes[0].Symbol != aapl {
		t.Fatalf("got symbol %v, want AAPL", listener.quotes[0].Symbol)
	}

	got, ok := p.GetQuote(aapl)
	if !ok || got.AskPrice != 101 {
		t.Fatalf("GetQuote = %+v, %v", got, ok)
	}
}

func TestPublisherRecentTradesBoundedByTapeDepth(t *testing.T) {
	p := NewPublisher(2)
	sym := domain.NewSymbol("AAPL", domain.VenueNASDAQ)

	p.PublishTrade(domain.Trade{Symbol: sym, Price: 100, Quantity: 1})
	p.PublishTrade(domain.Trade{Symbol: sym, Price: 101, Quantity: 1})
	p.PublishTrade(domain.Trade{Symbol: sym, Price: 102, Quantity: 1})

	trades := p.GetRecentTrades(sym, 10)
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2 (tape depth bound)", len(trades))
	}
	if trades[0].Price != 101 || trades[1].Price != 102 {
		t.Fatalf("got prices %d,%d, want 101,102 (oldest trimmed)", trades[0].Price, trades[1].Price)
	}
}

func TestPublisherUnsubscribeStopsDelivery(t *testing.T) {
	p := NewPublisher(10)
	sym := domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	listener := &recordingQuoteListener{}
	p.SubscribeQuotes([]domain.Symbol{sym}, listener)
	p.Unsubscribe([]domain.Symbol{sym})

	p.PublishQuote(domain.Quote{Symbol: sym, BidPrice: 100, AskPrice: 101})
	if len(listener.quotes) != 0 {
		t.Fatalf("got %d quotes after unsubscribe, want 0", len(listener.quotes))
	}
}
