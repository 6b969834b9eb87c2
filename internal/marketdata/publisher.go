// Package marketdata provides an in-process reference implementation of
// ports.MarketDataPort: a fan-out publisher that keeps the latest quote
// and a bounded trade tape per symbol and notifies registered listeners
// synchronously on Publish. A real deployment would replace this with an
// adapter over a vendor feed (FIX, a websocket gateway, a multicast
// drop-copy) while keeping the same port contract.
package marketdata

import (
	"sync"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/lukmusial/tradecore/internal/ports"
)

// Publisher distributes quotes and trades to subscribed listeners and
// answers GetQuote/GetRecentTrades from its own retained state.
type Publisher struct {
	mu sync.RWMutex

	quoteListeners map[domain.Symbol][]ports.QuoteListener
	tradeListeners map[domain.Symbol][]ports.TradeListener

	latestQuote map[domain.Symbol]domain.Quote
	recentTrade map[domain.Symbol][]domain.Trade
	tapeDepth   int
}

// NewPublisher builds a Publisher that retains up to tapeDepth trades per
// symbol for GetRecentTrades; tapeDepth <= 0 defaults to 100.
func NewPublisher(tapeDepth int) *Publisher {
	if tapeDepth <= 0 {
		tapeDepth = 100
	}
	return &Publisher{
		quoteListeners: make(map[domain.Symbol][]ports.QuoteListener),
		tradeListeners: make(map[domain.Symbol][]ports.TradeListener),
		latestQuote:    make(map[domain.Symbol]domain.Quote),
		recentTrade:    make(map[domain.Symbol][]domain.Trade),
		tapeDepth:      tapeDepth,
	}
}

// SubscribeQuotes implements ports.MarketDataPort.
func (p *Publisher) SubscribeQuotes(symbols []domain.Symbol, listener ports.QuoteListener) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sym := range symbols {
		p.quoteListeners[sym] = append(p.quoteListeners[sym], listener)
	}
	return nil
}

// SubscribeTrades implements ports.MarketDataPort.
func (p *Publisher) SubscribeTrades(symbols []domain.Symbol, listener ports.TradeListener) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sym := range symbols {
		p.tradeListeners[sym] = append(p.tradeListeners[sym], listener)
	}
	return nil
}

// Unsubscribe implements ports.MarketDataPort by dropping every listener
// registered for the given symbols.
func (p *Publisher) Unsubscribe(symbols []domain.Symbol) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sym := range symbols {
		delete(p.quoteListeners, sym)
		delete(p.tradeListeners, sym)
	}
	return nil
}

// GetQuote implements ports.MarketDataPort.
func (p *Publisher) GetQuote(sym domain.Symbol) (domain.Quote, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	q, ok := p.latestQuote[sym]
	return q, ok
}

// GetRecentTrades implements ports.MarketDataPort, returning up to limit
// of the most recent trades for sym (newest last).
func (p *Publisher) GetRecentTrades(sym domain.Symbol, limit int) []domain.Trade {
	p.mu.RLock()
	defer p.mu.RUnlock()
	trades := p.recentTrade[sym]
	if limit <= 0 || limit >= len(trades) {
		out := make([]domain.Trade, len(trades))
		copy(out, trades)
		return out
	}
	out := make([]domain.Trade, limit)
	copy(out, trades[len(trades)-limit:])
	return out
}

// PublishQuote records quote as the latest for its symbol and notifies
// every listener subscribed to that symbol.
func (p *Publisher) PublishQuote(quote domain.Quote) {
	p.mu.Lock()
	p.latestQuote[quote.Symbol] = quote
	listeners := append([]ports.QuoteListener(nil), p.quoteListeners[quote.Symbol]...)
	p.mu.Unlock()

	for _, l := range listeners {
		l.OnQuote(quote)
	}
}

// PublishTrade appends trade to its symbol's tape (trimming to tapeDepth)
// and notifies every listener subscribed to that symbol.
func (p *Publisher) PublishTrade(trade domain.Trade) {
	p.mu.Lock()
	tape := append(p.recentTrade[trade.Symbol], trade)
	if len(tape) > p.tapeDepth {
		tape = tape[len(tape)-p.tapeDepth:]
	}
	p.recentTrade[trade.Symbol] = tape
	listeners := append([]ports.TradeListener(nil), p.tradeListeners[trade.Symbol]...)
	p.mu.Unlock()

	for _, l := range listeners {
		l.OnTrade(trade)
	}
}

var _ ports.MarketDataPort = (*Publisher)(nil)
