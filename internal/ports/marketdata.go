package ports

import "github.com/lukmusial/tradecore/internal/domain"

// QuoteListener receives top-of-book updates from a MarketDataPort.
type QuoteListener interface {
	OnQuote(quote domain.Quote)
}

// TradeListener receives executed-trade prints from a MarketDataPort.
type TradeListener interface {
	OnTrade(trade domain.Trade)
}

// MarketDataPort is the market-data ingestion contract (§4.6's
// "Market-data port"). A thin adapter copies the Quote/Trade values
// delivered here into ring events; quote timestamps are epoch-ns and
// scale matches the symbol's priceScale.
type MarketDataPort interface {
	SubscribeQuotes(symbols []domain.Symbol, listener QuoteListener) error
	SubscribeTrades(symbols []domain.Symbol, listener TradeListener) error
	Unsubscribe(symbols []domain.Symbol) error

	GetQuote(sym domain.Symbol) (domain.Quote, bool)
	GetRecentTrades(sym domain.Symbol, limit int) []domain.Trade
}
