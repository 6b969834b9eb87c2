package engine

import (
	"sync"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/lukmusial/tradecore/internal/strategy"
)

// strategyContext implements both strategy.Context (what a strategy reads
// and how it submits orders) and handlers.StrategyDispatcher (how ring
// events reach the strategy runtime). Bundling them here is what lets
// OrderHandler dispatch quotes without importing internal/strategy (§4.5:
// "a strategy must never mutate shared position state directly" — the
// only mutating action exposed is SubmitOrder, which re-enters the
// standard risk-checked path).
type strategyContext struct {
	mu      sync.RWMutex
	quotes  map[domain.Symbol]domain.Quote
	volumes map[domain.Symbol][]int64

	runtime *strategy.Runtime
	submit  func(intent strategy.OrderIntent) error
}

func newStrategyContext(runtime *strategy.Runtime, submit func(strategy.OrderIntent) error) *strategyContext {
	return &strategyContext{
		quotes:  make(map[domain.Symbol]domain.Quote),
		volumes: make(map[domain.Symbol][]int64),
		runtime: runtime,
		submit:  submit,
	}
}

func (c *strategyContext) Now() int64 { return domain.MonotonicNow() }

func (c *strategyContext) LatestQuote(sym domain.Symbol) (domain.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[sym]
	return q, ok
}

func (c *strategyContext) HistoricalVolume(sym domain.Symbol) []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.volumes[sym]
}

// SetVolumeProfile registers the static historical-volume bucket profile
// that Context.HistoricalVolume returns for sym.
func (c *strategyContext) SetVolumeProfile(sym domain.Symbol, profile []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volumes[sym] = profile
}

func (c *strategyContext) SubmitOrder(intent strategy.OrderIntent) error {
	return c.submit(intent)
}

// DispatchQuote implements handlers.StrategyDispatcher: records the quote
// in the cache Context.LatestQuote reads from, then fans it out to every
// running strategy.
func (c *strategyContext) DispatchQuote(sym domain.Symbol, quote domain.Quote) {
	c.mu.Lock()
	c.quotes[sym] = quote
	c.mu.Unlock()
	c.runtime.DispatchQuote(c, sym, quote)
}

// DispatchFill implements handlers.StrategyDispatcher.
func (c *strategyContext) DispatchFill(strategyID string, fillQty, fillPrice, at int64) {
	c.runtime.DispatchFill(c, strategyID, fillQty, fillPrice, at)
}

// DispatchTimer implements handlers.StrategyDispatcher.
func (c *strategyContext) DispatchTimer(at int64) {
	c.runtime.DispatchTimer(c, at)
}
