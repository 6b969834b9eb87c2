package strategy

import (
	"fmt"
	"sync"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog"
)

// Runtime owns every live Strategy instance keyed by id, and is the thing
// the order handler dispatches quote/fill/timer events into.
type Runtime struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	log        zerolog.Logger
}

// New builds an empty Runtime.
func New(log zerolog.Logger) *Runtime {
	return &Runtime{
		strategies: make(map[string]Strategy),
		log:        log.With().Str("component", "strategy").Logger(),
	}
}

// Register adds a strategy under its own id. Registering a duplicate id
// replaces the previous instance.
func (r *Runtime) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.ID()] = s
}

// Get returns the strategy registered under id.
func (r *Runtime) Get(id string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[id]
	return s, ok
}

// Start transitions a strategy to RUNNING.
func (r *Runtime) Start(id string) error {
	s, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("strategy: unknown id %q", id)
	}
	return s.Start()
}

// Pause transitions a strategy to PAUSED.
func (r *Runtime) Pause(id string) error {
	s, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("strategy: unknown id %q", id)
	}
	return s.Pause()
}

// Stop transitions a strategy to CANCELLED.
func (r *Runtime) Stop(id string) error {
	s, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("strategy: unknown id %q", id)
	}
	return s.Stop()
}

// DispatchQuote fans a quote update out to every non-terminal strategy.
// Each Strategy implementation is itself responsible for filtering by
// symbol and by its own RUNNING gate.
func (r *Runtime) DispatchQuote(ctx Context, sym domain.Symbol, quote domain.Quote) {
	r.mu.RLock()
	targets := r.snapshot()
	r.mu.RUnlock()

	for _, s := range targets {
		if s.State().IsTerminal() {
			continue
		}
		s.OnQuote(ctx, sym, quote)
	}
}

// DispatchFill routes a fill to the strategy that owns strategyID, if any.
func (r *Runtime) DispatchFill(ctx Context, strategyID string, fillQty, fillPrice, at int64) {
	s, ok := r.Get(strategyID)
	if !ok || s.State().IsTerminal() {
		return
	}
	s.OnFill(ctx, fillQty, fillPrice, at)
}

// DispatchTimer fans a timer tick out to every non-terminal strategy.
func (r *Runtime) DispatchTimer(ctx Context, at int64) {
	r.mu.RLock()
	targets := r.snapshot()
	r.mu.RUnlock()

	for _, s := range targets {
		if s.State().IsTerminal() {
			continue
		}
		s.OnTimer(ctx, at)
	}
}

func (r *Runtime) snapshot() []Strategy {
	out := make([]Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s)
	}
	return out
}
