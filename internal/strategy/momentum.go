package strategy

import (
	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog/log"
)

// MomentumParams configures an EMA-crossover momentum strategy (§4.5.1).
type MomentumParams struct {
	Symbol          domain.Symbol
	ShortSpan       int64 // S_short
	LongSpan        int64 // S_long, must exceed ShortSpan
	SignalThreshold float64
	MaxPositionSize int64
}

// Momentum tracks short/long EMAs of the mid price and trades toward a
// target position sized by the normalized EMA spread.
type Momentum struct {
	lifecycle

	params MomentumParams

	shortEMA    float64
	longEMA     float64
	initialized bool

	currentPosition int64
}

// NewMomentum builds a Momentum strategy. currentPosition seeds the
// strategy's view of its own open position so a restart doesn't trade back
// to zero and re-open it.
func NewMomentum(id string, params MomentumParams, currentPosition int64) *Momentum {
	return &Momentum{
		lifecycle:       newLifecycle(id),
		params:          params,
		currentPosition: currentPosition,
	}
}

func emaAlpha(span int64) float64 {
	return 2.0 / (float64(span) + 1.0)
}

func (m *Momentum) OnQuote(ctx Context, sym domain.Symbol, quote domain.Quote) {
	if m.state != StateRunning || sym != m.params.Symbol {
		return
	}

	mid := float64(quote.Mid())
	if !m.initialized {
		m.shortEMA = mid
		m.longEMA = mid
		m.initialized = true
		return
	}

	shortAlpha := emaAlpha(m.params.ShortSpan)
	longAlpha := emaAlpha(m.params.LongSpan)
	m.shortEMA = shortAlpha*mid + (1-shortAlpha)*m.shortEMA
	m.longEMA = longAlpha*mid + (1-longAlpha)*m.longEMA

	if m.longEMA == 0 {
		return
	}
	signal := (m.shortEMA - m.longEMA) / m.longEMA
	if signal < 0 {
		signal = -signal
	}
	if signal < m.params.SignalThreshold {
		return
	}

	rawSignal := (m.shortEMA - m.longEMA) / m.longEMA
	target := clampFloat(rawSignal*float64(m.params.MaxPositionSize), -float64(m.params.MaxPositionSize), float64(m.params.MaxPositionSize))
	targetPosition := int64(target)

	gap := targetPosition - m.currentPosition
	if gap == 0 {
		return
	}

	side := domain.SideBuy
	qty := gap
	if gap < 0 {
		side = domain.SideSell
		qty = -gap
	}

	if err := ctx.SubmitOrder(OrderIntent{
		Symbol:     sym,
		Side:       side,
		Quantity:   qty,
		Type:       domain.OrderTypeMarket,
		StrategyID: m.id,
	}); err != nil {
		log.Warn().Err(err).Str("strategy_id", m.id).Msg("momentum rebalance order rejected")
	}
}

// OnFill updates the strategy's tracked position. fillQty is signed:
// positive for a buy execution, negative for a sell.
func (m *Momentum) OnFill(ctx Context, fillQty, fillPrice int64, at int64) {
	m.currentPosition += fillQty
}

func (m *Momentum) OnTimer(ctx Context, at int64) {}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
