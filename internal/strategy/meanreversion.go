package strategy

import (
	"math"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog/log"
)

// MeanReversionParams configures a rolling Z-score mean-reversion strategy
// (§4.5.2).
type MeanReversionParams struct {
	Symbol          domain.Symbol
	Lookback        int // N samples
	EntryZ          float64
	ExitZ           float64
	MaxPositionSize int64
}

// MeanReversion maintains a ring buffer of the last Lookback mid prices and
// trades on deviations from the rolling mean measured in standard
// deviations.
type MeanReversion struct {
	lifecycle

	params MeanReversionParams

	buffer []float64
	head   int
	count  int

	currentPosition int64
}

// NewMeanReversion builds a MeanReversion strategy.
func NewMeanReversion(id string, params MeanReversionParams, currentPosition int64) *MeanReversion {
	return &MeanReversion{
		lifecycle:       newLifecycle(id),
		params:          params,
		buffer:          make([]float64, params.Lookback),
		currentPosition: currentPosition,
	}
}

func (mr *MeanReversion) push(v float64) {
	mr.buffer[mr.head] = v
	mr.head = (mr.head + 1) % len(mr.buffer)
	if mr.count < len(mr.buffer) {
		mr.count++
	}
}

func (mr *MeanReversion) meanAndStdDev() (mean, stddev float64) {
	n := float64(mr.count)
	var sum float64
	for i := 0; i < mr.count; i++ {
		sum += mr.buffer[i]
	}
	mean = sum / n

	var sqDiff float64
	for i := 0; i < mr.count; i++ {
		d := mr.buffer[i] - mean
		sqDiff += d * d
	}
	if mr.count < 2 {
		return mean, 0
	}
	variance := sqDiff / (n - 1)
	return mean, math.Sqrt(variance)
}

// Bands returns the upper/lower visualization bands (μ ± entryZ·σ), and
// false if fewer than Lookback samples have been observed yet.
func (mr *MeanReversion) Bands() (upper, lower float64, ok bool) {
	if mr.count < len(mr.buffer) {
		return 0, 0, false
	}
	mean, stddev := mr.meanAndStdDev()
	band := mr.params.EntryZ * stddev
	return mean + band, mean - band, true
}

func (mr *MeanReversion) OnQuote(ctx Context, sym domain.Symbol, quote domain.Quote) {
	if mr.state != StateRunning || sym != mr.params.Symbol {
		return
	}

	mid := float64(quote.Mid())
	mr.push(mid)
	if mr.count < len(mr.buffer) {
		return // not enough samples yet
	}

	mean, stddev := mr.meanAndStdDev()
	if stddev == 0 {
		return // undefined Z-score: no signal
	}
	z := (mid - mean) / stddev

	if mr.currentPosition != 0 && absFloat(z) <= mr.params.ExitZ {
		mr.submitToTarget(ctx, sym, 0)
		return
	}

	if z <= -mr.params.EntryZ {
		mr.submitToTarget(ctx, sym, mr.params.MaxPositionSize)
	} else if z >= mr.params.EntryZ {
		mr.submitToTarget(ctx, sym, -mr.params.MaxPositionSize)
	}
}

func (mr *MeanReversion) submitToTarget(ctx Context, sym domain.Symbol, target int64) {
	gap := target - mr.currentPosition
	if gap == 0 {
		return
	}
	qty := gap
	side := domain.SideBuy
	if gap < 0 {
		side = domain.SideSell
		qty = -gap
	}
	if err := ctx.SubmitOrder(OrderIntent{
		Symbol:     sym,
		Side:       side,
		Quantity:   qty,
		Type:       domain.OrderTypeMarket,
		StrategyID: mr.id,
	}); err != nil {
		log.Warn().Err(err).Str("strategy_id", mr.id).Msg("mean reversion order rejected")
	}
}

// OnFill updates the strategy's tracked position. fillQty is signed.
func (mr *MeanReversion) OnFill(ctx Context, fillQty, fillPrice int64, at int64) {
	mr.currentPosition += fillQty
}

func (mr *MeanReversion) OnTimer(ctx Context, at int64) {}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
