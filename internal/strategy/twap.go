package strategy

import (
	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog/log"
)

// TWAPParams configures a uniform time-sliced execution (§4.5.4).
type TWAPParams struct {
	Symbol               domain.Symbol
	Side                 domain.Side
	TargetQuantity       int64 // Q
	StartTime            int64 // t0, monotonic-ns
	EndTime              int64 // t1, monotonic-ns
	SliceInterval        int64 // Δ, nanoseconds
	MaxParticipationRate float64
	LimitPrice           int64 // 0 means unset
}

// TWAP slices a target quantity evenly across [t0, t1] in SliceInterval
// windows, catching up within a slice if prior slices under-delivered.
type TWAP struct {
	lifecycle

	params      TWAPParams
	filled      int64
	sliceCount  int64 // ceil((t1-t0)/Δ)
	sliceTarget int64 // Q / sliceCount
}

// NewTWAP builds a TWAP strategy.
func NewTWAP(id string, params TWAPParams) *TWAP {
	span := params.EndTime - params.StartTime
	sliceCount := int64(1)
	if span > 0 && params.SliceInterval > 0 {
		sliceCount = (span + params.SliceInterval - 1) / params.SliceInterval
	}
	sliceTarget := params.TargetQuantity / sliceCount
	return &TWAP{
		lifecycle:   newLifecycle(id),
		params:      params,
		sliceCount:  sliceCount,
		sliceTarget: sliceTarget,
	}
}

// currentSlice returns the 0-based index of the slice containing t.
func (tw *TWAP) currentSlice(t int64) int64 {
	if tw.params.SliceInterval <= 0 {
		return 0
	}
	idx := (t - tw.params.StartTime) / tw.params.SliceInterval
	if idx < 0 {
		idx = 0
	}
	if idx >= tw.sliceCount {
		idx = tw.sliceCount - 1
	}
	return idx
}

// priorSlicesTarget is what the schedule would have delivered by the start
// of the slice containing t.
func (tw *TWAP) priorSlicesTarget(t int64) int64 {
	return tw.currentSlice(t) * tw.sliceTarget
}

func (tw *TWAP) OnQuote(ctx Context, sym domain.Symbol, quote domain.Quote) {
	if tw.state != StateRunning || sym != tw.params.Symbol {
		return
	}

	now := ctx.Now()
	tw.maybeComplete(now)
	if tw.state != StateRunning {
		return
	}

	sliceEnd := tw.priorSlicesTarget(now) + tw.sliceTarget
	behindSchedule := tw.priorSlicesTarget(now) - tw.filled
	sliceBudget := tw.sliceTarget
	if behindSchedule > 0 {
		sliceBudget += behindSchedule // catch up by enlarging this slice
	}

	remainingInSlice := sliceEnd - tw.filled
	if remainingInSlice <= 0 {
		return
	}
	if sliceBudget > remainingInSlice {
		sliceBudget = remainingInSlice
	}

	var liquidity int64
	var venuePrice int64
	if tw.params.Side == domain.SideBuy {
		liquidity = quote.AskSize
		venuePrice = quote.AskPrice
	} else {
		liquidity = quote.BidSize
		venuePrice = quote.BidPrice
	}

	participationCap := int64(tw.params.MaxParticipationRate * float64(liquidity))
	qty := sliceBudget
	if participationCap < qty {
		qty = participationCap
	}
	if qty <= 0 {
		return
	}

	if tw.params.LimitPrice != 0 {
		if tw.params.Side == domain.SideBuy && venuePrice > tw.params.LimitPrice {
			return
		}
		if tw.params.Side == domain.SideSell && venuePrice < tw.params.LimitPrice {
			return
		}
	}

	if err := ctx.SubmitOrder(OrderIntent{
		Symbol:     sym,
		Side:       tw.params.Side,
		Quantity:   qty,
		Type:       domain.OrderTypeLimit,
		LimitPrice: venuePrice,
		StrategyID: tw.id,
	}); err != nil {
		log.Warn().Err(err).Str("strategy_id", tw.id).Msg("twap slice rejected")
	}
}

func (tw *TWAP) maybeComplete(now int64) {
	if tw.state != StateRunning {
		return
	}
	if now >= tw.params.EndTime || tw.filled >= tw.params.TargetQuantity {
		tw.complete()
	}
}

// OnFill updates cumulative filled quantity (always |fillQty|, since a
// TWAP execution only trades its own Side). at is the fill's epoch-ns
// timestamp; the EndTime deadline check stays on the strategy's own
// monotonic clock (§3).
func (tw *TWAP) OnFill(ctx Context, fillQty, fillPrice int64, at int64) {
	if fillQty < 0 {
		fillQty = -fillQty
	}
	tw.filled += fillQty
	tw.maybeComplete(ctx.Now())
}

func (tw *TWAP) OnTimer(ctx Context, at int64) {
	tw.maybeComplete(at)
}
