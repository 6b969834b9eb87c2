package strategy

import (
	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog/log"
)

// VWAPParams configures a volume-profile participation execution (§4.5.3).
type VWAPParams struct {
	Symbol              domain.Symbol
	Side                domain.Side
	TargetQuantity      int64 // Q
	StartTime           int64 // t0, monotonic-ns
	EndTime              int64 // t1, monotonic-ns
	MaxParticipationRate float64 // r
	LimitPrice           int64   // 0 means unset
	VolumeProfile        []int64 // K buckets across [t0, t1]
}

// VWAP slices a target quantity across the historical volume profile,
// never participating above MaxParticipationRate of current liquidity.
type VWAP struct {
	lifecycle

	params VWAPParams
	filled int64

	totalVolume int64
}

// NewVWAP builds a VWAP strategy.
func NewVWAP(id string, params VWAPParams) *VWAP {
	var total int64
	for _, v := range params.VolumeProfile {
		total += v
	}
	return &VWAP{
		lifecycle:   newLifecycle(id),
		params:      params,
		totalVolume: total,
	}
}

// bucketIndex maps a time t to its bucket in [0, K).
func (v *VWAP) bucketIndex(t int64) int {
	k := len(v.params.VolumeProfile)
	if k == 0 {
		return 0
	}
	span := v.params.EndTime - v.params.StartTime
	if span <= 0 {
		return k - 1
	}
	elapsed := t - v.params.StartTime
	idx := int(elapsed * int64(k) / span)
	if idx < 0 {
		idx = 0
	}
	if idx >= k {
		idx = k - 1
	}
	return idx
}

func (v *VWAP) targetThroughBucket(b int) int64 {
	if v.totalVolume == 0 {
		return 0
	}
	var cumulative int64
	for i := 0; i <= b && i < len(v.params.VolumeProfile); i++ {
		cumulative += v.params.VolumeProfile[i]
	}
	return v.params.TargetQuantity * cumulative / v.totalVolume
}

func (v *VWAP) OnQuote(ctx Context, sym domain.Symbol, quote domain.Quote) {
	if v.state != StateRunning || sym != v.params.Symbol {
		return
	}

	now := ctx.Now()
	v.maybeComplete(now)
	if v.state != StateRunning {
		return
	}

	b := v.bucketIndex(now)
	targetAtB := v.targetThroughBucket(b)
	underFill := targetAtB - v.filled
	if underFill <= 0 {
		return
	}

	var liquidity int64
	var venuePrice int64
	if v.params.Side == domain.SideBuy {
		liquidity = quote.AskSize
		venuePrice = quote.AskPrice
	} else {
		liquidity = quote.BidSize
		venuePrice = quote.BidPrice
	}

	participationCap := int64(v.params.MaxParticipationRate * float64(liquidity))
	sliceQty := underFill
	if participationCap < sliceQty {
		sliceQty = participationCap
	}
	if sliceQty <= 0 {
		return
	}

	if v.params.LimitPrice != 0 {
		if v.params.Side == domain.SideBuy && venuePrice > v.params.LimitPrice {
			return // ask worse than limit: skip this slice
		}
		if v.params.Side == domain.SideSell && venuePrice < v.params.LimitPrice {
			return // bid worse than limit: skip this slice
		}
	}

	if err := ctx.SubmitOrder(OrderIntent{
		Symbol:     sym,
		Side:       v.params.Side,
		Quantity:   sliceQty,
		Type:       domain.OrderTypeLimit,
		LimitPrice: venuePrice,
		StrategyID: v.id,
	}); err != nil {
		log.Warn().Err(err).Str("strategy_id", v.id).Msg("vwap slice rejected")
	}
}

func (v *VWAP) maybeComplete(now int64) {
	if v.state != StateRunning {
		return
	}
	if now >= v.params.EndTime || v.filled >= v.params.TargetQuantity {
		v.complete()
	}
}

// OnFill updates cumulative filled quantity. fillQty is signed, but a VWAP
// execution always fills in the direction of its own Side, so |fillQty| is
// what accumulates toward TargetQuantity. at is the fill's epoch-ns
// timestamp and is not itself used for the EndTime deadline check: that
// comparison must stay in the strategy's own monotonic clock (§3).
func (v *VWAP) OnFill(ctx Context, fillQty, fillPrice int64, at int64) {
	if fillQty < 0 {
		fillQty = -fillQty
	}
	v.filled += fillQty
	v.maybeComplete(ctx.Now())
}

func (v *VWAP) OnTimer(ctx Context, at int64) {
	v.maybeComplete(at)
}
