package handlers

import (
	"github.com/lukmusial/tradecore/internal/position"
	"github.com/lukmusial/tradecore/internal/ring"
	"github.com/rs/zerolog"
)

// PositionHandler is the second consumer stage: it folds fills into the
// position book and marks positions to market on quote/trade updates
// (§4.6's data flow, §5's shared-resource policy).
type PositionHandler struct {
	positions *position.Manager
	log       zerolog.Logger
}

// NewPositionHandler builds a PositionHandler.
func NewPositionHandler(positions *position.Manager, log zerolog.Logger) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		log:       log.With().Str("component", "position_handler").Logger(),
	}
}

func (h *PositionHandler) Name() string { return "PositionHandler" }

func (h *PositionHandler) Handle(slot *ring.EventSlot) {
	switch slot.Type {
	case ring.EventOrderFilled:
		// ORDER_FILLED carries the originating order's Side in the shared
		// Side field, set by the producer alongside FillQuantity/FillPrice.
		h.positions.ApplyFill(slot.Symbol, slot.Side, slot.FillQuantity, slot.FillPrice, slot.PriceScale)
	case ring.EventQuoteUpdate:
		mid := (slot.BidPrice + slot.AskPrice) / 2
		h.positions.MarkToMarket(slot.Symbol, mid)
	case ring.EventTradeUpdate:
		h.positions.MarkToMarket(slot.Symbol, slot.FillPrice)
	}
}
