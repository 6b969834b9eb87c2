package handlers

import (
	"context"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/lukmusial/tradecore/internal/ordermanager"
	"github.com/lukmusial/tradecore/internal/ports"
	"github.com/lukmusial/tradecore/internal/ring"
	"github.com/rs/zerolog"
)

// StrategyDispatcher fans ring events out to the strategy runtime. Kept as
// an interface here (rather than importing internal/strategy directly) so
// handlers never needs to know about the Context a strategy runs with;
// engine supplies the concrete implementation.
type StrategyDispatcher interface {
	DispatchQuote(sym domain.Symbol, quote domain.Quote)
	DispatchFill(strategyID string, fillQty, fillPrice, at int64)
	DispatchTimer(at int64)
}

// FillRecorder receives every applied fill so the risk engine can track
// notional traded today (§4.4). Kept as an interface for the same reason as
// StrategyDispatcher: handlers must not import internal/risk directly.
type FillRecorder interface {
	RecordFill(fillQty, fillPrice int64)
}

// OrderHandler is the first consumer stage: it applies order lifecycle
// events to the OrderManager, forwards newly accepted NEW_ORDER intents to
// the symbol's venue OrderPort, and dispatches quote/trade/fill events to
// strategies (§4.6's data flow).
type OrderHandler struct {
	mgr          *ordermanager.Manager
	orderPorts   map[domain.Venue]ports.OrderPort
	strategies   StrategyDispatcher
	fillRecorder FillRecorder
	log          zerolog.Logger
}

// NewOrderHandler builds an OrderHandler. orderPorts may be nil/empty; a
// missing venue port simply skips venue forwarding (out-of-process
// adapters are outside this module's scope). fillRecorder may be nil, in
// which case fills are applied but not reported to the risk engine.
func NewOrderHandler(mgr *ordermanager.Manager, orderPorts map[domain.Venue]ports.OrderPort, strategies StrategyDispatcher, fillRecorder FillRecorder, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		mgr:          mgr,
		orderPorts:   orderPorts,
		strategies:   strategies,
		fillRecorder: fillRecorder,
		log:          log.With().Str("component", "order_handler").Logger(),
	}
}

func (h *OrderHandler) Name() string { return "OrderHandler" }

func (h *OrderHandler) Handle(slot *ring.EventSlot) {
	switch slot.Type {
	case ring.EventNewOrder:
		h.handleNewOrder(slot)
	case ring.EventCancelOrder:
		h.handleCancelOrder(slot)
	case ring.EventOrderAccepted:
		h.mgr.Accept(slot.ClientOrderID, slot.VenueOrderID, slot.Timestamp)
	case ring.EventOrderRejected:
		h.mgr.Reject(slot.ClientOrderID, slot.RejectReason, slot.Timestamp)
	case ring.EventOrderCancelled:
		h.mgr.Cancel(slot.ClientOrderID, slot.Timestamp)
	case ring.EventOrderFilled:
		h.handleFill(slot)
	case ring.EventQuoteUpdate:
		h.handleQuote(slot)
	case ring.EventTradeUpdate:
		// Strategies that key off last-trade rather than mid can extend
		// this; core only needs PositionHandler's mark-to-market here.
	}
}

func (h *OrderHandler) handleNewOrder(slot *ring.EventSlot) {
	o, ok := h.mgr.Get(slot.ClientOrderID)
	if !ok {
		h.log.Warn().Uint64("client_order_id", slot.ClientOrderID).Msg("NEW_ORDER for an order not registered with the manager")
		return
	}
	if err := h.mgr.Submit(slot.ClientOrderID, slot.Timestamp); err != nil {
		h.log.Error().Err(err).Uint64("client_order_id", slot.ClientOrderID).Msg("submit transition failed")
		return
	}
	port, ok := h.orderPorts[o.Symbol.Venue]
	if !ok {
		return
	}
	if err := port.SubmitOrder(context.Background(), o); err != nil {
		h.log.Warn().Err(err).Uint64("client_order_id", slot.ClientOrderID).Msg("venue submit failed")
	}
}

func (h *OrderHandler) handleCancelOrder(slot *ring.EventSlot) {
	o, ok := h.mgr.Get(slot.ClientOrderID)
	if !ok {
		return
	}
	port, ok := h.orderPorts[o.Symbol.Venue]
	if !ok {
		h.mgr.Cancel(slot.ClientOrderID, slot.Timestamp)
		return
	}
	if err := port.CancelOrder(context.Background(), o); err != nil {
		h.log.Warn().Err(err).Uint64("client_order_id", slot.ClientOrderID).Msg("venue cancel failed")
	}
}

func (h *OrderHandler) handleFill(slot *ring.EventSlot) {
	o, ok := h.mgr.Get(slot.ClientOrderID)
	if !ok {
		return
	}
	if err := h.mgr.Fill(slot.ClientOrderID, slot.FillQuantity, slot.FillPrice, slot.Timestamp); err != nil {
		h.log.Error().Err(err).Uint64("client_order_id", slot.ClientOrderID).Msg("fill application failed")
		return
	}
	if h.fillRecorder != nil {
		h.fillRecorder.RecordFill(slot.FillQuantity, slot.FillPrice)
	}
	if h.strategies == nil || o.StrategyID == "" {
		return
	}
	signedQty := slot.FillQuantity
	if o.Side == domain.SideSell {
		signedQty = -signedQty
	}
	h.strategies.DispatchFill(o.StrategyID, signedQty, slot.FillPrice, slot.Timestamp)
}

func (h *OrderHandler) handleQuote(slot *ring.EventSlot) {
	if h.strategies == nil {
		return
	}
	q := domain.Quote{
		Symbol:     slot.Symbol,
		BidPrice:   slot.BidPrice,
		AskPrice:   slot.AskPrice,
		BidSize:    slot.BidSize,
		AskSize:    slot.AskSize,
		ReceivedAt: slot.Timestamp,
		PriceScale: slot.PriceScale,
	}
	h.strategies.DispatchQuote(slot.Symbol, q)
}
