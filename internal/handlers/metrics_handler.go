package handlers

import (
	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/lukmusial/tradecore/internal/metrics"
	"github.com/lukmusial/tradecore/internal/ring"
)

// MetricsHandler is the third and final consumer stage: it updates the
// shared OrderMetrics counters and latency histograms from each event
// (§5's shared-resource policy: OrderMetrics counters writable only from
// handler stages).
type MetricsHandler struct {
	m *metrics.OrderMetrics
}

// NewMetricsHandler builds a MetricsHandler over m.
func NewMetricsHandler(m *metrics.OrderMetrics) *MetricsHandler {
	return &MetricsHandler{m: m}
}

func (h *MetricsHandler) Name() string { return "MetricsHandler" }

func (h *MetricsHandler) Handle(slot *ring.EventSlot) {
	switch slot.Type {
	case ring.EventNewOrder:
		h.m.OrdersSubmitted.Inc()
		h.m.OpenOrders.Set(h.m.OpenOrders.Value() + 1)
	case ring.EventOrderAccepted:
		h.m.OrdersAccepted.Inc()
		if slot.Timestamp > 0 && slot.ClaimedAtMono > 0 {
			h.m.SubmitToAcceptLatency.Observe(domain.MonotonicNow() - slot.ClaimedAtMono)
		}
	case ring.EventOrderRejected:
		h.m.OrdersRejected.Inc()
		h.m.OpenOrders.Set(h.m.OpenOrders.Value() - 1)
	case ring.EventOrderCancelled:
		h.m.OrdersCancelled.Inc()
		h.m.OpenOrders.Set(h.m.OpenOrders.Value() - 1)
	case ring.EventOrderFilled:
		h.m.FillCount.Inc()
		if slot.FillQuantity > 0 {
			h.m.OrdersFilled.Inc()
		}
	}
}
