// Package ports defines the boundary contracts the core depends on but
// never implements: order routing to a venue and market-data ingestion
// (§4.6, §6). Concrete adapters (REST/WebSocket exchange clients) live
// outside this module and import these interfaces.
package ports

import (
	"context"

	"github.com/lukmusial/tradecore/internal/domain"
)

// TransportError represents an adapter-level failure (connection lost,
// timeout). The core treats the order's eventual terminal status, not
// this error, as authoritative (§7).
type TransportError struct {
	Venue domain.Venue
	Op    string
	Err   error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Venue.String() + " " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// OrderStatusListener is notified whenever an adapter observes a status
// change for an order it is tracking. The engine registers itself as the
// listener on every configured port and publishes each change as a ring
// event.
type OrderStatusListener interface {
	OnOrderStatusChanged(order *domain.Order, oldStatus, newStatus domain.OrderStatus, at int64)
}

// OrderPort is the async per-venue order routing contract (§4.6's "Order
// port"). Every method returns immediately; results surface through the
// registered OrderStatusListener.
type OrderPort interface {
	Venue() domain.Venue

	SubmitOrder(ctx context.Context, order *domain.Order) error
	CancelOrder(ctx context.Context, order *domain.Order) error
	ModifyOrder(ctx context.Context, order *domain.Order, newQuantity, newLimitPrice int64) error

	GetOrder(clientOrderID uint64) (*domain.Order, bool)
	GetOpenOrders(sym *domain.Symbol) []*domain.Order
	CancelAll(ctx context.Context, sym *domain.Symbol) error

	AddListener(l OrderStatusListener)
}
