// Package handlers implements the three pinned consumer stages that drain
// the event ring in order: OrderHandler, PositionHandler, MetricsHandler
// (§4.1, §5). Each stage owns exactly the state §5's shared-resource
// policy assigns it and never blocks on external I/O.
package handlers

import "github.com/lukmusial/tradecore/internal/ring"

// Handler processes one ring.EventSlot. It must be non-blocking and must
// never retain a pointer into slot past the call, since the ring reuses
// the backing array.
type Handler interface {
	Name() string
	Handle(slot *ring.EventSlot)
}
