// Package ring implements the single multi-producer / multi-consumer-stage
// event ring the rest of the engine is built around: a fixed-capacity,
// power-of-two array of reusable event slots, claimed by producers via
// atomic CAS and drained by a fixed chain of sequential consumer stages.
//
// Generalized from the teacher's single-consumer LMAX-style disruptor
// (internal/disruptor in the example pack) to the staged chain §4.1
// requires: each consumer stage tracks its own completed-sequence cursor,
// and stage N+1 only advances past a sequence once stage N has released
// it. The ring's own backpressure gate watches the slowest stage, exactly
// as the teacher's single gatingSequence watched its one consumer.
package ring

import "github.com/lukmusial/tradecore/internal/domain"

// EventType tags which variant of the union a slot currently holds.
type EventType uint8

const (
	EventNewOrder EventType = iota
	EventCancelOrder
	EventOrderAccepted
	EventOrderRejected
	EventOrderFilled
	EventOrderCancelled
	EventQuoteUpdate
	EventTradeUpdate
	EventHeartbeat
	EventShutdown
)

func (t EventType) String() string {
	switch t {
	case EventNewOrder:
		return "NEW_ORDER"
	case EventCancelOrder:
		return "CANCEL_ORDER"
	case EventOrderAccepted:
		return "ORDER_ACCEPTED"
	case EventOrderRejected:
		return "ORDER_REJECTED"
	case EventOrderFilled:
		return "ORDER_FILLED"
	case EventOrderCancelled:
		return "ORDER_CANCELLED"
	case EventQuoteUpdate:
		return "QUOTE_UPDATE"
	case EventTradeUpdate:
		return "TRADE_UPDATE"
	case EventHeartbeat:
		return "HEARTBEAT"
	case EventShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// EventSlot is a tagged union over every event kind the pipeline carries.
// It stores value copies of the relevant fields only — never a pointer
// into a pool-owned Order or Quote — so a producer may release its pool
// object immediately after Publish. A slot's previous contents are
// overwritten wholesale on each claim, which is what keeps the ring's
// steady state allocation-free.
type EventSlot struct {
	Sequence uint64 // set last, by Publish; 0 means "not yet published"
	Type     EventType

	// Order identity, shared by every order-lifecycle event.
	ClientOrderID uint64
	VenueOrderID  string
	Symbol        domain.Symbol
	StrategyID    string

	// NEW_ORDER / CANCEL_ORDER payload.
	Side       domain.Side
	OrderType  domain.OrderType
	TIF        domain.TimeInForce
	LimitPrice int64
	StopPrice  int64
	Quantity   int64

	// Status-change payload (ACCEPTED/REJECTED/CANCELLED).
	OldStatus    domain.OrderStatus
	NewStatus    domain.OrderStatus
	RejectReason string

	// ORDER_FILLED payload.
	FillQuantity    int64
	FillPrice       int64
	ExchangeTradeID string
	Commission      int64

	// QUOTE_UPDATE / TRADE_UPDATE payload.
	BidPrice  int64
	AskPrice  int64
	BidSize   int64
	AskSize   int64
	TradeSide domain.Side

	PriceScale int64

	// Timestamps: Timestamp is epoch-ns (externally observable, e.g. an
	// exchange ack or a quote's receipt time). ClaimedAtMono is the
	// monotonic-ns time the producer claimed this slot, used by
	// MetricsHandler for pipeline-internal latency, never serialized.
	Timestamp     int64
	ClaimedAtMono int64
}

// reset clears a slot ahead of being claimed for a new event. The ring
// calls this internally; handlers never need to.
func (e *EventSlot) reset() {
	seq := e.Sequence
	*e = EventSlot{Sequence: seq}
}
