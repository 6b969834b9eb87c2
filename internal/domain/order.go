package domain

import (
	"fmt"
	"sync/atomic"
)

// Side is the side of an order or fill.
type Side int8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType is the execution semantics requested for an order.
type OrderType int8

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStop
	OrderTypeStopLimit
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStop:
		return "STOP"
	case OrderTypeStopLimit:
		return "STOP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// TimeInForce controls how long an order remains eligible to trade.
type TimeInForce int8

const (
	TIFDay TimeInForce = iota
	TIFGTC
	TIFIOC
	TIFFOK
)

func (f TimeInForce) String() string {
	switch f {
	case TIFDay:
		return "DAY"
	case TIFGTC:
		return "GTC"
	case TIFIOC:
		return "IOC"
	case TIFFOK:
		return "FOK"
	default:
		return "UNKNOWN"
	}
}

// OrderStatus is the current lifecycle state of an order. Transitions are
// constrained; see ordermanager for the state machine that enforces them.
type OrderStatus int8

const (
	StatusPending OrderStatus = iota
	StatusSubmitted
	StatusAccepted
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
	StatusRejected
	StatusExpired
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusRejected:
		return "REJECTED"
	case StatusExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether an order can never change status again.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusCancelled, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// IsActive reports whether an order is still live in the market.
func (s OrderStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusAccepted, StatusPartiallyFilled:
		return true
	default:
		return false
	}
}

var clientOrderSeq uint64

// NextClientOrderID assigns the next monotonically increasing client order
// id. It is safe to call from multiple producer goroutines concurrently.
func NextClientOrderID() uint64 {
	return atomic.AddUint64(&clientOrderSeq, 1)
}

// Order is a mutable, poolable order. Fields not yet set at a given point
// in the lifecycle hold their zero value. Order is exclusively owned by
// whoever currently holds it: the submitter until publish, the ring slot
// copy thereafter, the order manager for the order's resident lifetime.
type Order struct {
	ClientOrderID uint64
	VenueOrderID  string

	Symbol Symbol
	Side   Side
	Type   OrderType
	TIF    TimeInForce

	LimitPrice int64
	StopPrice  int64
	Quantity   int64
	PriceScale int64

	FilledQuantity int64
	AvgFillPrice   int64

	Status       OrderStatus
	RejectReason string
	StrategyID   string

	// CreatedAt is monotonic-ns, set once at allocation (Reset). The rest
	// are epoch-ns, stamped from the ring event that drove the
	// corresponding transition (§3: the two clocks must never be mixed,
	// so CreatedAt is never compared against these directly).
	CreatedAt   int64
	UpdatedAt   int64
	SubmittedAt int64
	AcceptedAt  int64
	FirstFillAt int64

	slot int // pool slot index; -1 if not pool-owned
}

// RemainingQuantity returns the quantity not yet filled.
func (o *Order) RemainingQuantity() int64 {
	return o.Quantity - o.FilledQuantity
}

// IsFilled reports whether the order has reached its full quantity.
func (o *Order) IsFilled() bool {
	return o.FilledQuantity >= o.Quantity
}

// Reset clears every field and assigns a fresh client order id, as
// required when an Order is returned to and reacquired from a pool.
func (o *Order) Reset() {
	slot := o.slot
	*o = Order{slot: slot}
	o.ClientOrderID = NextClientOrderID()
	o.CreatedAt = MonotonicNow()
}

// SetSlot records the pool slot index backing this order. Used only by
// Pool[Order]; never call this directly.
func (o *Order) SetSlot(i int) { o.slot = i }

// Slot returns the pool slot index backing this order, or -1 if the order
// was allocated outside a pool.
func (o *Order) Slot() int { return o.slot }

func (o *Order) String() string {
	return fmt.Sprintf("Order{id:%d venue:%s %s %s %d@%d filled:%d status:%s}",
		o.ClientOrderID, o.VenueOrderID, o.Side, o.Symbol, o.Quantity, o.LimitPrice, o.FilledQuantity, o.Status)
}

// ApplyFill folds a single execution into the order: updates the
// volume-weighted average fill price over all fills, increments filled
// quantity, and advances status to FILLED or PARTIALLY_FILLED. It is the
// caller's responsibility (ordermanager) to enforce that fillQty never
// pushes FilledQuantity past Quantity.
func (o *Order) ApplyFill(fillQty, fillPrice int64, at int64) {
	if o.FilledQuantity == 0 {
		o.FirstFillAt = at
	}
	totalNotional := Notional(o.FilledQuantity, o.AvgFillPrice) + Notional(fillQty, fillPrice)
	o.FilledQuantity += fillQty
	if o.FilledQuantity > 0 {
		o.AvgFillPrice = totalNotional / o.FilledQuantity
	}
	o.UpdatedAt = at
	if o.IsFilled() {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
}
