package domain

// Quote is a poolable top-of-book snapshot for a symbol.
type Quote struct {
	Symbol         Symbol
	BidPrice       int64
	AskPrice       int64
	BidSize        int64
	AskSize        int64
	ReceivedAt     int64 // epoch-ns
	SequenceNumber uint64
	PriceScale     int64

	slot int
}

// Mid returns (bid+ask)/2.
func (q *Quote) Mid() int64 {
	return (q.BidPrice + q.AskPrice) / 2
}

// Spread returns ask-bid.
func (q *Quote) Spread() int64 {
	return q.AskPrice - q.BidPrice
}

// Reset clears the quote for reuse from a pool.
func (q *Quote) Reset() {
	slot := q.slot
	*q = Quote{slot: slot}
}

// SetSlot records the pool slot index. Used only by Pool[Quote].
func (q *Quote) SetSlot(i int) { q.slot = i }

// Slot returns the pool slot index, or -1 if not pool-owned.
func (q *Quote) Slot() int { return q.slot }

// Trade is an execution report for a client order.
type Trade struct {
	Symbol          Symbol
	Side            Side
	Quantity        int64
	Price           int64
	ClientOrderID   uint64
	ExchangeTradeID string
	ExecutedAt      int64 // epoch-ns
	Commission      int64
}
