package metrics

// OrderMetrics aggregates the counters and latency histograms the
// MetricsHandler stage updates from ring events (§5's shared-resource
// policy: writable only from handler stages). PoolExhaustions and
// FillLatency are not written by any handler in this module.
type OrderMetrics struct {
	OrdersSubmitted  Counter
	OrdersAccepted   Counter
	OrdersRejected   Counter
	OrdersCancelled  Counter
	OrdersFilled     Counter
	FillCount        Counter
	PoolExhaustions  Counter

	OpenOrders Gauge

	// SubmitToAcceptLatency records, for each ORDER_ACCEPTED event, the
	// monotonic nanoseconds from the producer's claim of its slot
	// (ClaimedAtMono) to MetricsHandler processing it: the ring-internal
	// portion of order latency.
	SubmitToAcceptLatency *Histogram
	// FillLatency is the histogram for ACCEPTED-to-first-fill latency in
	// nanoseconds; no handler in this module records into it.
	FillLatency *Histogram
}

// NewOrderMetrics builds an OrderMetrics with default latency histograms.
func NewOrderMetrics() *OrderMetrics {
	return &OrderMetrics{
		SubmitToAcceptLatency: DefaultLatencyHistogram(),
		FillLatency:           DefaultLatencyHistogram(),
	}
}
