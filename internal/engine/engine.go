// Package engine wires the ring, the three handler stages, the order
// manager, the position book, the risk engine, and the strategy runtime
// into the single runnable aggregate external callers talk to (§4, §5).
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/lukmusial/tradecore/internal/handlers"
	"github.com/lukmusial/tradecore/internal/metrics"
	"github.com/lukmusial/tradecore/internal/ordermanager"
	"github.com/lukmusial/tradecore/internal/persistence"
	"github.com/lukmusial/tradecore/internal/position"
	"github.com/lukmusial/tradecore/internal/ring"
	"github.com/lukmusial/tradecore/internal/risk"
	"github.com/lukmusial/tradecore/internal/strategy"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Engine is the top-level aggregate: construct with New, then Start it.
type Engine struct {
	cfg Config
	log zerolog.Logger

	rb    *ring.RingBuffer
	seq   *ring.Sequencer
	chain *handlers.Chain

	orders      *ordermanager.Manager
	positions   *position.Manager
	risk        *risk.Engine
	strategies  *strategy.Runtime
	stratCtx    *strategyContext
	metricsData *metrics.OrderMetrics

	mu          sync.Mutex
	running     bool
	startTimeMs int64
	cancelRun   context.CancelFunc
	group       *errgroup.Group

	// lastFilledQty tracks the last cumulative FilledQuantity published for
	// a client order id, so an OnOrderStatusChanged callback (which only
	// exposes the order's cumulative fill state) can be diffed down to the
	// incremental ORDER_FILLED payload the ring expects.
	lastFilledQty sync.Map // uint64 -> int64
}

// New constructs an Engine from cfg. It does not start any goroutines;
// call Start for that.
func New(cfg Config, log zerolog.Logger) *Engine {
	log = log.With().Str("component", "engine").Logger()

	rb := ring.NewRingBuffer(uint64(cfg.RingCapacity))
	wait := ring.NewWaitStrategy(cfg.WaitStrategy)
	stages := ring.NewChain(rb, wait, 3)
	seq := ring.NewSequencer(rb, wait)

	orders := ordermanager.New(log)
	positions := position.New(log)
	riskEngine := risk.NewEngine(cfg.RiskLimits, positions, risk.DefaultRules(), log)
	strategies := strategy.New(log)
	metricsData := metrics.NewOrderMetrics()

	e := &Engine{
		cfg:         cfg,
		log:         log,
		rb:          rb,
		seq:         seq,
		orders:      orders,
		positions:   positions,
		risk:        riskEngine,
		strategies:  strategies,
		metricsData: metricsData,
	}
	e.stratCtx = newStrategyContext(strategies, e.submitIntent)

	orderHandler := handlers.NewOrderHandler(orders, cfg.OrderPorts, e.stratCtx, e.risk, log)
	positionHandler := handlers.NewPositionHandler(positions, log)
	metricsHandler := handlers.NewMetricsHandler(metricsData)
	e.chain = handlers.NewChain(stages, []handlers.Handler{orderHandler, positionHandler, metricsHandler}, log)

	if cfg.AuditLog != nil {
		orders.AddListener(ordermanager.ListenerFunc(func(o *domain.Order, old, new domain.OrderStatus, at int64) {
			if new == domain.StatusRejected {
				cfg.AuditLog.Record(persistence.AuditEntry{
					EpochNs:  domain.EpochNow(),
					Severity: persistence.AuditWarn,
					Type:     "order_rejected",
					Message:  o.RejectReason,
					Details:  map[string]string{"client_order_id": fmt.Sprintf("%d", o.ClientOrderID)},
				})
			}
		}))
	}

	for _, port := range cfg.OrderPorts {
		port.AddListener(e)
	}

	return e
}

// Start launches the handler-chain goroutines (one per stage, on the
// chain's conc.WaitGroup) and creates an errgroup tied to an internal
// context that Shutdown waits on. No goroutine is added to the errgroup; a
// panic in a stage is re-raised by the chain's Stop during Shutdown.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, _ := errgroup.WithContext(runCtx)
	e.cancelRun = cancel
	e.group = g

	e.chain.Start()
	e.running = true
	e.startTimeMs = domain.EpochNow() / int64(time.Millisecond)
	e.log.Info().Msg("engine started")
	return nil
}

// Shutdown stops every handler stage and waits for them to drain,
// returning the first error observed (if any).
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return nil
	}
	e.chain.Stop()
	if e.cancelRun != nil {
		e.cancelRun()
	}
	var err error
	if e.group != nil {
		err = e.group.Wait()
	}
	e.running = false
	e.log.Info().Msg("engine stopped")
	return err
}

// RegisterStrategy adds s to the strategy runtime.
func (e *Engine) RegisterStrategy(s strategy.Strategy) {
	e.strategies.Register(s)
}

// SetVolumeProfile registers a static historical-volume bucket profile that
// strategies can read through Context.HistoricalVolume. The VWAP strategy
// in this module takes its profile from VWAPParams.VolumeProfile and does
// not read this one.
func (e *Engine) SetVolumeProfile(sym domain.Symbol, profile []int64) {
	e.stratCtx.SetVolumeProfile(sym, profile)
}

// StrategyRuntime exposes the strategy registry for lifecycle control
// (Start/Pause/Stop by id).
func (e *Engine) StrategyRuntime() *strategy.Runtime { return e.strategies }

// Positions exposes the position book for external read-only snapshot
// queries.
func (e *Engine) Positions() *position.Manager { return e.positions }

// RiskEngine exposes the risk engine for inspection (e.g. breaker state).
func (e *Engine) RiskEngine() *risk.Engine { return e.risk }

// Metrics exposes the shared OrderMetrics for external readers.
func (e *Engine) Metrics() *metrics.OrderMetrics { return e.metricsData }

// SubmitOrder runs the synchronous risk-checked submission path for an
// externally originated order: validate, risk-check, register, persist,
// publish NEW_ORDER. Rejected orders never reach the ring (§4.6's data
// flow).
func (e *Engine) SubmitOrder(o *domain.Order) error {
	if o.Quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if o.Symbol.Ticker == "" {
		return &domain.ValidationError{Field: "symbol", Reason: "must be set"}
	}

	nowMs := domain.EpochNow() / int64(time.Millisecond)
	decision := e.risk.Check(o, nowMs)
	if !decision.Approved {
		o.Status = domain.StatusRejected
		o.RejectReason = decision.Rejection.Error()
		if e.cfg.AuditLog != nil {
			e.cfg.AuditLog.Record(persistence.AuditEntry{
				EpochNs:  domain.EpochNow(),
				Severity: persistence.AuditInfo,
				Type:     "risk_rejection",
				Message:  decision.Rejection.Reason,
				Details:  map[string]string{"rule": decision.Rejection.RuleName},
			})
		}
		return decision.Rejection
	}

	e.orders.Register(o)
	if e.cfg.OrderRepo != nil {
		if uerr := e.cfg.OrderRepo.Upsert(o); uerr != nil {
			e.log.Warn().Err(uerr).Msg("order repository upsert failed")
		}
	}

	_, err := e.seq.Publish(func(slot *ring.EventSlot) {
		slot.Type = ring.EventNewOrder
		slot.ClientOrderID = o.ClientOrderID
		slot.Symbol = o.Symbol
		slot.Side = o.Side
		slot.OrderType = o.Type
		slot.TIF = o.TIF
		slot.LimitPrice = o.LimitPrice
		slot.StopPrice = o.StopPrice
		slot.Quantity = o.Quantity
		slot.StrategyID = o.StrategyID
		slot.PriceScale = o.PriceScale
		slot.Timestamp = domain.EpochNow()
	})
	return err
}

// submitIntent adapts a strategy.OrderIntent into a domain.Order and runs
// it through SubmitOrder, the function strategyContext.SubmitOrder closes
// over.
func (e *Engine) submitIntent(intent strategy.OrderIntent) error {
	o := &domain.Order{}
	o.Reset()
	o.Symbol = intent.Symbol
	o.Side = intent.Side
	o.Quantity = intent.Quantity
	o.Type = intent.Type
	o.LimitPrice = intent.LimitPrice
	o.StrategyID = intent.StrategyID
	return e.SubmitOrder(o)
}

// CancelOrder publishes a CANCEL_ORDER event for clientOrderID.
func (e *Engine) CancelOrder(clientOrderID uint64) error {
	o, ok := e.orders.Get(clientOrderID)
	if !ok {
		return ordermanager.ErrUnknownOrder
	}
	_, err := e.seq.Publish(func(slot *ring.EventSlot) {
		slot.Type = ring.EventCancelOrder
		slot.ClientOrderID = o.ClientOrderID
		slot.Symbol = o.Symbol
		slot.Timestamp = domain.EpochNow()
	})
	return err
}

// IngestQuote publishes a QUOTE_UPDATE event for a top-of-book update.
// Quote timestamps must be epoch-ns and scale must match the symbol's
// priceScale (§6).
func (e *Engine) IngestQuote(q domain.Quote) error {
	_, err := e.seq.Publish(func(slot *ring.EventSlot) {
		slot.Type = ring.EventQuoteUpdate
		slot.Symbol = q.Symbol
		slot.BidPrice = q.BidPrice
		slot.AskPrice = q.AskPrice
		slot.BidSize = q.BidSize
		slot.AskSize = q.AskSize
		slot.PriceScale = q.PriceScale
		slot.Timestamp = q.ReceivedAt
	})
	return err
}

// IngestTrade publishes a TRADE_UPDATE event for an executed-trade print.
func (e *Engine) IngestTrade(t domain.Trade) error {
	_, err := e.seq.Publish(func(slot *ring.EventSlot) {
		slot.Type = ring.EventTradeUpdate
		slot.Symbol = t.Symbol
		slot.TradeSide = t.Side
		slot.FillPrice = t.Price
		slot.Quantity = t.Quantity
		slot.Timestamp = t.ExecutedAt
	})
	if err == nil && e.cfg.Journal != nil {
		if jerr := e.cfg.Journal.Record(t); jerr != nil {
			e.log.Warn().Err(jerr).Msg("trade journal record failed")
		}
	}
	return err
}

// OnOrderStatusChanged implements ports.OrderStatusListener. Every venue
// port registered in Config.OrderPorts is handed this Engine as its
// listener, so an adapter's asynchronous accept/fill/reject/cancel
// callback re-enters the ring exactly as a synchronously originated event
// would (§2, §6).
func (e *Engine) OnOrderStatusChanged(order *domain.Order, oldStatus, newStatus domain.OrderStatus, at int64) {
	switch newStatus {
	case domain.StatusAccepted:
		e.publishVenueAccepted(order, at)
	case domain.StatusRejected:
		e.publishVenueRejected(order, at)
	case domain.StatusCancelled:
		e.publishVenueCancelled(order, at)
	case domain.StatusPartiallyFilled, domain.StatusFilled:
		e.publishVenueFill(order, at)
	}
}

func (e *Engine) publishVenueAccepted(order *domain.Order, at int64) {
	_, err := e.seq.Publish(func(slot *ring.EventSlot) {
		slot.Type = ring.EventOrderAccepted
		slot.ClientOrderID = order.ClientOrderID
		slot.VenueOrderID = order.VenueOrderID
		slot.Symbol = order.Symbol
		slot.Timestamp = at
	})
	if err != nil {
		e.log.Warn().Err(err).Uint64("client_order_id", order.ClientOrderID).Msg("publish venue accept failed")
	}
}

func (e *Engine) publishVenueRejected(order *domain.Order, at int64) {
	_, err := e.seq.Publish(func(slot *ring.EventSlot) {
		slot.Type = ring.EventOrderRejected
		slot.ClientOrderID = order.ClientOrderID
		slot.Symbol = order.Symbol
		slot.RejectReason = order.RejectReason
		slot.Timestamp = at
	})
	if err != nil {
		e.log.Warn().Err(err).Uint64("client_order_id", order.ClientOrderID).Msg("publish venue reject failed")
	}
	e.lastFilledQty.Delete(order.ClientOrderID)
}

func (e *Engine) publishVenueCancelled(order *domain.Order, at int64) {
	_, err := e.seq.Publish(func(slot *ring.EventSlot) {
		slot.Type = ring.EventOrderCancelled
		slot.ClientOrderID = order.ClientOrderID
		slot.Symbol = order.Symbol
		slot.Timestamp = at
	})
	if err != nil {
		e.log.Warn().Err(err).Uint64("client_order_id", order.ClientOrderID).Msg("publish venue cancel failed")
	}
	e.lastFilledQty.Delete(order.ClientOrderID)
}

// publishVenueFill diffs the callback's cumulative FilledQuantity against
// the last value published for this order to recover the incremental fill
// the ring expects. AvgFillPrice is the best available per-fill price
// proxy: OnOrderStatusChanged only carries cumulative state, not the
// discrete execution price of this fill.
func (e *Engine) publishVenueFill(order *domain.Order, at int64) {
	prev := int64(0)
	if v, ok := e.lastFilledQty.Load(order.ClientOrderID); ok {
		prev = v.(int64)
	}
	fillQty := order.FilledQuantity - prev
	if fillQty <= 0 {
		return
	}
	e.lastFilledQty.Store(order.ClientOrderID, order.FilledQuantity)

	_, err := e.seq.Publish(func(slot *ring.EventSlot) {
		slot.Type = ring.EventOrderFilled
		slot.ClientOrderID = order.ClientOrderID
		slot.Symbol = order.Symbol
		slot.Side = order.Side
		slot.FillQuantity = fillQty
		slot.FillPrice = order.AvgFillPrice
		slot.PriceScale = order.PriceScale
		slot.Timestamp = at
	})
	if err != nil {
		e.log.Warn().Err(err).Uint64("client_order_id", order.ClientOrderID).Msg("publish venue fill failed")
	}
	if order.IsFilled() {
		e.lastFilledQty.Delete(order.ClientOrderID)
	}
}

// Disable trips the risk engine's circuit breaker permanently open,
// reserved for an invariant-violation handler (§7's "Fatal" category).
func (e *Engine) Disable(reason string) {
	nowMs := domain.EpochNow() / int64(time.Millisecond)
	e.risk.Disable(reason, nowMs)
	if e.cfg.AuditLog != nil {
		e.cfg.AuditLog.Record(persistence.AuditEntry{
			EpochNs:  domain.EpochNow(),
			Severity: persistence.AuditError,
			Type:     "invariant_violation",
			Message:  reason,
		})
	}
}

// Status is the engine's externally observable health snapshot (§9's
// Open Question resolution: a fuller shape carrying both a wall-clock
// start time and a derived uptime rather than just a boolean).
type Status struct {
	Running         bool
	StartTimeMillis int64
	UptimeMillis    int64
	OpenOrders      int64
	BreakerState    string
}

// Status reports the engine's current health.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	var uptime int64
	if e.running {
		uptime = domain.EpochNow()/int64(time.Millisecond) - e.startTimeMs
	}
	return Status{
		Running:         e.running,
		StartTimeMillis: e.startTimeMs,
		UptimeMillis:    uptime,
		OpenOrders:      e.metricsData.OpenOrders.Value(),
		BreakerState:    e.risk.BreakerState().String(),
	}
}
