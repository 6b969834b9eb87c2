package engine

import (
	"context"
	"testing"
	"time"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/lukmusial/tradecore/internal/ports"
	"github.com/lukmusial/tradecore/internal/ring"
	"github.com/rs/zerolog"
)

// stubOrderPort is a minimal ports.OrderPort that lets a test drive
// OnOrderStatusChanged callbacks the way a real venue adapter would.
type stubOrderPort struct {
	venue     domain.Venue
	listeners []ports.OrderStatusListener
}

func (s *stubOrderPort) Venue() domain.Venue { return s.venue }
func (s *stubOrderPort) SubmitOrder(ctx context.Context, order *domain.Order) error { return nil }
func (s *stubOrderPort) CancelOrder(ctx context.Context, order *domain.Order) error { return nil }
func (s *stubOrderPort) ModifyOrder(ctx context.Context, order *domain.Order, newQuantity, newLimitPrice int64) error {
	return nil
}
func (s *stubOrderPort) GetOrder(clientOrderID uint64) (*domain.Order, bool) { return nil, false }
func (s *stubOrderPort) GetOpenOrders(sym *domain.Symbol) []*domain.Order    { return nil }
func (s *stubOrderPort) CancelAll(ctx context.Context, sym *domain.Symbol) error {
	return nil
}
func (s *stubOrderPort) AddListener(l ports.OrderStatusListener) {
	s.listeners = append(s.listeners, l)
}

func (s *stubOrderPort) notify(order *domain.Order, old, new domain.OrderStatus, at int64) {
	for _, l := range s.listeners {
		l.OnOrderStatusChanged(order, old, new, at)
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RingCapacity = 64
	cfg.WaitStrategy = ring.WaitBusySpin
	return cfg
}

func TestEngineSubmitOrderApprovedReachesOrderManager(t *testing.T) {
	e := New(testConfig(), zerolog.Nop())
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	o := &domain.Order{}
	o.Reset()
	o.Symbol = domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	o.Side = domain.SideBuy
	o.Quantity = 10
	o.LimitPrice = 15000

	if err := e.SubmitOrder(o); err != nil {
		t.Fatalf("expected approval, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok := e.orders.Get(o.ClientOrderID); ok && got.Status == domain.StatusSubmitted {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected order to reach SUBMITTED via the ring within the deadline")
}

func TestEngineSubmitOrderRejectedNeverReachesRing(t *testing.T) {
	cfg := testConfig()
	cfg.RiskLimits.MaxOrderSize = 1
	e := New(cfg, zerolog.Nop())
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	o := &domain.Order{}
	o.Reset()
	o.Symbol = domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	o.Side = domain.SideBuy
	o.Quantity = 100
	o.LimitPrice = 15000

	err := e.SubmitOrder(o)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if o.Status != domain.StatusRejected {
		t.Fatalf("status = %s, want REJECTED", o.Status)
	}
	if _, ok := e.orders.Get(o.ClientOrderID); ok {
		t.Fatal("a rejected order must never be registered with the order manager")
	}
}

func TestEngineValidationRejectsNonPositiveQuantity(t *testing.T) {
	e := New(testConfig(), zerolog.Nop())
	o := &domain.Order{}
	o.Reset()
	o.Symbol = domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	o.Quantity = 0

	err := e.SubmitOrder(o)
	if err == nil {
		t.Fatal("expected a validation error for zero quantity")
	}
	if _, ok := err.(*domain.ValidationError); !ok {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
}

func TestEngineVenueCallbacksReenterTheRing(t *testing.T) {
	port := &stubOrderPort{venue: domain.VenueNASDAQ}
	cfg := testConfig()
	cfg.OrderPorts[domain.VenueNASDAQ] = port

	e := New(cfg, zerolog.Nop())
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	o := &domain.Order{}
	o.Reset()
	o.Symbol = domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	o.Side = domain.SideBuy
	o.Quantity = 10
	o.LimitPrice = 15000

	if err := e.SubmitOrder(o); err != nil {
		t.Fatalf("expected approval, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok := e.orders.Get(o.ClientOrderID); ok && got.Status == domain.StatusSubmitted {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// Simulate the venue adapter acknowledging, then fully filling, the
	// order asynchronously. Nothing here calls e.seq.Publish directly: the
	// whole point is that the listener bridge does it.
	o.VenueOrderID = "NASDAQ-1"
	port.notify(o, domain.StatusSubmitted, domain.StatusAccepted, domain.EpochNow())

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok := e.orders.Get(o.ClientOrderID); ok && got.Status == domain.StatusAccepted {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if got, ok := e.orders.Get(o.ClientOrderID); !ok || got.Status != domain.StatusAccepted {
		t.Fatalf("expected order ACCEPTED after venue callback, got %+v", got)
	}

	// The adapter reports the fill on its own copy of the order, so the
	// manager's order only reaches FILLED through the ring.
	venueView := *o
	venueView.FilledQuantity = 10
	venueView.AvgFillPrice = 15000
	venueView.Status = domain.StatusFilled
	port.notify(&venueView, domain.StatusAccepted, domain.StatusFilled, domain.EpochNow())

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok := e.orders.Get(o.ClientOrderID); ok && got.Status == domain.StatusFilled {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected order FILLED after venue fill callback re-entered the ring")
}

func TestEngineStatusReportsUptimeWhileRunning(t *testing.T) {
	e := New(testConfig(), zerolog.Nop())
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	time.Sleep(5 * time.Millisecond)
	status := e.Status()
	if !status.Running {
		t.Fatal("expected Running=true after Start")
	}
	if status.UptimeMillis < 0 {
		t.Fatal("expected non-negative uptime")
	}
}
