package ordermanager

import (
	"testing"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/rs/zerolog"
)

func newTestOrder() *domain.Order {
	o := &domain.Order{}
	o.Reset()
	o.Symbol = domain.NewSymbol("AAPL", domain.VenueNASDAQ)
	o.Side = domain.SideBuy
	o.Quantity = 100
	o.Status = domain.StatusPending
	return o
}

func TestOrderLifecycleHappyPath(t *testing.T) {
	mgr := New(zerolog.Nop())
	o := newTestOrder()
	mgr.Register(o)

	if err := mgr.Submit(o.ClientOrderID, 1); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Accept(o.ClientOrderID, "venue-1", 2); err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", o.Status)
	}

	if err := mgr.Fill(o.ClientOrderID, 40, 15000, 3); err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusPartiallyFilled {
		t.Fatalf("status = %s, want PARTIALLY_FILLED", o.Status)
	}
	if o.FilledQuantity != 40 {
		t.Fatalf("filled qty = %d, want 40", o.FilledQuantity)
	}

	if err := mgr.Fill(o.ClientOrderID, 60, 15100, 4); err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusFilled {
		t.Fatalf("status = %s, want FILLED", o.Status)
	}
	if o.FilledQuantity != o.Quantity {
		t.Fatalf("filled qty = %d, want %d", o.FilledQuantity, o.Quantity)
	}

	wantAvg := (40*int64(15000) + 60*int64(15100)) / 100
	if o.AvgFillPrice != wantAvg {
		t.Fatalf("avg fill price = %d, want %d", o.AvgFillPrice, wantAvg)
	}
}

func TestInvalidTransitionIsIgnored(t *testing.T) {
	mgr := New(zerolog.Nop())
	o := newTestOrder()
	mgr.Register(o)

	// PENDING -> ACCEPTED is not in the allowed table: must be ignored.
	if err := mgr.Accept(o.ClientOrderID, "venue-1", 1); err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusPending {
		t.Fatalf("status = %s, want it to remain PENDING", o.Status)
	}
}

func TestCancelAfterTerminalIsIgnored(t *testing.T) {
	mgr := New(zerolog.Nop())
	o := newTestOrder()
	mgr.Register(o)
	mgr.Submit(o.ClientOrderID, 1)
	mgr.Accept(o.ClientOrderID, "venue-1", 2)
	mgr.Fill(o.ClientOrderID, 100, 15000, 3)

	if o.Status != domain.StatusFilled {
		t.Fatalf("precondition: status = %s, want FILLED", o.Status)
	}

	if err := mgr.Cancel(o.ClientOrderID, 4); err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusFilled {
		t.Fatalf("a cancel-ack on a terminal order must not change status, got %s", o.Status)
	}
}

func TestListenerFanOut(t *testing.T) {
	mgr := New(zerolog.Nop())
	var transitions []domain.OrderStatus
	mgr.AddListener(ListenerFunc(func(order *domain.Order, old, new domain.OrderStatus, at int64) {
		transitions = append(transitions, new)
	}))

	o := newTestOrder()
	mgr.Register(o)
	mgr.Submit(o.ClientOrderID, 1)
	mgr.Accept(o.ClientOrderID, "v1", 2)
	mgr.Reject(o.ClientOrderID, "ignored: already accepted", 3)

	if len(transitions) != 2 {
		t.Fatalf("got %d transitions, want 2 (reject after accept should be ignored)", len(transitions))
	}
	if transitions[0] != domain.StatusSubmitted || transitions[1] != domain.StatusAccepted {
		t.Fatalf("unexpected transition sequence: %v", transitions)
	}
}
