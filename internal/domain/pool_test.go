package domain

import "testing"

func TestPoolAcquireReleaseReusesSlots(t *testing.T) {
	pool := NewPool[*Order](4, func() *Order { return &Order{} })

	a := pool.Acquire()
	id := a.ClientOrderID
	pool.Release(a)

	b := pool.Acquire()
	if b.Slot() != a.Slot() {
		t.Fatalf("expected slot reuse, got different slots %d vs %d", a.Slot(), b.Slot())
	}
	if b.ClientOrderID == id {
		t.Fatalf("expected fresh client order id on reacquire, got same id %d", id)
	}
}

func TestPoolExhaustionFallsBackToFreshAllocation(t *testing.T) {
	pool := NewPool[*Order](1, func() *Order { return &Order{} })

	a := pool.Acquire()
	b := pool.Acquire() // pool empty, should fall back
	if b.Slot() != -1 {
		t.Fatalf("expected fallback allocation to have slot -1, got %d", b.Slot())
	}
	if pool.Exhausted() != 1 {
		t.Fatalf("exhausted counter = %d, want 1", pool.Exhausted())
	}
	pool.Release(a)
	pool.Release(b) // no-op, not pool-owned
}

func TestPoolDoubleReleaseDoesNotCorrupt(t *testing.T) {
	pool := NewPool[*Order](2, func() *Order { return &Order{} })

	a := pool.Acquire()
	pool.Release(a)
	pool.Release(a) // double release: tolerated, does not panic or corrupt

	b := pool.Acquire()
	c := pool.Acquire()
	if b == nil || c == nil {
		t.Fatal("expected two acquisitions to succeed after double release")
	}
}
