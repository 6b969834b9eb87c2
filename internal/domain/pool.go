package domain

import "sync/atomic"

// Poolable is implemented by pool-managed types (Order, Quote). Reset
// clears every field on reacquisition; SetSlot/Slot let the pool track
// which backing slice index a live value is borrowed from without an
// extra side map.
type Poolable interface {
	Reset()
	SetSlot(int)
	Slot() int
}

// Pool is a fixed-capacity, lock-free object pool of a Poolable type,
// backed by a preallocated slice of slots and a Treiber stack of free
// indices. It trades unbounded growth for zero steady-state allocation,
// the same tradeoff the ring buffer makes for event slots (see
// SPEC_FULL.md §9, "pooled mutable Order/Quote").
//
// A double-release is tolerated without corruption: Release pushes the
// slot index back onto the free stack whenever the stack has room (and
// drops it when the stack is already full), so releasing twice at most
// makes the same slot available for Acquire twice before it is reused —
// it does not corrupt other slots. Detecting the double-release
// itself is a debug-build concern the core does not implement.
type Pool[T Poolable] struct {
	slots     []T
	free      []int32 // Treiber stack payload, indices into slots
	top       atomic.Int64
	exhausted atomic.Int64 // count of Acquire calls that fell back to fresh allocation
	newFunc   func() T
}

// NewPool preallocates capacity slots, each produced by newFunc, and
// fills the free stack with every index.
func NewPool[T Poolable](capacity int, newFunc func() T) *Pool[T] {
	p := &Pool[T]{
		slots:   make([]T, capacity),
		free:    make([]int32, capacity),
		newFunc: newFunc,
	}
	for i := 0; i < capacity; i++ {
		v := newFunc()
		v.SetSlot(i)
		p.slots[i] = v
		p.free[i] = int32(i)
	}
	p.top.Store(int64(capacity))
	return p
}

// Acquire pops a free slot and resets it. If the pool is exhausted it
// falls back to a fresh, non-pool-owned allocation (Slot() == -1) and
// bumps the exhaustion counter rather than blocking a producer.
func (p *Pool[T]) Acquire() T {
	for {
		top := p.top.Load()
		if top == 0 {
			p.exhausted.Add(1)
			v := p.newFunc()
			v.SetSlot(-1)
			v.Reset()
			return v
		}
		if p.top.CompareAndSwap(top, top-1) {
			idx := p.free[top-1]
			v := p.slots[idx]
			v.Reset()
			return v
		}
	}
}

// Release returns a pool-owned value to the free stack. Values acquired
// via the exhaustion fallback (Slot() == -1) are simply dropped for the
// garbage collector, since they were never part of the backing slice.
func (p *Pool[T]) Release(v T) {
	slot := v.Slot()
	if slot < 0 {
		return
	}
	for {
		top := p.top.Load()
		if int(top) >= len(p.free) {
			return // should not happen: more releases than capacity
		}
		if p.top.CompareAndSwap(top, top+1) {
			p.free[top] = int32(slot)
			return
		}
	}
}

// Exhausted returns how many times Acquire fell back to a fresh
// allocation because the pool was empty.
func (p *Pool[T]) Exhausted() int64 {
	return p.exhausted.Load()
}

// Capacity returns the pool's fixed slot count.
func (p *Pool[T]) Capacity() int {
	return len(p.slots)
}
