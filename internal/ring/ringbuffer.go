package ring

import (
	"sync/atomic"
	"time"

	"github.com/lukmusial/tradecore/internal/domain"
)

// DefaultCapacity is the ring's default slot count (§4.1: power of two,
// default 65536).
const DefaultCapacity = 65536

// RingBuffer is the fixed-capacity array of reusable event slots shared by
// every producer and every consumer stage.
type RingBuffer struct {
	capacity uint64
	mask     uint64
	slots    []EventSlot

	cursor atomic.Uint64 // highest sequence claimed by any producer

	stages []*stageCursor // registered in consumer order, stage 0 runs first
}

// stageCursor is a consumer stage's "I have fully processed up to here"
// marker, read by the stage behind it (for ordering) and by the
// sequencer (for backpressure against the slowest stage).
type stageCursor struct {
	completed atomic.Uint64
}

// NewRingBuffer allocates a ring with the given capacity, which must be a
// power of two.
func NewRingBuffer(capacity uint64) *RingBuffer {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of two")
	}
	return &RingBuffer{
		capacity: capacity,
		mask:     capacity - 1,
		slots:    make([]EventSlot, capacity),
	}
}

// Capacity returns the ring's fixed slot count.
func (rb *RingBuffer) Capacity() uint64 { return rb.capacity }

// addStage registers a new terminal consumer stage and returns its
// cursor. Stages must be added in the order they consume the ring
// (OrderHandler, then PositionHandler, then MetricsHandler).
func (rb *RingBuffer) addStage() *stageCursor {
	sc := &stageCursor{}
	rb.stages = append(rb.stages, sc)
	return sc
}

// slowestCompleted returns the lowest completed-sequence cursor across
// every registered stage, or 0 if no stage has been registered yet. This
// is the sequence up to which the ring may safely be overwritten.
func (rb *RingBuffer) slowestCompleted() uint64 {
	if len(rb.stages) == 0 {
		return 0
	}
	min := rb.stages[0].completed.Load()
	for _, s := range rb.stages[1:] {
		if v := s.completed.Load(); v < min {
			min = v
		}
	}
	return min
}

// slotAt returns a pointer to the slot for sequence seq. Callers must
// only dereference it after confirming the slot's Sequence field equals
// seq (i.e. it has actually been published).
func (rb *RingBuffer) slotAt(seq uint64) *EventSlot {
	return &rb.slots[seq&rb.mask]
}

// claimTimeout bounds how long claim waits on a ring that stays full.
const claimTimeout = time.Second

// claim is used by the Sequencer to reserve the next write position; it
// never allocates. While the ring is full relative to the slowest stage it
// blocks (idling per wait) until a stage releases a slot, and returns
// domain.ErrBufferFull only if the ring stays full for claimTimeout.
func (rb *RingBuffer) claim(wait WaitStrategy) (uint64, error) {
	var deadline time.Time
	for spins := 0; ; spins++ {
		current := rb.cursor.Load()
		next := current + 1

		available := rb.slowestCompleted() + rb.capacity
		if next > available {
			if deadline.IsZero() {
				deadline = time.Now().Add(claimTimeout)
			} else if time.Now().After(deadline) {
				return 0, domain.ErrBufferFull
			}
			wait.Idle(spins)
			continue
		}
		if rb.cursor.CompareAndSwap(current, next) {
			return next, nil
		}
	}
}

// publish writes seq into the slot's Sequence field as a release barrier:
// every field the caller wrote to the slot before calling publish is
// guaranteed visible to any consumer stage that subsequently observes
// Sequence == seq.
func (rb *RingBuffer) publish(seq uint64) {
	atomic.StoreUint64(&rb.slots[seq&rb.mask].Sequence, seq)
}
