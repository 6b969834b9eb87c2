package ring

import "sync/atomic"

// Stage is one consumer's handle on the ring: it walks sequences strictly
// in order, waiting for both the slot to be published and (for every
// stage but the first) the previous stage to have completed that same
// sequence. This is what makes "stage N+1 observes slot S only after
// stage N has released it" (§4.1) hold without any lock.
type Stage struct {
	rb       *RingBuffer
	cursor   *stageCursor
	prev     *stageCursor // nil for the first stage in the chain
	wait     WaitStrategy
	next     uint64 // next sequence this stage expects to consume
	shutdown atomic.Bool
}

// NewChain builds the ordered slice of Stage handles for a ring, one per
// stageCount consumer, each gated on the one before it. Call order
// matters: the first element is the head of the chain (e.g. OrderHandler)
// and each subsequent element trails the one before it.
func NewChain(rb *RingBuffer, wait WaitStrategy, stageCount int) []*Stage {
	stages := make([]*Stage, stageCount)
	var prev *stageCursor
	for i := 0; i < stageCount; i++ {
		cur := rb.addStage()
		stages[i] = &Stage{rb: rb, cursor: cur, prev: prev, wait: wait, next: 1}
		prev = cur
	}
	return stages
}

// Next blocks (per the stage's WaitStrategy) until sequence s.next is
// both published and, for non-head stages, released by the stage ahead of
// it. It returns the slot and the sequence number, or ok=false if Stop
// was called while waiting.
func (s *Stage) Next() (slot *EventSlot, sequence uint64, ok bool) {
	seq := s.next
	slot = s.rb.slotAt(seq)

	for iteration := 0; ; iteration++ {
		if s.shutdown.Load() {
			return nil, 0, false
		}
		published := atomic.LoadUint64(&slot.Sequence) == seq
		gated := s.prev == nil || s.prev.completed.Load() >= seq
		if published && gated {
			break
		}
		s.wait.Idle(iteration)
	}
	return slot, seq, true
}

// Release marks sequence as fully processed by this stage, allowing the
// stage behind it (or the ring's producer backpressure gate, for the
// last stage) to proceed past it. It also advances the stage's internal
// cursor to the next sequence it will wait for.
func (s *Stage) Release(sequence uint64) {
	s.cursor.completed.Store(sequence)
	s.next = sequence + 1
}

// Stop causes any in-flight or future call to Next to return ok=false,
// used to unwind the stage's goroutine during shutdown.
func (s *Stage) Stop() {
	s.shutdown.Store(true)
}
