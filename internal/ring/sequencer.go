package ring

import "github.com/lukmusial/tradecore/internal/domain"

// Sequencer is the producer-facing handle on a RingBuffer. Multiple
// producer goroutines (exchange callback threads, the synchronous submit
// path, the market-data ingestion thread) may share one Sequencer safely;
// coordination is through the ring's atomic cursor.
type Sequencer struct {
	rb   *RingBuffer
	wait WaitStrategy
}

// NewSequencer builds a Sequencer over rb using wait as its producer-side
// backpressure strategy (how hard to spin while the ring is full).
func NewSequencer(rb *RingBuffer, wait WaitStrategy) *Sequencer {
	if wait == nil {
		wait = BusySpin{}
	}
	return &Sequencer{rb: rb, wait: wait}
}

// Publish claims the next sequence, lets fill populate the slot, and
// publishes it. fill must not retain the *EventSlot past its return: the
// slot is live ring storage that will be overwritten once the ring wraps
// around past this sequence.
//
// While the ring is full relative to the slowest stage, Publish blocks
// until a slot is released. It returns domain.ErrBufferFull if the ring
// stays full for longer than the claim timeout, and the caller decides
// whether to retry.
func (s *Sequencer) Publish(fill func(*EventSlot)) (uint64, error) {
	seq, err := s.rb.claim(s.wait)
	if err != nil {
		return 0, err
	}
	slot := s.rb.slotAt(seq)
	slot.reset()
	slot.ClaimedAtMono = domain.MonotonicNow()
	fill(slot)
	s.rb.publish(seq)
	return seq, nil
}
