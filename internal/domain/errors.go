package domain

import "fmt"

// ValidationError reports a malformed order intent: non-positive quantity,
// unknown symbol, or a status transition request that §4.2's state machine
// does not allow. It is surfaced synchronously to the submitter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// InvariantError marks a fatal internal contradiction: negative filled
// quantity, a sign inversion that didn't cross zero, and the like. Per §7
// this is never allowed to crash the process; the caller logs it, emits an
// audit ERROR, and disables the risk engine with this error as the reason.
type InvariantError struct {
	Component string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Component, e.Detail)
}

// ErrBufferFull is returned by a ring producer when the ring stays full
// relative to the slowest consumer for longer than the producer's claim
// timeout.
var ErrBufferFull = fmt.Errorf("ring buffer is full")
