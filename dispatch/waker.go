package dispatch

import "sync/atomic"

// Waker is a one-shot notification handle. Firing it signals the dispatcher
// that the associated task may make progress.
//
// A Waker may be copied and passed between goroutines; all copies share one
// slot, and Fire consumes that slot exactly once. The zero value is empty.
//
// Fire never blocks. It only marks a task ready and pokes the dispatcher's
// run loop, which makes it safe to invoke inside a critical section.
type Waker struct {
	slot *wakerSlot
}

type wakerSlot struct {
	fn atomic.Pointer[func()]
}

// NewWaker wraps fn in a one-shot waker. fn must not block.
func NewWaker(fn func()) Waker {
	s := new(wakerSlot)
	s.fn.Store(&fn)
	return Waker{slot: s}
}

// Fire consumes the waker and invokes the wake function. At most one Fire
// across all copies of a waker invokes the function; every later call, and
// any call on an empty waker, is a no-op.
func (w Waker) Fire() {
	if w.slot == nil {
		return
	}
	if fn := w.slot.fn.Swap(nil); fn != nil {
		(*fn)()
	}
}

// IsEmpty reports whether the waker has been consumed or never held a wake
// function.
func (w Waker) IsEmpty() bool {
	return w.slot == nil || w.slot.fn.Load() == nil
}
