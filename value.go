package oneshot

import "github.com/ygrebnov/oneshot/dispatch"

// Result carries the outcome of a by-value transfer. Err is nil on delivery
// and ErrCancelled when the sender was closed first.
type Result[T any] struct {
	Value T
	Err   error
}

// ValueSender is the producing endpoint of a by-value pair. It delivers at
// most one value to its receiver; delivery after the receiver is gone is a
// silent no-op. The zero value is unlinked and inert.
//
// A sender may be driven from any goroutine, including ones the dispatcher
// knows nothing about. It never suspends.
type ValueSender[T any] struct {
	noCopy noCopy

	peer *ValueReceiver[T] // guarded by pairLock
}

// ValueReceiver is the consuming endpoint of a by-value pair. Poll it from a
// dispatcher task; it holds the task's waker until the terminal event.
type ValueReceiver[T any] struct {
	noCopy noCopy

	peer     *ValueSender[T] // guarded by pairLock
	value    T
	hasValue bool
	waker    dispatch.Waker
}

// NewValuePair creates a linked sender/receiver pair for a single by-value
// transfer. w is fired at most once, on delivery or cancellation; it is not
// fired if the receiver is closed first.
func NewValuePair[T any](w dispatch.Waker) (*ValueSender[T], *ValueReceiver[T]) {
	s := new(ValueSender[T])
	r := new(ValueReceiver[T])
	InitializeValuePair(s, r, w)
	return s, r
}

// InitializeValuePair links two caller-owned endpoint values in place. The
// endpoints must be zero or previously closed, and must not be copied after
// linking. Equivalent to NewValuePair for storage the caller already owns.
func InitializeValuePair[T any](s *ValueSender[T], r *ValueReceiver[T], w dispatch.Waker) {
	pairLock.Lock()
	s.peer = r
	r.peer = s
	r.hasValue = false
	r.waker = w
	pairLock.Unlock()
}

// Send delivers v to the receiver and fires its waker. After the first
// terminal event Send is a no-op: a second Send, or a Send after the
// receiver closed, discards v. At-most-once delivery, not exactly-once.
func (s *ValueSender[T]) Send(v T) {
	pairLock.Lock()
	defer pairLock.Unlock()

	r := s.peer
	if r == nil {
		return
	}
	r.value = v
	r.hasValue = true
	finishValue(s, r)
}

// SendFrom delivers the value produced by construct. The function runs only
// if the receiver is still linked, so callers can skip building a value
// nobody will observe. construct executes inside the pair lock and must not
// call back into any endpoint or fire wakers.
func (s *ValueSender[T]) SendFrom(construct func() T) {
	pairLock.Lock()
	defer pairLock.Unlock()

	r := s.peer
	if r == nil {
		return
	}
	r.value = construct()
	r.hasValue = true
	finishValue(s, r)
}

// Close drops the sender. If the pair is still live this cancels the
// transfer: the receiver's waker fires and its next Poll reports
// ErrCancelled. Closing an already-terminal sender is a no-op, so the waker
// never fires twice.
func (s *ValueSender[T]) Close() {
	pairLock.Lock()
	defer pairLock.Unlock()

	r := s.peer
	if r == nil {
		return
	}
	finishValue(s, r)
}

// finishValue consumes the receiver's waker, fires it, and breaks the link
// in both directions. Caller holds pairLock.
func finishValue[T any](s *ValueSender[T], r *ValueReceiver[T]) {
	w := r.waker
	r.waker = dispatch.Waker{}
	w.Fire()
	r.peer = nil
	s.peer = nil
}

// Poll reports the transfer state:
//   - Ready with the delivered value, moving it out of the receiver;
//   - Ready with ErrCancelled when the sender closed without delivering;
//   - Pending while the pair is live.
//
// After a Ready result with a value, the value is gone; polling again
// reports ErrCancelled.
func (r *ValueReceiver[T]) Poll() dispatch.Poll[Result[T]] {
	pairLock.Lock()
	defer pairLock.Unlock()

	switch {
	case r.hasValue:
		v := r.value
		var zero T
		r.value = zero
		r.hasValue = false
		return dispatch.Ready(Result[T]{Value: v})

	case r.peer == nil:
		return dispatch.Ready(Result[T]{Err: ErrCancelled})

	default:
		return dispatch.Pending[Result[T]]()
	}
}

// Close drops the receiver. The transfer is silently abandoned: the sender
// observes nothing, and its later Send becomes a no-op. Any value already
// delivered but not yet polled is discarded.
func (r *ValueReceiver[T]) Close() {
	pairLock.Lock()
	defer pairLock.Unlock()

	if s := r.peer; s != nil {
		s.peer = nil
		r.peer = nil
	}
	var zero T
	r.value = zero
	r.hasValue = false
	r.waker = dispatch.Waker{}
}
