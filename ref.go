package oneshot

import "github.com/ygrebnov/oneshot/dispatch"

// RefSender is the producing endpoint of a by-reference pair. Instead of
// carrying a value it mutates a caller-owned buffer in place, which avoids
// copying large payloads. The zero value is unlinked and inert.
type RefSender[T any] struct {
	noCopy noCopy

	peer *RefReceiver[T] // guarded by pairLock
}

// RefReceiver is the consuming endpoint of a by-reference pair. It observes
// completion status only; the mutated data lives in the caller's buffer.
type RefReceiver[T any] struct {
	noCopy noCopy

	peer      *RefSender[T] // guarded by pairLock
	target    *T
	cancelled bool
	waker     dispatch.Waker
}

// NewRefPair creates a linked pair mutating *target in place. w is fired at
// most once, on commit or cancellation; it is not fired if the receiver is
// closed first.
//
// Between construction and the terminal event the sender has exclusive
// logical access to *target: the caller must not read or write it. The
// buffer must outlive both endpoints; the pair never takes ownership.
func NewRefPair[T any](target *T, w dispatch.Waker) (*RefSender[T], *RefReceiver[T]) {
	s := new(RefSender[T])
	r := new(RefReceiver[T])
	InitializeRefPair(s, r, target, w)
	return s, r
}

// InitializeRefPair links two caller-owned endpoint values in place, with
// the same contract as NewRefPair. The endpoints must be zero or previously
// closed, and must not be copied after linking.
func InitializeRefPair[T any](s *RefSender[T], r *RefReceiver[T], target *T, w dispatch.Waker) {
	if target == nil {
		panic(Namespace + ": nil ref pair target")
	}

	pairLock.Lock()
	s.peer = r
	r.peer = s
	r.target = target
	r.cancelled = false
	r.waker = w
	pairLock.Unlock()
}

// Set assigns v to the target buffer, fires the receiver's waker, and ends
// the transfer. After the first terminal event, or after the receiver
// closed, Set is a no-op and the buffer is not touched.
func (s *RefSender[T]) Set(v T) {
	pairLock.Lock()
	defer pairLock.Unlock()

	r := s.peer
	if r == nil {
		return
	}
	*r.target = v
	finishRef(s, r)
}

// ModifyUnsafe invokes modify on the target buffer without firing the waker
// or ending the transfer, allowing multi-step in-place construction before a
// single Commit.
//
// modify executes inside the pair lock. It must not call back into any
// endpoint, dispatcher, or waker (self-deadlock), and must not retain the
// pointer beyond its invocation. This is a contract, not a runtime check.
func (s *RefSender[T]) ModifyUnsafe(modify func(*T)) {
	pairLock.Lock()
	defer pairLock.Unlock()

	r := s.peer
	if r == nil {
		return
	}
	modify(r.target)
}

// Commit fires the receiver's waker and ends the transfer, publishing
// whatever state earlier ModifyUnsafe calls left in the buffer. No-op after
// the terminal event.
func (s *RefSender[T]) Commit() {
	pairLock.Lock()
	defer pairLock.Unlock()

	r := s.peer
	if r == nil {
		return
	}
	finishRef(s, r)
}

// Close drops the sender. If the pair is still live this cancels the
// transfer: the receiver's next Poll reports ErrCancelled. The buffer keeps
// any partial modifications already applied.
func (s *RefSender[T]) Close() {
	pairLock.Lock()
	defer pairLock.Unlock()

	r := s.peer
	if r == nil {
		return
	}
	r.cancelled = true
	finishRef(s, r)
}

// finishRef consumes the receiver's waker, fires it, and breaks the link in
// both directions. Caller holds pairLock.
func finishRef[T any](s *RefSender[T], r *RefReceiver[T]) {
	w := r.waker
	r.waker = dispatch.Waker{}
	w.Fire()
	r.peer = nil
	s.peer = nil
}

// Poll reports the transfer state:
//   - Ready(ErrCancelled) when the sender closed before committing;
//   - Ready(nil) once the waker has been consumed by a Set or Commit;
//   - Pending while the pair is live.
func (r *RefReceiver[T]) Poll() dispatch.Poll[error] {
	pairLock.Lock()
	defer pairLock.Unlock()

	switch {
	case r.cancelled:
		return dispatch.Ready[error](ErrCancelled)

	case r.waker.IsEmpty():
		return dispatch.Ready[error](nil)

	default:
		return dispatch.Pending[error]()
	}
}

// Close drops the receiver. The transfer is silently abandoned; later
// sender calls no-op and the buffer is never touched again through this
// pair.
func (r *RefReceiver[T]) Close() {
	pairLock.Lock()
	defer pairLock.Unlock()

	if s := r.peer; s != nil {
		s.peer = nil
		r.peer = nil
	}
	r.target = nil
	r.waker = dispatch.Waker{}
}
