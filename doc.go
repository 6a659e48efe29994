// Package oneshot provides a one-shot asynchronous value transfer between a
// producer and a consumer running under a cooperative dispatcher
// (oneshot/dispatch). A pair of linked endpoints is created together; the
// sender completes synchronously from any goroutine, the receiver suspends
// by returning Pending from Poll and is woken exactly once.
//
// Flavors
//   - Value pair: the sender hands a T to the receiver, which moves it out
//     on the Ready poll. The payload is owned inside the receiver, so there
//     are no aliasing concerns.
//   - Ref pair: the sender mutates a caller-owned buffer in place and the
//     receiver observes completion status only. Zero-copy for large
//     payloads, in exchange for an aliasing contract: until the terminal
//     event the caller must not touch the buffer.
//
// Terminal events
// Each pair ends with exactly one of:
//   - delivered: Send/SendFrom (value) or Set/Commit (ref);
//   - cancelled: the sender was closed first; the receiver polls
//     ErrCancelled.
//
// Closing the receiver first silently abandons the transfer: the sender is
// not notified and its later calls become no-ops.
//
// Locking
// All endpoint transitions run under one process-wide lock with O(1)
// critical sections. The receiver's waker fires inside that lock; wakers
// obtained from oneshot/dispatch satisfy the required non-blocking Fire.
//
// The primitive never allocates after pair construction, never logs, and
// never fails internally; cancellation is the only observable error.
package oneshot
