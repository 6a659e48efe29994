// Package dispatch provides a cooperative, poll-based task dispatcher and
// the Waker/Poll contract consumed by the oneshot channel endpoints.
//
// Model
// Tasks implement Poll and advance only when the dispatcher polls them. A
// task that cannot make progress returns done == false after arranging a
// wake-up: it obtains a Waker from its Handle and hands it to whatever will
// eventually produce the awaited event. Firing the waker re-enqueues the
// task; the waker is one-shot and all copies share a single consumption.
//
// Threading
// Run and RunUntilStalled are single-threaded: one goroutine drives all
// polls. Wakers may fire from any goroutine; Fire never blocks, so it is
// safe to call while holding locks, including the oneshot pair lock.
//
// Defaults
// Unless overridden, a new Dispatcher uses:
//   - metrics: noop provider
//   - stop on error: false (errors are joined and returned by Run)
//   - wake buffer: 1
package dispatch
