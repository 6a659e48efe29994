package dispatch

import (
	"context"
	"strconv"
)

// RunAll executes the provided tasks to completion on a fresh Dispatcher
// configured by opts. It owns the lifecycle: construct, spawn all, Run.
//
// Semantics:
// - Tasks are polled cooperatively in wake order, not input order.
// - If WithStopOnError is set, the first failure is returned immediately and
//   the remaining tasks are left unpolled.
// - Otherwise the returned error is errors.Join of all task errors (nil if
//   no errors).
func RunAll(ctx context.Context, tasks []Task, opts ...Option) error {
	d := New(opts...)

	for i, t := range tasks {
		d.Spawn("task-"+strconv.Itoa(i), t)
	}

	return d.Run(ctx)
}
