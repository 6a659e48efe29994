package dispatch

import "context"

// Task is a unit of cooperative work. The dispatcher calls Poll whenever the
// task has been woken; the task runs until it either completes or suspends.
type Task interface {
	// Poll advances the task. It returns done == true when the task has
	// finished (successfully or with err). A task that returns done == false
	// must have arranged a wake-up (registered a Waker somewhere) before
	// returning, otherwise it is never polled again.
	Poll(ctx context.Context) (done bool, err error)
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func(ctx context.Context) (bool, error)

func (f TaskFunc) Poll(ctx context.Context) (bool, error) {
	return f(ctx)
}
