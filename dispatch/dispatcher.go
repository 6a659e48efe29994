package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/oneshot/metrics"
)

// Dispatcher is a cooperative, poll-based task executor. Tasks advance only
// at explicit poll points inside Run or RunUntilStalled; between polls they
// are parked until one of their wakers fires.
//
// The run loop itself is single-threaded: exactly one goroutine may be inside
// Run or RunUntilStalled at a time. Wakers, however, may fire from any
// goroutine; firing is non-blocking and only enqueues the task.
type Dispatcher struct {
	config *config

	mu    sync.Mutex
	ready []*Handle // FIFO wake order, guarded by mu
	live  int       // spawned and not yet done, guarded by mu

	// wake is poked (non-blocking) whenever a parked handle becomes ready,
	// so a stalled Run can resume.
	wake chan struct{}

	running atomic.Bool

	spawned   metrics.Counter
	polls     metrics.Counter
	wakeups   metrics.Counter
	tasksLive metrics.UpDownCounter
	pollTime  metrics.Histogram
}

// Handle identifies a spawned task within its dispatcher.
type Handle struct {
	d    *Dispatcher
	name string
	task Task

	queued bool // guarded by d.mu
	done   bool // guarded by d.mu
}

// New creates a Dispatcher configured by opts.
func New(opts ...Option) *Dispatcher {
	cfg := buildConfig(opts)

	d := &Dispatcher{
		config: cfg,
		wake:   make(chan struct{}, cfg.wakeBuffer),

		spawned: cfg.metrics.Counter("dispatch.tasks_spawned",
			metrics.WithDescription("tasks spawned"), metrics.WithUnit("1")),
		polls: cfg.metrics.Counter("dispatch.task_polls",
			metrics.WithDescription("task poll invocations"), metrics.WithUnit("1")),
		wakeups: cfg.metrics.Counter("dispatch.wakeups",
			metrics.WithDescription("waker firings delivered to the dispatcher"), metrics.WithUnit("1")),
		tasksLive: cfg.metrics.UpDownCounter("dispatch.tasks_live",
			metrics.WithDescription("spawned tasks not yet completed"), metrics.WithUnit("1")),
		pollTime: cfg.metrics.Histogram("dispatch.poll_duration",
			metrics.WithDescription("single task poll duration"), metrics.WithUnit("seconds")),
	}

	return d
}

// Spawn registers a task under the given name and marks it ready for its
// first poll. Spawn may be called from any goroutine, including from a task
// being polled. The name is advisory; it tags errors the task produces.
func (d *Dispatcher) Spawn(name string, t Task) *Handle {
	if t == nil {
		panic("dispatch: nil task")
	}

	h := &Handle{d: d, name: name, task: t}

	d.mu.Lock()
	d.live++
	h.queued = true
	d.ready = append(d.ready, h)
	d.mu.Unlock()

	d.spawned.Add(1)
	d.tasksLive.Add(1)
	d.poke()

	return h
}

// Waker returns a fresh one-shot waker that reschedules the handle's task.
// A task that returns done == false from Poll must have handed out a waker
// obtained here (directly or through a channel endpoint) before suspending.
func (h *Handle) Waker() Waker {
	return NewWaker(func() { h.d.wakeHandle(h) })
}

// Name returns the name the task was spawned under.
func (h *Handle) Name() string { return h.name }

// Done reports whether the task has completed.
func (h *Handle) Done() bool {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	return h.done
}

// wakeHandle marks h ready. Wakes of queued or completed handles coalesce
// into no-ops, so at-most-once waker semantics compose with the FIFO queue.
func (d *Dispatcher) wakeHandle(h *Handle) {
	d.wakeups.Add(1)

	d.mu.Lock()
	if h.done || h.queued {
		d.mu.Unlock()
		return
	}
	h.queued = true
	d.ready = append(d.ready, h)
	d.mu.Unlock()

	d.poke()
}

// poke signals the run loop without blocking. A full buffer means a poke is
// already pending, which is enough.
func (d *Dispatcher) poke() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest ready handle, or nil when the queue is empty.
func (d *Dispatcher) next() *Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.ready) == 0 {
		return nil
	}
	h := d.ready[0]
	d.ready = d.ready[1:]
	h.queued = false
	return h
}

// poll advances h once and records completion. A returned error is tagged
// with the task name for correlation.
func (d *Dispatcher) poll(ctx context.Context, h *Handle) error {
	d.polls.Add(1)
	start := time.Now()
	done, err := h.task.Poll(ctx)
	d.pollTime.Record(time.Since(start).Seconds())

	if err != nil {
		done = true
		err = errorc.With(err, errorc.String("task", h.name))
	}

	if done {
		d.mu.Lock()
		h.done = true
		d.live--
		d.mu.Unlock()
		d.tasksLive.Add(-1)
	}

	return err
}

// Run polls ready tasks until every spawned task has completed, blocking on
// the wake signal while all remaining tasks are parked. It returns the
// joined errors of all failed tasks, or the first error immediately when the
// dispatcher was built WithStopOnError. If the context is cancelled while
// stalled, Run returns ctx.Err() joined with the task errors collected so far.
//
// Run must not be called concurrently with itself or RunUntilStalled; it may
// be called again after returning (e.g. to finish remaining tasks after a
// stop-on-error return).
func (d *Dispatcher) Run(ctx context.Context) error {
	d.enter()
	defer d.running.Store(false)

	var errs []error
	for {
		h := d.next()
		if h == nil {
			d.mu.Lock()
			live := d.live
			d.mu.Unlock()
			if live == 0 {
				return errors.Join(errs...)
			}

			select {
			case <-ctx.Done():
				return errors.Join(append(errs, ctx.Err())...)
			case <-d.wake:
			}
			continue
		}

		if err := d.poll(ctx, h); err != nil {
			if d.config.stopOnError {
				return err
			}
			errs = append(errs, err)
		}
	}
}

// RunUntilStalled polls ready tasks until none remain ready, then returns
// without waiting for wake-ups. Parked tasks stay live and are picked up by
// a later Run or RunUntilStalled call. Errors accumulate as in Run.
func (d *Dispatcher) RunUntilStalled(ctx context.Context) error {
	d.enter()
	defer d.running.Store(false)

	var errs []error
	for {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		h := d.next()
		if h == nil {
			return errors.Join(errs...)
		}

		if err := d.poll(ctx, h); err != nil {
			if d.config.stopOnError {
				return err
			}
			errs = append(errs, err)
		}
	}
}

func (d *Dispatcher) enter() {
	if !d.running.CompareAndSwap(false, true) {
		panic("dispatch: concurrent Run / RunUntilStalled")
	}
}
