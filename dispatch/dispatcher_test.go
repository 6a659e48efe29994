package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ygrebnov/oneshot/metrics"
)

func TestDispatcher_RunCompletesSpawnedTasks(t *testing.T) {
	d := New()

	ran := make([]bool, 3)
	for i := 0; i < 3; i++ {
		i := i
		d.Spawn("t", TaskFunc(func(context.Context) (bool, error) {
			ran[i] = true
			return true, nil
		}))
	}

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run error = %v; want nil", err)
	}
	for i, ok := range ran {
		if !ok {
			t.Fatalf("task %d was not polled", i)
		}
	}
}

func TestDispatcher_WakeFromAnotherGoroutine(t *testing.T) {
	d := New()

	polls := 0
	polled := make(chan struct{})
	h := d.Spawn("parked", TaskFunc(func(context.Context) (bool, error) {
		polls++
		if polls == 1 {
			close(polled)
			return false, nil // parked until the waker fires
		}
		return true, nil
	}))
	w := h.Waker()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-polled
		w.Fire()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run error = %v; want nil", err)
	}
	wg.Wait()

	if polls != 2 {
		t.Fatalf("polls = %d; want 2", polls)
	}
	if !h.Done() {
		t.Fatalf("handle not done after Run")
	}
}

func TestDispatcher_RunUntilStalled_LeavesParkedTaskLive(t *testing.T) {
	d := New()

	polls := 0
	h := d.Spawn("parked", TaskFunc(func(context.Context) (bool, error) {
		polls++
		return polls > 1, nil
	}))
	w := h.Waker()

	if err := d.RunUntilStalled(context.Background()); err != nil {
		t.Fatalf("RunUntilStalled error = %v; want nil", err)
	}
	if polls != 1 {
		t.Fatalf("polls after stall = %d; want 1", polls)
	}
	if h.Done() {
		t.Fatalf("parked task reported done")
	}

	// Wake and finish on a second pass.
	w.Fire()
	if err := d.RunUntilStalled(context.Background()); err != nil {
		t.Fatalf("second RunUntilStalled error = %v; want nil", err)
	}
	if !h.Done() {
		t.Fatalf("task not done after wake and re-run")
	}
}

func TestDispatcher_RedundantWakesCoalesce(t *testing.T) {
	d := New()

	polls := 0
	h := d.Spawn("t", TaskFunc(func(context.Context) (bool, error) {
		polls++
		return true, nil
	}))

	// Wakes of an already-queued handle must coalesce into the single
	// scheduled poll, not add polls.
	h.Waker().Fire()
	h.Waker().Fire()
	h.Waker().Fire()

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run error = %v; want nil", err)
	}
	if polls != 1 {
		t.Fatalf("polls = %d; want 1", polls)
	}

	// Wakes of a completed handle are no-ops.
	h.Waker().Fire()
	if polls != 1 || !h.Done() {
		t.Fatalf("wake after completion changed state: polls=%d done=%v", polls, h.Done())
	}
}

func TestDispatcher_TaskErrorIsTaggedAndJoined(t *testing.T) {
	d := New()

	errBoom := errors.New("boom")
	d.Spawn("bad-task", TaskFunc(func(context.Context) (bool, error) {
		return true, errBoom
	}))
	ok := false
	d.Spawn("good-task", TaskFunc(func(context.Context) (bool, error) {
		ok = true
		return true, nil
	}))

	err := d.Run(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("Run error = %v; want wrapped boom", err)
	}
	if !ok {
		t.Fatalf("remaining task was not polled after an error without stop-on-error")
	}
}

func TestDispatcher_StopOnError_ShortCircuits(t *testing.T) {
	d := New(WithStopOnError())

	errBoom := errors.New("boom")
	d.Spawn("bad", TaskFunc(func(context.Context) (bool, error) {
		return true, errBoom
	}))
	polled := false
	later := d.Spawn("later", TaskFunc(func(context.Context) (bool, error) {
		polled = true
		return true, nil
	}))

	err := d.Run(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("Run error = %v; want boom", err)
	}
	if polled {
		t.Fatalf("task polled after stop-on-error return")
	}

	// The remaining task is still live and can be finished by a later Run.
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("second Run error = %v; want nil", err)
	}
	if !later.Done() {
		t.Fatalf("remaining task not completed by second Run")
	}
}

func TestDispatcher_RunReturnsOnContextCancel(t *testing.T) {
	d := New()

	d.Spawn("forever", TaskFunc(func(context.Context) (bool, error) {
		return false, nil // parks and is never woken
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := d.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v; want context.Canceled", err)
	}
}

func TestDispatcher_SpawnFromRunningTask(t *testing.T) {
	d := New()

	childRan := false
	d.Spawn("parent", TaskFunc(func(context.Context) (bool, error) {
		d.Spawn("child", TaskFunc(func(context.Context) (bool, error) {
			childRan = true
			return true, nil
		}))
		return true, nil
	}))

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run error = %v; want nil", err)
	}
	if !childRan {
		t.Fatalf("child spawned during Run was not executed")
	}
}

func TestDispatcher_ConcurrentRunPanics(t *testing.T) {
	d := New()

	release := make(chan struct{})
	started := make(chan struct{})
	d.Spawn("block", TaskFunc(func(context.Context) (bool, error) {
		close(started)
		<-release
		return true, nil
	}))

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()
	<-started

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected panic from concurrent Run")
			}
			close(release)
		}()
		_ = d.Run(context.Background())
	}()

	if err := <-done; err != nil {
		t.Fatalf("Run error = %v; want nil", err)
	}
}

func TestDispatcher_MetricsRecorded(t *testing.T) {
	p := metrics.NewBasicProvider()
	d := New(WithMetricsProvider(p))

	polls := 0
	h := d.Spawn("t", TaskFunc(func(context.Context) (bool, error) {
		polls++
		return polls > 1, nil
	}))

	if err := d.RunUntilStalled(context.Background()); err != nil {
		t.Fatalf("RunUntilStalled error = %v; want nil", err)
	}
	h.Waker().Fire()
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run error = %v; want nil", err)
	}

	if got := p.CounterValue("dispatch.tasks_spawned"); got != 1 {
		t.Fatalf("tasks_spawned = %d; want 1", got)
	}
	if got := p.CounterValue("dispatch.task_polls"); got != 2 {
		t.Fatalf("task_polls = %d; want 2", got)
	}
	if got := p.CounterValue("dispatch.wakeups"); got == 0 {
		t.Fatalf("wakeups = 0; want > 0")
	}
	if got := p.UpDownValue("dispatch.tasks_live"); got != 0 {
		t.Fatalf("tasks_live after Run = %d; want 0", got)
	}
	if got := p.HistogramCount("dispatch.poll_duration"); got != 2 {
		t.Fatalf("poll_duration count = %d; want 2", got)
	}
}
