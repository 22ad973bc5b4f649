package service

import (
	"context"
	"sync"
)

// Task is the handle returned by a fire-and-forget submission. Callers may
// hold it to wait for completion; nothing requires them to.
type Task struct {
	done chan struct{}
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) Wait() {
	<-t.done
}

// Dispatcher is an explicitly sized worker pool owned by the orchestrators.
// With workers >= 1 it bounds concurrency to that many resident goroutines;
// with workers == 0 every submission runs on its own detached goroutine.
// Submissions are not cancellable once dispatched.
type Dispatcher struct {
	workers int
	jobs    chan func(context.Context)
	ctx     context.Context
	wg      sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

func NewDispatcher(workers int) *Dispatcher {
	d := &Dispatcher{
		workers: workers,
		ctx:     context.Background(),
	}
	if workers > 0 {
		d.jobs = make(chan func(context.Context), workers)
	}
	return d
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx = ctx
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for job := range d.jobs {
				job(d.ctx)
			}
		}()
	}
}

// Submit queues the job and returns immediately. A bounded dispatcher blocks
// the caller only when the queue buffer is full. After Stop the job is
// dropped and the returned handle is already completed.
func (d *Dispatcher) Submit(job func(ctx context.Context)) *Task {
	task := &Task{done: make(chan struct{})}
	wrapped := func(ctx context.Context) {
		defer close(task.done)
		job(ctx)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		close(task.done)
		return task
	}

	if d.workers < 1 {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			wrapped(d.ctx)
		}()
		return task
	}

	d.jobs <- wrapped
	return task
}

// Stop refuses new submissions and waits for in-flight jobs to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.jobs != nil {
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
