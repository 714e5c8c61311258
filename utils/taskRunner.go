package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"elearn/logger"
)

type task struct {
	name string
	fn   func(ctx context.Context) error
}

// TaskRunner executes fire-and-forget jobs on a fixed pool of workers.
// Failures and panics are logged and swallowed. With zero workers jobs run inline.
type TaskRunner struct {
	queue   chan task
	workers int
	timeout time.Duration
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// Tasks is the process-wide runner. It runs inline until main starts a pool.
var Tasks = NewTaskRunner(0, 0)

func NewTaskRunner(workers, queueSize int) *TaskRunner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &TaskRunner{workers: workers, timeout: time.Minute, ctx: ctx, cancel: cancel}
	if workers <= 0 {
		return r
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	r.queue = make(chan task, queueSize)
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

func (r *TaskRunner) work() {
	defer r.wg.Done()
	for t := range r.queue {
		r.run(t)
	}
}

func (r *TaskRunner) run(t task) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Error("task panicked", "task", t.name, "panic", fmt.Sprint(rec))
		}
	}()

	start := time.Now()
	if err := t.fn(ctx); err != nil {
		logger.Log.Warn("task failed", "task", t.name, "error", err)
		return
	}
	logger.Log.Debug("task done", "task", t.name, "took", time.Since(start).String())
}

// Enqueue schedules fn. When the queue is full the job is dropped and logged.
func (r *TaskRunner) Enqueue(name string, fn func(ctx context.Context) error) {
	if r.queue == nil {
		r.run(task{name: name, fn: fn})
		return
	}
	select {
	case r.queue <- task{name: name, fn: fn}:
	default:
		logger.Log.Warn("task queue full, dropping", "task", name)
	}
}

// Shutdown stops accepting work and waits for queued jobs or ctx expiry.
func (r *TaskRunner) Shutdown(ctx context.Context) {
	if r.queue == nil {
		return
	}
	close(r.queue)
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.cancel()
	}
}
