// Package worker runs the jobs of a single queue on a dedicated goroutine.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/notifier"
)

type Option func(w *Worker)

func WithName(name string) Option {
	return func(w *Worker) {
		w.name = name
	}
}

func WithObserver(o Observer) Option {
	return func(w *Worker) {
		w.observer = o
	}
}

type Worker struct {
	name     string
	queue    *jobs.Queue
	observer Observer

	status atomic.Int32
	exit   atomic.Bool
	// incremented before a job is taken from the queue, decremented after it ran
	active atomic.Int32

	jobsReady *notifier.Notifier
	jobsDone  *notifier.Notifier

	mu   sync.Mutex
	done chan struct{}
}

// New creates a stopped worker with an empty queue.
func New(opts ...Option) *Worker {
	w := &Worker{
		name:      "worker",
		queue:     jobs.NewQueue(),
		jobsReady: notifier.New(),
		jobsDone:  notifier.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.status.Store(int32(Stopped))
	return w
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Status() Status {
	return Status(w.status.Load())
}

// Pending returns the number of jobs waiting in the queue.
func (w *Worker) Pending() int {
	return w.queue.Count()
}

// Load is the number of queued jobs plus the job being executed, if any.
// It never drops below one while a submitted job has not finished.
func (w *Worker) Load() int {
	return w.queue.Count() + int(w.active.Load())
}

// Start launches the worker goroutine. It does nothing if the worker is
// already running. A worker that is still shutting down after Stop(false) is
// joined before the new goroutine starts.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done != nil && !closed(w.done) {
		if !w.exit.Load() {
			return
		}
		<-w.done
	}

	w.exit.Store(false)
	w.status.Store(int32(Idle))
	done := make(chan struct{})
	w.done = done

	go w.run(done)
}

// Stop asks the worker to exit once its current job, if any, returns.
// Pending jobs stay in the queue. With wait set, Stop blocks until the
// goroutine has exited.
func (w *Worker) Stop(wait bool) {
	w.mu.Lock()
	done := w.done
	if done == nil || closed(done) {
		w.mu.Unlock()
		return
	}
	w.exit.Store(true)
	w.mu.Unlock()

	w.jobsReady.Notify()

	if wait {
		<-done
	}
}

func (w *Worker) QueueJob(job *jobs.Job) {
	if job == nil {
		return
	}
	w.queue.AddJob(job)
	w.jobsReady.Notify()
}

// QueueJobs appends every job of q, in order.
func (w *Worker) QueueJobs(q *jobs.Queue) {
	if q == nil || q.IsEmpty() {
		return
	}
	w.queue.AddJobQueue(q)
	w.jobsReady.Notify()
}

// ClearQueue drops the pending jobs. The job being executed is not affected.
func (w *Worker) ClearQueue() {
	w.queue.Clear()
	w.jobsReady.Notify()
}

// WaitForQueue blocks until the queue is empty and no job is executing.
// It returns right away if the worker is stopped, and also if the worker
// stops while waiting.
func (w *Worker) WaitForQueue() {
	_ = w.WaitForQueueContext(context.Background())
}

func (w *Worker) WaitForQueueContext(ctx context.Context) error {
	for !w.drained() {
		if w.Status() == Stopped {
			break
		}
		if err := w.jobsDone.WaitContext(ctx); err != nil {
			return err
		}
	}
	// other waiters may have missed the signal this one consumed
	w.jobsDone.Notify()
	return nil
}

// RunPending executes the ready jobs of the queue on the calling goroutine
// and returns how many ran. It is meant for a worker that is never started.
func (w *Worker) RunPending() int {
	ran := 0
	for {
		w.active.Add(1)
		job, ok := w.queue.Next()
		if ok {
			w.execute(job)
		}
		w.active.Add(-1)

		if !ok {
			return ran
		}
		ran++
	}
}

func (w *Worker) drained() bool {
	// the queue must be read first: active is raised before a job leaves it
	return w.queue.IsEmpty() && w.active.Load() == 0
}

func (w *Worker) run(done chan struct{}) {
	log := zap.S().Named("worker").With("worker", w.name)
	log.Debug("worker started")

	defer func() {
		w.status.Store(int32(Stopped))
		close(done)
		w.jobsDone.Notify()
		log.Debug("worker stopped")
	}()

	for !w.exit.Load() {
		w.active.Add(1)
		job, ok := w.queue.Next()
		if ok {
			w.status.Store(int32(ExecutingJobs))
			w.execute(job)
		}
		w.active.Add(-1)

		if ok {
			continue
		}

		if w.queue.IsEmpty() {
			w.jobsDone.Notify()
		} else {
			// only blocked jobs left: sleep until one of their dependencies completes
			w.queue.NotifyOnProgress(w.jobsReady)
		}

		w.status.Store(int32(Idle))
		w.jobsReady.Wait()
	}
}

func (w *Worker) execute(job *jobs.Job) {
	ranBefore := job.IsCompleted()
	startedAt := time.Now()

	job.Run()

	if ranBefore || !job.IsCompleted() {
		return
	}
	if err := job.Err(); err != nil {
		zap.S().Named("worker").Debugw("job failed", "worker", w.name, "job", job.ID(), "name", job.Name(), "error", err)
	}
	if w.observer != nil {
		w.observer.JobFinished(jobs.NewRecord(job, w.name, startedAt, time.Now()))
	}
}

func closed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
