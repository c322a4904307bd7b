package scheduler

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	srvErrors "github.com/andgen/jobsystem/pkg/errors"
	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/worker"
)

const defaultPoolName = "pool"

// IdealThreadCount is the number of CPUs minus one, leaving a core to the
// goroutine that submits work.
func IdealThreadCount() int {
	return max(0, runtime.NumCPU()-1)
}

type Option func(p *Pool)

func WithName(name string) Option {
	return func(p *Pool) {
		p.name = name
	}
}

// WithObserver installs o on every worker of the pool.
func WithObserver(o worker.Observer) Option {
	return func(p *Pool) {
		p.observer = o
	}
}

type Pool struct {
	name     string
	observer worker.Observer
	workers  []*worker.Worker
	// runs jobs on the submitting goroutine when the pool has no workers
	inline *worker.Worker

	mainCtx    context.Context
	mainCancel context.CancelFunc
	// held for reading from the closed check to the enqueue, for writing by Close
	submitMu sync.RWMutex
	closed   atomic.Bool
	once     sync.Once
}

// NewPool creates a pool of threadCount workers and starts them.
func NewPool(threadCount int, opts ...Option) (*Pool, error) {
	if threadCount < 0 {
		return nil, srvErrors.NewInvalidArgumentError("threadCount", threadCount, "must not be negative")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		name:       defaultPoolName,
		workers:    make([]*worker.Worker, 0, threadCount),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range threadCount {
		w := worker.New(
			worker.WithName(fmt.Sprintf("%s-%d", p.name, i)),
			worker.WithObserver(p.observer),
		)
		w.Start()
		p.workers = append(p.workers, w)
	}
	p.inline = worker.New(
		worker.WithName(p.name+"-caller"),
		worker.WithObserver(p.observer),
	)

	zap.S().Named("scheduler").Infow("pool started", "pool", p.name, "workers", threadCount)

	return p, nil
}

// NewDefaultPool creates a pool of IdealThreadCount workers.
func NewDefaultPool(opts ...Option) (*Pool, error) {
	return NewPool(IdealThreadCount(), opts...)
}

func (p *Pool) Name() string {
	return p.name
}

// QueueJob hands job to the least loaded worker, the lowest index winning
// ties. The choice is made without a pool-wide lock, so concurrent callers
// may get an approximate balance.
//
// A pool without workers runs the job on the calling goroutine.
func (p *Pool) QueueJob(job *jobs.Job) error {
	if job == nil {
		return nil
	}

	p.submitMu.RLock()
	if p.closed.Load() {
		p.submitMu.RUnlock()
		return srvErrors.ErrPoolClosed
	}

	if len(p.workers) == 0 {
		p.inline.QueueJob(job)
		p.submitMu.RUnlock()
		// outside the lock: the job itself may submit more work or close the pool
		p.inline.RunPending()
		return nil
	}

	w := p.leastLoaded()
	if w == nil {
		p.submitMu.RUnlock()
		panic(fmt.Sprintf("scheduler: pool %q has %d workers but none could take the job", p.name, len(p.workers)))
	}
	w.QueueJob(job)
	p.submitMu.RUnlock()

	return nil
}

// QueueJobs submits the jobs in order. It stops at the first error.
func (p *Pool) QueueJobs(batch ...*jobs.Job) error {
	for _, job := range batch {
		if err := p.QueueJob(job); err != nil {
			return err
		}
	}
	return nil
}

// AddWork runs w as a job of the pool once deps have completed. The result,
// the error or the recovered panic of w is delivered on the future.
func (p *Pool) AddWork(w Work[any], deps ...*jobs.Job) *Future[Result[any]] {
	c := make(chan Result[any], 1)

	job := jobs.NewFunc(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = &jobs.PanicError{Value: rec}
				c <- Result[any]{Err: fmt.Errorf("worker panicked: %v", rec)}
			}
		}()

		if w == nil {
			c <- Result[any]{}
			return nil
		}

		v, err := w(p.mainCtx)
		c <- Result[any]{Data: v, Err: err}
		return err
	})
	// a fresh job cannot be submitted yet
	_ = job.Schedule(deps...)

	if err := p.QueueJob(job); err != nil {
		c <- Result[any]{Err: err}
	}

	return NewFuture(c, job)
}

// WaitForThreads blocks until every worker has drained its queue.
func (p *Pool) WaitForThreads() {
	_ = p.WaitForThreadsContext(context.Background())
}

func (p *Pool) WaitForThreadsContext(ctx context.Context) error {
	p.inline.RunPending()
	for _, w := range p.workers {
		if err := w.WaitForQueueContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) Size() int {
	return len(p.workers)
}

func (p *Pool) PendingJobsCount() int {
	total := p.inline.Pending()
	for _, w := range p.workers {
		total += w.Pending()
	}
	return total
}

func (p *Pool) RunningCount() int {
	return p.countStatus(worker.ExecutingJobs)
}

func (p *Pool) IdleCount() int {
	return p.countStatus(worker.Idle)
}

func (p *Pool) WorkerStatus(i int) (worker.Status, error) {
	w, err := p.workerAt(i)
	if err != nil {
		return worker.Stopped, err
	}
	return w.Status(), nil
}

func (p *Pool) WorkerPending(i int) (int, error) {
	w, err := p.workerAt(i)
	if err != nil {
		return 0, err
	}
	return w.Pending(), nil
}

func (p *Pool) Stats() Stats {
	s := Stats{
		Name:    p.name,
		Size:    len(p.workers),
		Pending: p.inline.Pending(),
		Workers: make([]WorkerStats, 0, len(p.workers)),
	}
	for _, w := range p.workers {
		ws := WorkerStats{
			Name:    w.Name(),
			Status:  w.Status(),
			Pending: w.Pending(),
		}
		s.Pending += ws.Pending
		switch ws.Status {
		case worker.ExecutingJobs:
			s.Running++
		case worker.Idle:
			s.Idle++
		}
		s.Workers = append(s.Workers, ws)
	}
	return s
}

// Close stops every worker and waits for their goroutines to exit. Jobs
// still queued are not run. Close is safe to call more than once.
func (p *Pool) Close() {
	p.once.Do(func() {
		// waits for submissions past the closed check, so none lands on a stopped worker
		p.submitMu.Lock()
		p.closed.Store(true)
		p.submitMu.Unlock()
		p.mainCancel()

		// signal everyone first so the workers wind down in parallel
		for _, w := range p.workers {
			w.Stop(false)
		}
		for _, w := range p.workers {
			w.Stop(true)
		}

		zap.S().Named("scheduler").Infow("pool closed", "pool", p.name, "pending", p.PendingJobsCount())
	})
}

func (p *Pool) workerAt(i int) (*worker.Worker, error) {
	if i < 0 || i >= len(p.workers) {
		return nil, srvErrors.NewIndexOutOfRangeError(i, len(p.workers))
	}
	return p.workers[i], nil
}

func (p *Pool) leastLoaded() *worker.Worker {
	var best *worker.Worker
	bestLoad := math.MaxInt
	for _, w := range p.workers {
		if load := w.Load(); load < bestLoad {
			best, bestLoad = w, load
		}
	}
	return best
}

func (p *Pool) countStatus(status worker.Status) int {
	n := 0
	for _, w := range p.workers {
		if w.Status() == status {
			n++
		}
	}
	return n
}
