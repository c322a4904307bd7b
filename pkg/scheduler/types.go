package scheduler

import (
	"context"

	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/worker"
)

// Work is a function run by AddWork. ctx is cancelled when the pool closes.
type Work[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Data T
	Err  error
}

type Future[T any] struct {
	input chan T
	job   *jobs.Job
}

func NewFuture[T any](input chan T, job *jobs.Job) *Future[T] {
	f := &Future[T]{
		input: input,
		job:   job,
	}

	return f
}

func (f *Future[T]) C() chan T {
	return f.input
}

// Job returns the job carrying the work, to be used as a dependency of later work.
func (f *Future[T]) Job() *jobs.Job {
	return f.job
}

type WorkerStats struct {
	Name    string
	Status  worker.Status
	Pending int
}

// Stats is a point-in-time snapshot of the pool.
type Stats struct {
	Name    string
	Size    int
	Pending int
	Running int
	Idle    int
	Workers []WorkerStats
}
