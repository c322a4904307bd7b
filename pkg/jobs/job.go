package jobs

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andgen/jobsystem/pkg/notifier"
	srvErrors "github.com/andgen/jobsystem/pkg/errors"
)

// Executor is the work a Job performs. Execute is called at most once per job.
type Executor interface {
	Execute() error
}

// Func adapts a plain function to an Executor.
type Func func() error

func (f Func) Execute() error {
	return f()
}

// PanicError is recorded on a job whose executor panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}

type Option func(j *Job)

func WithName(name string) Option {
	return func(j *Job) {
		j.name = name
	}
}

// Job is a unit of schedulable work with optional prerequisite jobs.
//
// Jobs are shared by pointer between the queues holding them and the callers
// that created them. Dependencies are plain back-references: the caller keeps
// a dependency alive for as long as a dependent may look at it.
type Job struct {
	id   string
	name string
	exec Executor

	// written by Schedule before submission, read-only afterwards
	dependencies []*Job

	submitted atomic.Bool
	started   atomic.Bool
	completed atomic.Bool
	// set before completed is stored, read only after completed is observed
	err error

	mu      sync.Mutex
	waiters map[*notifier.Notifier]struct{}
}

// New creates a job around exec. A nil executor gives a job that completes
// without doing anything.
func New(exec Executor, opts ...Option) *Job {
	j := &Job{
		id:   uuid.NewString(),
		exec: exec,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// NewFunc is New for a plain function.
func NewFunc(fn func() error, opts ...Option) *Job {
	if fn == nil {
		return New(nil, opts...)
	}
	return New(Func(fn), opts...)
}

func (j *Job) ID() string {
	return j.id
}

func (j *Job) Name() string {
	return j.name
}

// Run executes the job if it has not run yet and all of its dependencies are
// completed. Otherwise it returns without doing anything. The job is marked
// completed whether the executor succeeds, fails or panics.
func (j *Job) Run() {
	if j.completed.Load() || !j.Ready() {
		return
	}
	if !j.started.CompareAndSwap(false, true) {
		return
	}

	defer j.complete()
	defer func() {
		if rec := recover(); rec != nil {
			j.err = &PanicError{Value: rec}
			zap.S().Named("job").Errorw("job panicked", "id", j.id, "name", j.name, "panic", rec)
		}
	}()

	if j.exec != nil {
		j.err = j.exec.Execute()
	}
}

// Schedule registers jobs that must complete before this one may run.
// Nil entries and the job itself are ignored. Dependencies can only be added
// before the job is submitted to a queue.
func (j *Job) Schedule(deps ...*Job) error {
	if j.submitted.Load() {
		return fmt.Errorf("schedule dependencies of job %s: %w", j.id, srvErrors.ErrJobSubmitted)
	}
	for _, d := range deps {
		if d == nil || d == j {
			continue
		}
		j.dependencies = append(j.dependencies, d)
	}
	return nil
}

func (j *Job) IsCompleted() bool {
	return j.completed.Load()
}

// Ready reports whether every dependency has completed.
func (j *Job) Ready() bool {
	for _, d := range j.dependencies {
		if !d.IsCompleted() {
			return false
		}
	}
	return true
}

func (j *Job) Dependencies() []*Job {
	deps := make([]*Job, len(j.dependencies))
	copy(deps, j.dependencies)
	return deps
}

// PendingDependencies returns the dependencies that have not completed yet.
func (j *Job) PendingDependencies() []*Job {
	var pending []*Job
	for _, d := range j.dependencies {
		if !d.IsCompleted() {
			pending = append(pending, d)
		}
	}
	return pending
}

// Err returns the error produced by the executor, or nil while the job has
// not completed.
func (j *Job) Err() error {
	if !j.completed.Load() {
		return nil
	}
	return j.err
}

func (j *Job) Panicked() bool {
	var pe *PanicError
	return errors.As(j.Err(), &pe)
}

// NotifyOnComplete arranges for n to be notified when the job completes.
// If the job is already completed, n is notified right away. Registering the
// same notifier twice has no extra effect.
func (j *Job) NotifyOnComplete(n *notifier.Notifier) {
	if n == nil {
		return
	}

	j.mu.Lock()
	if j.completed.Load() {
		j.mu.Unlock()
		n.Notify()
		return
	}
	if j.waiters == nil {
		j.waiters = make(map[*notifier.Notifier]struct{})
	}
	j.waiters[n] = struct{}{}
	j.mu.Unlock()
}

func (j *Job) complete() {
	j.completed.Store(true)

	j.mu.Lock()
	waiters := j.waiters
	j.waiters = nil
	j.mu.Unlock()

	for n := range waiters {
		n.Notify()
	}
}

func (j *Job) markSubmitted() {
	j.submitted.Store(true)
}
