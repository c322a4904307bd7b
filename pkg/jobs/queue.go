package jobs

import (
	"sync"

	"github.com/andgen/jobsystem/pkg/notifier"
)

const (
	defaultQueueCap = 16
	compactMinCap   = 64 // don't reallocate small backing arrays
)

// Queue is a thread-safe FIFO of pending jobs.
//
// Jobs whose dependencies are not completed are skipped by Next and keep
// their place in the queue; they are re-examined on every later call.
type Queue struct {
	mu   sync.Mutex
	jobs []*Job
}

func NewQueue() *Queue {
	return &Queue{
		jobs: make([]*Job, 0, defaultQueueCap),
	}
}

// AddJob appends job to the tail of the queue. A nil job is ignored.
func (q *Queue) AddJob(job *Job) {
	if job == nil {
		return
	}
	job.markSubmitted()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

// AddJobQueue appends the current contents of other, in order, to the tail of
// this queue. other is left untouched.
func (q *Queue) AddJobQueue(other *Queue) {
	if other == nil {
		return
	}

	// snapshot first so both locks are never held together
	batch := other.Jobs()
	if len(batch) == 0 {
		return
	}
	for _, job := range batch {
		job.markSubmitted()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, batch...)
}

// Next removes and returns the earliest job that is ready to run.
func (q *Queue) Next() (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, job := range q.jobs {
		if !job.Ready() {
			continue
		}
		q.removeLocked(i)
		return job, true
	}
	return nil, false
}

// ExecuteNextJob runs the earliest ready job on the calling goroutine and
// reports whether a job was run.
func (q *Queue) ExecuteNextJob() bool {
	job, ok := q.Next()
	if !ok {
		return false
	}
	job.Run()
	return true
}

// NotifyOnProgress registers n on every unfinished dependency of the queued
// jobs, so that n is notified as soon as one of the blocked jobs may have
// become ready. If a queued job is already ready, n is notified right away:
// its last dependency completed after the caller looked at the queue.
func (q *Queue) NotifyOnProgress(n *notifier.Notifier) {
	q.mu.Lock()
	ready := false
	seen := make(map[*Job]struct{})
	var blockers []*Job
	for _, job := range q.jobs {
		pending := job.PendingDependencies()
		if len(pending) == 0 {
			ready = true
			break
		}
		for _, dep := range pending {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			blockers = append(blockers, dep)
		}
	}
	q.mu.Unlock()

	if ready {
		n.Notify()
		return
	}
	// a dependency completing from here on is caught by NotifyOnComplete
	for _, dep := range blockers {
		dep.NotifyOnComplete(n)
	}
}

// Clear drops every pending job. A job already taken by Next is unaffected.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = make([]*Job, 0, defaultQueueCap)
}

func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) IsEmpty() bool {
	return q.Count() == 0
}

// Jobs returns the queued jobs in dequeue order.
func (q *Queue) Jobs() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]*Job, len(q.jobs))
	copy(jobs, q.jobs)
	return jobs
}

func (q *Queue) removeLocked(i int) {
	n := len(q.jobs)
	if i == 0 {
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
	} else {
		copy(q.jobs[i:], q.jobs[i+1:])
		q.jobs[n-1] = nil
		q.jobs = q.jobs[:n-1]
	}

	if len(q.jobs) == 0 && cap(q.jobs) >= compactMinCap {
		q.jobs = make([]*Job, 0, defaultQueueCap)
	}
}
