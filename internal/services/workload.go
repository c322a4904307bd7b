package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andgen/jobsystem/internal/models"
	"github.com/andgen/jobsystem/internal/workload"
	srvErrors "github.com/andgen/jobsystem/pkg/errors"
	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/scheduler"
)

const defaultRetention = 256

// Pool is the part of *scheduler.Pool the service needs.
type Pool interface {
	QueueJobs(batch ...*jobs.Job) error
	WaitForThreadsContext(ctx context.Context) error
	Stats() scheduler.Stats
}

type submission struct {
	id          string
	kind        workload.Kind
	submittedAt time.Time
	jobs        []*jobs.Job
}

type WorkloadService struct {
	pool      Pool
	retention int

	mu          sync.Mutex
	submissions map[string]*submission
	order       []string
}

func NewWorkloadService(pool Pool) *WorkloadService {
	return &WorkloadService{
		pool:        pool,
		retention:   defaultRetention,
		submissions: make(map[string]*submission),
	}
}

// WithRetention sets how many submissions are remembered. Finished
// submissions beyond that number are forgotten oldest first.
func (w *WorkloadService) WithRetention(n int) *WorkloadService {
	if n > 0 {
		w.retention = n
	}
	return w
}

// Submit builds the workload described by spec and queues it on the pool.
//
// If the pool refuses a job part way, the jobs queued so far are kept as a
// submission of their own: the returned Submission holds them and the error
// is returned alongside it. An empty Submission means nothing was queued.
func (w *WorkloadService) Submit(spec workload.Spec) (models.Submission, error) {
	built, err := workload.Build(spec)
	if err != nil {
		return models.Submission{}, err
	}

	kind, _ := workload.ParseKind(string(spec.Kind))

	queued := 0
	var queueErr error
	for _, job := range built {
		if queueErr = w.pool.QueueJobs(job); queueErr != nil {
			break
		}
		queued++
	}
	if queued == 0 {
		return models.Submission{}, fmt.Errorf("failed to queue workload: %w", queueErr)
	}

	s := &submission{
		id:          uuid.NewString(),
		kind:        kind,
		submittedAt: time.Now().UTC(),
		jobs:        built[:queued],
	}

	w.mu.Lock()
	w.submissions[s.id] = s
	w.order = append(w.order, s.id)
	w.evictLocked()
	w.mu.Unlock()

	if queueErr != nil {
		zap.S().Named("workload_service").Errorw("workload partially queued", "id", s.id, "kind", s.kind, "queued", queued, "jobs", len(built), "error", queueErr)
		return s.snapshot(), fmt.Errorf("failed to queue workload %s after %d of %d jobs: %w", s.id, queued, len(built), queueErr)
	}

	zap.S().Named("workload_service").Infow("workload submitted", "id", s.id, "kind", s.kind, "jobs", len(built))

	return s.snapshot(), nil
}

func (w *WorkloadService) Get(id string) (models.Submission, error) {
	w.mu.Lock()
	s, ok := w.submissions[id]
	w.mu.Unlock()

	if !ok {
		return models.Submission{}, srvErrors.NewResourceNotFoundError("workload", id)
	}
	return s.snapshot(), nil
}

// List returns the remembered submissions, oldest first.
func (w *WorkloadService) List() []models.Submission {
	w.mu.Lock()
	all := make([]*submission, 0, len(w.order))
	for _, id := range w.order {
		all = append(all, w.submissions[id])
	}
	w.mu.Unlock()

	result := make([]models.Submission, 0, len(all))
	for _, s := range all {
		result = append(result, s.snapshot())
	}
	return result
}

// Wait blocks until the pool has drained or ctx is done.
func (w *WorkloadService) Wait(ctx context.Context) error {
	return w.pool.WaitForThreadsContext(ctx)
}

func (w *WorkloadService) Stats() scheduler.Stats {
	return w.pool.Stats()
}

func (w *WorkloadService) evictLocked() {
	for len(w.order) > w.retention {
		i := slices.IndexFunc(w.order, func(id string) bool {
			return w.submissions[id].finished()
		})
		if i < 0 {
			return
		}
		delete(w.submissions, w.order[i])
		w.order = slices.Delete(w.order, i, i+1)
	}
}

func (s *submission) finished() bool {
	for _, j := range s.jobs {
		if !j.IsCompleted() {
			return false
		}
	}
	return true
}

func (s *submission) snapshot() models.Submission {
	m := models.Submission{
		ID:          s.id,
		Kind:        string(s.kind),
		JobIDs:      make([]string, 0, len(s.jobs)),
		SubmittedAt: s.submittedAt,
	}
	for _, j := range s.jobs {
		m.JobIDs = append(m.JobIDs, j.ID())
		if !j.IsCompleted() {
			continue
		}
		m.Completed++
		if j.Err() != nil {
			m.Failed++
		}
	}

	switch {
	case m.Completed < m.Total():
		m.State = models.SubmissionStateRunning
	case m.Failed > 0:
		m.State = models.SubmissionStateFailed
	default:
		m.State = models.SubmissionStateCompleted
	}
	return m
}
