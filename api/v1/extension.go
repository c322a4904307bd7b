package v1

import (
	"fmt"
	"time"

	"github.com/andgen/jobsystem/internal/models"
	"github.com/andgen/jobsystem/internal/util"
	"github.com/andgen/jobsystem/internal/workload"
	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/scheduler"
)

func NewPoolStatus(s scheduler.Stats) PoolStatus {
	p := PoolStatus{
		Name:    s.Name,
		Size:    s.Size,
		Pending: s.Pending,
		Running: s.Running,
		Idle:    s.Idle,
		Workers: make([]WorkerStatus, 0, len(s.Workers)),
	}
	for _, w := range s.Workers {
		p.Workers = append(p.Workers, WorkerStatus{
			Name:    w.Name,
			Status:  w.Status.String(),
			Pending: w.Pending,
		})
	}
	return p
}

func NewWorkloadFromModel(m models.Submission) Workload {
	return Workload{
		ID:          m.ID,
		Kind:        m.Kind,
		State:       m.State.Value(),
		SubmittedAt: m.SubmittedAt,
		Total:       m.Total(),
		Completed:   m.Completed,
		Failed:      m.Failed,
		JobIDs:      m.JobIDs,
	}
}

func NewHistoryRecord(r jobs.Record) HistoryRecord {
	h := HistoryRecord{
		JobID:      r.JobID,
		Name:       r.Name,
		Worker:     r.Worker,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMs: util.Round(float64(r.Duration) / float64(time.Millisecond)),
		Panicked:   r.Panicked,
	}
	if r.Error != "" {
		h.Error = &r.Error
	}
	return h
}

// ToSpec converts the request into a workload spec.
func (r WorkloadRequest) ToSpec() (workload.Spec, error) {
	kind, err := workload.ParseKind(r.Kind)
	if err != nil {
		return workload.Spec{}, err
	}

	spec := workload.Spec{
		Kind:      kind,
		Count:     r.Count,
		FailEvery: r.FailEvery,
		Retries:   r.Retries,
	}
	if spec.Duration, err = parseDuration("duration", r.Duration); err != nil {
		return workload.Spec{}, err
	}
	if spec.RetryInterval, err = parseDuration("retry_interval", r.RetryInterval); err != nil {
		return workload.Spec{}, err
	}

	return spec, spec.Validate()
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return d, nil
}
