package jobs

import "time"

// Record describes one finished job execution.
type Record struct {
	JobID      string
	Name       string
	Worker     string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Error      string
	Panicked   bool
}

func NewRecord(job *Job, worker string, startedAt, finishedAt time.Time) Record {
	r := Record{
		JobID:      job.ID(),
		Name:       job.Name(),
		Worker:     worker,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Panicked:   job.Panicked(),
	}
	if err := job.Err(); err != nil {
		r.Error = err.Error()
	}
	return r
}

func (r Record) Failed() bool {
	return r.Error != ""
}
