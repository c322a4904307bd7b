package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/worker"
)

const defaultRecordTimeout = 5 * time.Second

// Recorder is a worker.Observer writing every finished job to the history.
type Recorder struct {
	history *HistoryStore
	timeout time.Duration
}

var _ worker.Observer = (*Recorder)(nil)

func NewRecorder(history *HistoryStore) *Recorder {
	return &Recorder{history: history, timeout: defaultRecordTimeout}
}

func (r *Recorder) JobFinished(record jobs.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.history.Record(ctx, record); err != nil {
		zap.S().Named("store").Errorw("failed to record job", "job", record.JobID, "worker", record.Worker, "error", err)
	}
}
