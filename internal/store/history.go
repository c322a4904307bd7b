package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/andgen/jobsystem/pkg/jobs"
)

// HistoryStore keeps one row per executed job.
type HistoryStore struct {
	db QueryInterceptor
}

func NewHistoryStore(db QueryInterceptor) *HistoryStore {
	return &HistoryStore{db: db}
}

// Record stores r. A record for a job that is already stored is ignored.
func (s *HistoryStore) Record(ctx context.Context, r jobs.Record) error {
	query, args, err := sq.Insert(tableJobHistory).
		Columns(historyColumns...).
		Values(
			r.JobID,
			r.Name,
			r.Worker,
			r.StartedAt.UTC(),
			r.FinishedAt.UTC(),
			r.Duration.Microseconds(),
			r.Error,
			r.Panicked,
		).
		Suffix("ON CONFLICT (job_id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record job %s: %w", r.JobID, err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, opts ...ListOption) ([]jobs.Record, error) {
	builder := sq.Select(historyColumns...).From(tableJobHistory)

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []jobs.Record
	for rows.Next() {
		var r jobs.Record
		var durationUS int64
		err := rows.Scan(
			&r.JobID,
			&r.Name,
			&r.Worker,
			&r.StartedAt,
			&r.FinishedAt,
			&durationUS,
			&r.Error,
			&r.Panicked,
		)
		if err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationUS) * time.Microsecond
		records = append(records, r)
	}

	return records, rows.Err()
}

func (s *HistoryStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From(tableJobHistory)

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// WorkerSummary aggregates the history of one worker.
type WorkerSummary struct {
	Worker      string
	Total       int
	Failed      int
	AvgDuration time.Duration
}

func (s *HistoryStore) Summary(ctx context.Context) ([]WorkerSummary, error) {
	rows, err := s.db.QueryContext(ctx, queryHistorySummary)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []WorkerSummary
	for rows.Next() {
		var ws WorkerSummary
		var avgUS float64
		if err := rows.Scan(&ws.Worker, &ws.Total, &ws.Failed, &avgUS); err != nil {
			return nil, err
		}
		ws.AvgDuration = time.Duration(avgUS) * time.Microsecond
		summaries = append(summaries, ws)
	}

	return summaries, rows.Err()
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, queryDeleteHistory)
	return err
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByWorkers(workers ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(workers) == 0 {
			return b
		}
		return b.Where(sq.Eq{"worker": workers})
	}
}

func ByNames(names ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"name": names})
	}
}

// ByFailed keeps failed jobs when failed is true and successful ones otherwise.
func ByFailed(failed bool) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if failed {
			return b.Where(sq.NotEq{"error": ""})
		}
		return b.Where(sq.Eq{"error": ""})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("finished_at", "job_id")
	}
}
