// Package store implements the execution history of the job system.
//
// Every job a worker finishes can be written to a DuckDB table through the
// Recorder observer. The history is read back by the HTTP API and by the
// run command summary.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│                         HistoryStore                            │
//	│                              ▼                                  │
//	│                         job_history                             │
//	├─────────────────────────────────────────────────────────────────┤
//	│                QueryInterceptor (debug logging)                 │
//	└─────────────────────────────────────────────────────────────────┘
//	          ▲
//	          │ Record(ctx, jobs.Record)
//	┌─────────┴─────────┐
//	│     Recorder      │◄──── worker.Observer, called on worker goroutines
//	└───────────────────┘
//
// # Tables
//
// Tables created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  job_history       │  One row per executed job                   │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// Schema:
//
//	job_history (
//	    job_id VARCHAR PRIMARY KEY,
//	    name VARCHAR,
//	    worker VARCHAR,
//	    started_at TIMESTAMP,
//	    finished_at TIMESTAMP,
//	    duration_us BIGINT,
//	    error VARCHAR,           -- '' when the job succeeded
//	    panicked BOOLEAN,
//	    recorded_at TIMESTAMP
//	)
//
// # Initialization Flow
//
//	Open(ctx, path)
//	    ├── NewDB(path)       → sql.DB on the duckdb driver
//	    ├── migrations.Run()  → Creates job_history
//	    └── NewStore(db)
//
// # List Options
//
// HistoryStore.List uses the functional options pattern. Each ListOption is
// a function that modifies the squirrel query builder:
//
//	records, err := st.History().List(ctx,
//	    store.ByWorkers("pool-0", "pool-1"),
//	    store.ByFailed(true),
//	    store.WithDefaultSort(),
//	    store.WithLimit(50),
//	    store.WithOffset(100),
//	)
//
// Count accepts the same options; pass only filters to it.
package store
