// Package services implements the business logic between the HTTP handlers,
// the CLI and the job pool.
//
// # Service Dependency Graph
//
//	Handlers (HTTP endpoints)      CLI (run)
//	    │                             │
//	    ▼                             ▼
//	WorkloadService ─────────────────►Pool (pkg/scheduler)
//	    │
//	    └──► workload.Build (synthetic job graphs)
//
// # WorkloadService
//
// WorkloadService turns a workload.Spec into a job graph, queues it on the
// pool and remembers it under a generated ID so that its progress can be
// queried later.
//
// Submission states are derived from the jobs on every read:
//
//	┌─────────┐  all jobs done, none failed   ┌───────────┐
//	│ running │──────────────────────────────►│ completed │
//	└─────────┘                               └───────────┘
//	    │
//	    │  all jobs done, some failed         ┌────────┐
//	    └────────────────────────────────────►│ failed │
//	                                          └────────┘
//
// Key behaviors:
//   - Submit validates the workload.Spec before anything is queued
//   - Get returns a ResourceNotFoundError for unknown IDs
//   - Only finished submissions are forgotten once the retention limit is
//     reached, oldest first
//   - Wait is the pool barrier bounded by a context
//
// Usage:
//
//	srv := services.NewWorkloadService(pool)
//	sub, err := srv.Submit(workload.Spec{Kind: workload.KindChain, Count: 10})
//	err = srv.Wait(ctx)
//	sub, err = srv.Get(sub.ID)
package services
