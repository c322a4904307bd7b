// Package scheduler implements a fixed-size worker pool for jobs with dependencies.
//
// The pool owns N workers. Each worker has its own FIFO queue and a dedicated
// goroutine draining it. Jobs are submitted to the pool, which hands each one
// to the least loaded worker. Workers are never exposed to callers; the pool
// only reports their status and queue length by index.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                              Pool                                   │
//	│                                                                     │
//	│                         QueueJob(job)                               │
//	│                               │                                     │
//	│                        ┌──────┴───────┐                             │
//	│                        │ leastLoaded()│                             │
//	│                        └──────┬───────┘                             │
//	│         ┌─────────────────────┼─────────────────────┐               │
//	│         ▼                     ▼                     ▼               │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │   Worker 0   │      │   Worker 1   │      │  Worker N-1  │       │
//	│  │ [j1][j4]     │      │ [j2]         │      │ [j3][j5]     │       │
//	│  │  goroutine   │      │  goroutine   │      │  goroutine   │       │
//	│  └──────────────┘      └──────────────┘      └──────────────┘       │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Core Components
//
// Pool:
//   - Creates and starts N workers at construction; the size never changes
//   - Dispatches each job to the worker with the smallest load (queued jobs
//     plus the job being executed), the lowest index winning ties
//   - Aggregates worker status: Size, PendingJobsCount, RunningCount, IdleCount
//   - Provides a barrier, WaitForThreads, for all work submitted so far
//   - Stops and joins every worker on Close
//
// Worker (package worker):
//   - Runs the earliest ready job of its queue, one at a time
//   - Parks on a notifier when nothing is ready and wakes on new work, on a
//     dependency completing, or on Stop
//   - Reports Stopped, Idle or ExecutingJobs
//
// Job (package jobs):
//   - Runs at most once, and only after all its dependencies completed
//   - Is completed whether it succeeds, fails or panics
//
// # Job Execution Flow
//
//  1. Client creates jobs and declares dependencies with Schedule
//     │
//     ▼
//  2. Client calls pool.QueueJob(job)
//     │
//     ▼
//  3. The pool picks the least loaded worker and appends the job to its queue
//     │
//     ▼
//  4. The worker loop takes the earliest job whose dependencies completed:
//     - Blocked jobs keep their place in the queue
//     - If only blocked jobs remain, the worker registers itself on their
//     dependencies and parks until one completes
//     │
//     ▼
//  5. The job runs on the worker goroutine and is marked completed
//     │
//     ▼
//  6. When the queue is empty and nothing runs, WaitForQueue waiters are released
//
// # Dependencies Across Workers
//
// Dependencies may live on any worker. A blocked job never stops the jobs
// queued behind it:
//
//	Worker 0: [c(needs a)] [d]     d runs first, c waits
//	Worker 1: [a]                  a completes ──► Worker 0 wakes, runs c
//
// Cycles are not detected. Jobs in a cycle never become ready and the barrier
// never returns for the workers holding them.
//
// # Futures
//
// AddWork wraps a function into a job and returns a Future that receives
// exactly one result:
//
//	first := pool.AddWork(func(ctx context.Context) (any, error) {
//	    return fetch(ctx)
//	})
//	second := pool.AddWork(func(ctx context.Context) (any, error) {
//	    return transform(ctx)
//	}, first.Job())
//
//	result := <-second.C()
//	if result.Err != nil {
//	    // Handle error
//	}
//
// A panic in the function is recovered and delivered as the result error.
// The context passed to the function is cancelled when the pool closes.
//
// # Zero Workers
//
// NewPool(0) is valid. Such a pool runs every submitted job on the calling
// goroutine, inside QueueJob. Jobs that are blocked at that time are run by a
// later QueueJob or WaitForThreads call.
//
// # Graceful Shutdown
//
// Close():
//
//  1. Rejects further submissions with ErrPoolClosed
//  2. Cancels the context handed to AddWork functions
//  3. Asks every worker to stop, then waits for each goroutine to exit
//
// A job that is executing finishes; queued jobs are not run. Call
// WaitForThreads first to let all submitted work complete. Close is
// idempotent.
//
// # Usage Example
//
//	pool, err := scheduler.NewPool(scheduler.IdealThreadCount())
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	load := jobs.NewFunc(loadData)
//	report := jobs.NewFunc(buildReport)
//	_ = report.Schedule(load)
//
//	_ = pool.QueueJobs(report, load)
//	pool.WaitForThreads()
package scheduler
