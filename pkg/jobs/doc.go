// Package jobs provides the unit of work of the job system and the per-worker
// FIFO queue that holds it.
//
// A Job wraps an Executor and may depend on other jobs:
//
//	a := jobs.NewFunc(loadConfig)
//	b := jobs.NewFunc(connect)
//	c := jobs.NewFunc(serve)
//	_ = c.Schedule(a, b) // c runs only after a and b have completed
//
// Dependencies must be declared before the job is handed to a queue. A job
// runs at most once; it is completed afterwards even if the executor returned
// an error or panicked.
//
// A Queue hands out the earliest job whose dependencies are satisfied. Blocked
// jobs stay where they are and are looked at again on the next call:
//
//	queue: [c(blocked) d e]  --Next-->  d   queue: [c e]
//
// NotifyOnProgress lets a consumer park until one of the jobs blocking the
// queue completes instead of polling it.
package jobs
