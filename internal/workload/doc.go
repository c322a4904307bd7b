// Package workload builds synthetic job graphs used to exercise a pool from
// the CLI and the HTTP API.
//
// # Shapes
//
//	sleep:    [0] [1] [2] ... [n-1]                independent jobs
//
//	chain:    [0] ──► [1] ──► [2] ──► ... ──► [n-1]
//
//	fanin:    [0] ─┐
//	          [1] ─┼──► [sink]
//	          [2] ─┘
//
//	diamond:           ┌──► [0] ─┐
//	          [root] ──┼──► [1] ─┼──► [sink]
//	                   └──► [2] ─┘
//
// Every job sleeps for Spec.Duration. When FailEvery is set, every FailEvery-th
// job fails on its first attempt; with Retries set those jobs are wrapped in a
// retrying executor and succeed on a later attempt.
//
// Build returns the jobs in submission order: a dependency always precedes
// its dependents, but the pool does not rely on that.
package workload
