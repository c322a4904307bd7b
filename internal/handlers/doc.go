// Package handlers implements the /api/v1 HTTP endpoints on top of gin.
//
// # Endpoints
//
//	GET  /pool            pool status with per-worker state
//	POST /pool/wait       barrier wait, ?timeout=10s (default 30s, max 5m)
//	GET  /workloads       remembered workloads
//	POST /workloads       submit a synthetic workload, 202 Accepted
//	GET  /workloads/:id   progress of one workload
//	GET  /history         executed jobs, ?limit=&offset=&worker=&failed=
//
// # Error Mapping
//
//	InvalidArgumentError    → 400
//	ResourceNotFoundError   → 404
//	ErrPoolClosed           → 503
//	anything else           → 500 (logged)
//
// A wait that times out is not an error: it returns 200 with drained=false.
// GET /history returns 404 when the server runs without a history store.
package handlers
