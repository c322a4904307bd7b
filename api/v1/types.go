// Package v1 holds the JSON types of the /api/v1 HTTP API.
package v1

import "time"

type WorkerStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Pending int    `json:"pending"`
}

type PoolStatus struct {
	Name    string         `json:"name"`
	Size    int            `json:"size"`
	Pending int            `json:"pending"`
	Running int            `json:"running"`
	Idle    int            `json:"idle"`
	Workers []WorkerStatus `json:"workers"`
}

// WorkloadRequest is the body of POST /workloads. Durations use Go duration
// syntax ("10ms", "1s").
type WorkloadRequest struct {
	Kind          string `json:"kind" binding:"required"`
	Count         int    `json:"count" binding:"required,min=1"`
	Duration      string `json:"duration,omitempty"`
	FailEvery     int    `json:"fail_every,omitempty"`
	Retries       uint   `json:"retries,omitempty"`
	RetryInterval string `json:"retry_interval,omitempty"`
}

type Workload struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
	Total       int       `json:"total"`
	Completed   int       `json:"completed"`
	Failed      int       `json:"failed"`
	JobIDs      []string  `json:"job_ids"`
}

type WorkloadList struct {
	Workloads []Workload `json:"workloads"`
}

type HistoryRecord struct {
	JobID      string    `json:"job_id"`
	Name       string    `json:"name"`
	Worker     string    `json:"worker"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs float64   `json:"duration_ms"`
	Error      *string   `json:"error,omitempty"`
	Panicked   bool      `json:"panicked"`
}

type HistoryList struct {
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Records []HistoryRecord `json:"records"`
}

type WaitResponse struct {
	Drained bool       `json:"drained"`
	Pool    PoolStatus `json:"pool"`
}

type Error struct {
	Error string `json:"error"`
}
