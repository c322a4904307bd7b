package models

import (
	"fmt"
	"time"
)

type SubmissionState string

const (
	SubmissionStateRunning   SubmissionState = "running"
	SubmissionStateCompleted SubmissionState = "completed"
	// SubmissionStateFailed means every job finished and at least one failed.
	SubmissionStateFailed SubmissionState = "failed"
)

func ParseSubmissionState(s string) (SubmissionState, error) {
	switch s {
	case "running":
		return SubmissionStateRunning, nil
	case "completed":
		return SubmissionStateCompleted, nil
	case "failed":
		return SubmissionStateFailed, nil
	default:
		return "", fmt.Errorf("invalid submission state: %s", s)
	}
}

func (s SubmissionState) Value() string {
	return string(s)
}

// Submission is a workload handed to the pool in one call.
type Submission struct {
	ID          string
	Kind        string
	JobIDs      []string
	SubmittedAt time.Time
	State       SubmissionState
	Completed   int
	Failed      int
}

// Total is the number of jobs in the submission.
func (s Submission) Total() int {
	return len(s.JobIDs)
}
