package worker

type Status int32

const (
	Stopped Status = iota
	Idle
	ExecutingJobs
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Idle:
		return "idle"
	case ExecutingJobs:
		return "executing_jobs"
	default:
		return "unknown"
	}
}
