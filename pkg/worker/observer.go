package worker

import "github.com/andgen/jobsystem/pkg/jobs"

// Observer is told about every job a worker finished executing.
// JobFinished runs on the worker goroutine and should return quickly.
type Observer interface {
	JobFinished(record jobs.Record)
}

type ObserverFunc func(record jobs.Record)

func (f ObserverFunc) JobFinished(record jobs.Record) {
	f(record)
}

type multiObserver []Observer

func (m multiObserver) JobFinished(record jobs.Record) {
	for _, o := range m {
		o.JobFinished(record)
	}
}

// Observers combines several observers into one. Nil entries are dropped.
func Observers(observers ...Observer) Observer {
	m := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	default:
		return m
	}
}
