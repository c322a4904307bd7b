package metrics

import (
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/worker"
)

const defaultNamespace = "jobsystem"

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	Namespace       string
	DurationBuckets []float64
}

// Exporter turns finished job records into Prometheus metrics.
type Exporter struct {
	jobsTotal          *prom.CounterVec
	jobDurationSeconds *prom.HistogramVec
}

var _ worker.Observer = (*Exporter)(nil)

func NewExporter(reg prom.Registerer, opts ExporterOptions) (*Exporter, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	namespace := normalizeLabel(opts.Namespace, defaultNamespace)
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	totalVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_total",
		Help:      "Total number of executed jobs by outcome.",
	}, []string{"worker", "outcome"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Job execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"worker"})

	var err error
	if totalVec, err = registerCollector(reg, totalVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}

	return &Exporter{
		jobsTotal:          totalVec,
		jobDurationSeconds: durationVec,
	}, nil
}

func (e *Exporter) JobFinished(record jobs.Record) {
	if e == nil {
		return
	}
	w := normalizeLabel(record.Worker, "unknown")
	e.jobsTotal.WithLabelValues(w, outcome(record)).Inc()
	e.jobDurationSeconds.WithLabelValues(w).Observe(record.Duration.Seconds())
}

func outcome(record jobs.Record) string {
	switch {
	case record.Panicked:
		return "panicked"
	case record.Failed():
		return "failed"
	default:
		return "succeeded"
	}
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
