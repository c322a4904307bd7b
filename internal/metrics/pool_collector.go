package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/andgen/jobsystem/pkg/scheduler"
	"github.com/andgen/jobsystem/pkg/worker"
)

// StatsProvider is implemented by *scheduler.Pool.
type StatsProvider interface {
	Stats() scheduler.Stats
}

// PoolCollector reads pool statistics at scrape time.
type PoolCollector struct {
	pool StatsProvider

	workers *prom.Desc
	pending *prom.Desc
	status  *prom.Desc
}

var _ prom.Collector = (*PoolCollector)(nil)

func NewPoolCollector(namespace string, pool StatsProvider) *PoolCollector {
	namespace = normalizeLabel(namespace, defaultNamespace)
	return &PoolCollector{
		pool: pool,
		workers: prom.NewDesc(
			prom.BuildFQName(namespace, "pool", "workers"),
			"Number of workers in the pool.",
			[]string{"pool"}, nil,
		),
		pending: prom.NewDesc(
			prom.BuildFQName(namespace, "worker", "pending_jobs"),
			"Number of jobs waiting in a worker queue.",
			[]string{"pool", "worker"}, nil,
		),
		status: prom.NewDesc(
			prom.BuildFQName(namespace, "worker", "status"),
			"Current worker status (1 for the active status).",
			[]string{"pool", "worker", "status"}, nil,
		),
	}
}

// RegisterPoolCollector registers a collector for pool, reusing one that is
// already registered.
func RegisterPoolCollector(reg prom.Registerer, namespace string, pool StatsProvider) (*PoolCollector, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	return registerCollector(reg, NewPoolCollector(namespace, pool))
}

func (c *PoolCollector) Describe(ch chan<- *prom.Desc) {
	ch <- c.workers
	ch <- c.pending
	ch <- c.status
}

func (c *PoolCollector) Collect(ch chan<- prom.Metric) {
	stats := c.pool.Stats()

	ch <- prom.MustNewConstMetric(c.workers, prom.GaugeValue, float64(stats.Size), stats.Name)
	for _, w := range stats.Workers {
		ch <- prom.MustNewConstMetric(c.pending, prom.GaugeValue, float64(w.Pending), stats.Name, w.Name)
		for _, s := range []worker.Status{worker.Stopped, worker.Idle, worker.ExecutingJobs} {
			v := 0.0
			if w.Status == s {
				v = 1
			}
			ch <- prom.MustNewConstMetric(c.status, prom.GaugeValue, v, stats.Name, w.Name, s.String())
		}
	}
}
