package main

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/andgen/jobsystem/internal/models"
	"github.com/andgen/jobsystem/internal/util"
	"github.com/andgen/jobsystem/pkg/jobs"
)

// tally counts executed jobs per worker. It is a worker.Observer.
type tally struct {
	mu      sync.Mutex
	workers map[string]*workerTally
}

type workerTally struct {
	name   string
	jobs   int
	failed int
	busy   time.Duration
}

func newTally() *tally {
	return &tally{workers: make(map[string]*workerTally)}
}

func (t *tally) JobFinished(r jobs.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.workers[r.Worker]
	if !ok {
		w = &workerTally{name: r.Worker}
		t.workers[r.Worker] = w
	}
	w.jobs++
	w.busy += r.Duration
	if r.Failed() {
		w.failed++
	}
}

func (t *tally) snapshot() []workerTally {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]workerTally, 0, len(t.workers))
	for _, w := range t.workers {
		out = append(out, *w)
	}
	slices.SortFunc(out, func(a, b workerTally) int {
		if a.name < b.name {
			return -1
		}
		if a.name > b.name {
			return 1
		}
		return 0
	})
	return out
}

type summary struct {
	sub     models.Submission
	pool    string
	size    int
	elapsed time.Duration
	drained bool
	workers []workerTally
}

func (s summary) print(out io.Writer) {
	bold := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	warn := color.New(color.FgYellow)

	bold.Fprintf(out, "Workload ")
	fmt.Fprintf(out, "%s (%d jobs) on pool %q with %d workers\n", s.sub.Kind, s.sub.Total(), s.pool, s.size)
	bold.Fprintf(out, "Elapsed  ")
	fmt.Fprintf(out, "%s\n", s.elapsed.Round(time.Millisecond))

	bold.Fprintf(out, "Result   ")
	switch {
	case !s.drained:
		warn.Fprintf(out, "timed out")
	case s.sub.State == models.SubmissionStateFailed:
		bad.Fprintf(out, "%s", s.sub.State.Value())
	default:
		ok.Fprintf(out, "%s", s.sub.State.Value())
	}
	fmt.Fprintf(out, "  %d/%d done (%.2f%%), %d failed\n",
		s.sub.Completed, s.sub.Total(), util.Percent(s.sub.Completed, s.sub.Total()), s.sub.Failed)

	if len(s.workers) == 0 {
		return
	}
	bold.Fprintln(out, "Workers")
	for _, w := range s.workers {
		fmt.Fprintf(out, "  %-16s %5d jobs  busy %-10s", w.name, w.jobs, w.busy.Round(time.Millisecond))
		if w.failed > 0 {
			bad.Fprintf(out, "  %d failed", w.failed)
		}
		fmt.Fprintln(out)
	}
}
