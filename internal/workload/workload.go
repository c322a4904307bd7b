package workload

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/andgen/jobsystem/pkg/jobs"
	srvErrors "github.com/andgen/jobsystem/pkg/errors"
)

type Kind string

const (
	KindSleep   Kind = "sleep"
	KindChain   Kind = "chain"
	KindFanIn   Kind = "fanin"
	KindDiamond Kind = "diamond"

	MaxCount = 10000
)

var ErrInjectedFailure = errors.New("injected failure")

func Kinds() []Kind {
	return []Kind{KindSleep, KindChain, KindFanIn, KindDiamond}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", srvErrors.NewInvalidArgumentError("kind", s, fmt.Sprintf("must be one of %v", Kinds()))
}

// Spec describes a synthetic workload.
type Spec struct {
	Kind     Kind          `json:"kind"`
	Count    int           `json:"count"`
	Duration time.Duration `json:"duration"`
	// FailEvery makes every n-th job fail its first attempt. 0 disables failures.
	FailEvery int `json:"fail_every"`
	// Retries is the number of extra attempts given to each job.
	Retries       uint          `json:"retries"`
	RetryInterval time.Duration `json:"retry_interval"`
}

func (s Spec) Validate() error {
	if _, err := ParseKind(string(s.Kind)); err != nil {
		return err
	}
	if s.Count < 1 || s.Count > MaxCount {
		return srvErrors.NewInvalidArgumentError("count", s.Count, fmt.Sprintf("must be in [1, %d]", MaxCount))
	}
	if s.Duration < 0 {
		return srvErrors.NewInvalidArgumentError("duration", s.Duration, "must not be negative")
	}
	if s.FailEvery < 0 {
		return srvErrors.NewInvalidArgumentError("fail_every", s.FailEvery, "must not be negative")
	}
	return nil
}

// Size is the number of jobs Build creates for s.
func (s Spec) Size() int {
	switch s.Kind {
	case KindFanIn:
		return s.Count + 1
	case KindDiamond:
		return s.Count + 2
	default:
		return s.Count
	}
}

// Build creates the job graph described by spec. Dependencies are scheduled
// but no job is submitted.
func Build(spec Spec) ([]*jobs.Job, error) {
	if k, err := ParseKind(string(spec.Kind)); err == nil {
		spec.Kind = k
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	b := &builder{spec: spec, out: make([]*jobs.Job, 0, spec.Size())}

	switch spec.Kind {
	case KindSleep:
		for range spec.Count {
			b.add()
		}
	case KindChain:
		var prev *jobs.Job
		for range spec.Count {
			prev = b.add(prev)
		}
	case KindFanIn:
		sources := make([]*jobs.Job, 0, spec.Count)
		for range spec.Count {
			sources = append(sources, b.add())
		}
		b.addNamed(string(spec.Kind)+"-sink", sources...)
	case KindDiamond:
		root := b.addNamed(string(spec.Kind) + "-root")
		middle := make([]*jobs.Job, 0, spec.Count)
		for range spec.Count {
			middle = append(middle, b.add(root))
		}
		b.addNamed(string(spec.Kind)+"-sink", middle...)
	}

	if b.err != nil {
		return nil, b.err
	}
	return b.out, nil
}

type builder struct {
	spec Spec
	out  []*jobs.Job
	n    int
	err  error
}

func (b *builder) add(deps ...*jobs.Job) *jobs.Job {
	name := fmt.Sprintf("%s-%d", b.spec.Kind, b.n)
	b.n++
	return b.addNamed(name, deps...)
}

func (b *builder) addNamed(name string, deps ...*jobs.Job) *jobs.Job {
	job := jobs.New(b.executor(len(b.out)+1), jobs.WithName(name))
	if err := job.Schedule(deps...); err != nil && b.err == nil {
		b.err = fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	b.out = append(b.out, job)
	return job
}

// executor returns the work of the position-th job (1-based).
func (b *builder) executor(position int) jobs.Executor {
	d := b.spec.Duration
	failing := b.spec.FailEvery > 0 && position%b.spec.FailEvery == 0

	var attempts atomic.Int32
	exec := jobs.Func(func() error {
		if d > 0 {
			time.Sleep(d)
		}
		if failing && attempts.Add(1) == 1 {
			return ErrInjectedFailure
		}
		return nil
	})

	if b.spec.Retries == 0 {
		return exec
	}

	policy := jobs.DefaultRetryPolicy()
	policy.MaxTries = b.spec.Retries + 1
	if b.spec.RetryInterval > 0 {
		policy.InitialInterval = b.spec.RetryInterval
		policy.MaxInterval = b.spec.RetryInterval
	}
	return jobs.Retry(exec, policy)
}
