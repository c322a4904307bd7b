package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andgen/jobsystem/internal/models"
	"github.com/andgen/jobsystem/internal/services"
	"github.com/andgen/jobsystem/internal/store"
	"github.com/andgen/jobsystem/internal/workload"
	"github.com/andgen/jobsystem/pkg/scheduler"
	"github.com/andgen/jobsystem/pkg/worker"
)

type runOptions struct {
	kind          string
	count         int
	duration      time.Duration
	failEvery     int
	retries       uint
	retryInterval time.Duration
	timeout       time.Duration
}

func newRunCommand(a *app) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a synthetic workload on a pool and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.kind, "workload", string(workload.KindDiamond), fmt.Sprintf("workload shape, one of %v", workload.Kinds()))
	flags.IntVar(&opts.count, "count", 16, "number of jobs in the workload body")
	flags.DurationVar(&opts.duration, "duration", 10*time.Millisecond, "time each job sleeps")
	flags.IntVar(&opts.failEvery, "fail-every", 0, "make every n-th job fail its first attempt, 0 to disable")
	flags.UintVar(&opts.retries, "retries", 0, "extra attempts given to failing jobs")
	flags.DurationVar(&opts.retryInterval, "retry-interval", 10*time.Millisecond, "initial backoff between attempts")
	flags.DurationVar(&opts.timeout, "timeout", 0, "give up waiting after this long, 0 waits forever")

	return cmd
}

func (a *app) run(cmd *cobra.Command, opts runOptions) error {
	kind, err := workload.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	spec := workload.Spec{
		Kind:          kind,
		Count:         opts.count,
		Duration:      opts.duration,
		FailEvery:     opts.failEvery,
		Retries:       opts.retries,
		RetryInterval: opts.retryInterval,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	t := newTally()
	observers := []worker.Observer{t}

	if a.cfg.Store.Path != "" {
		st, err := store.Open(ctx, a.cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer st.Close()
		observers = append(observers, store.NewRecorder(st.History()))
	}

	pool, err := scheduler.NewPool(a.cfg.Workers(),
		scheduler.WithName(a.cfg.Pool.Name),
		scheduler.WithObserver(worker.Observers(observers...)),
	)
	if err != nil {
		return err
	}
	defer pool.Close()

	srv := services.NewWorkloadService(pool)

	started := time.Now()
	sub, err := srv.Submit(spec)
	if err != nil {
		return err
	}

	waitCtx := ctx
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	drained := true
	if err := srv.Wait(waitCtx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		drained = false
		zap.S().Named("cmd").Infow("workload did not finish in time", "timeout", opts.timeout)
	}
	elapsed := time.Since(started)

	if sub, err = srv.Get(sub.ID); err != nil {
		return err
	}

	summary{
		sub:     sub,
		pool:    pool.Name(),
		size:    pool.Size(),
		elapsed: elapsed,
		drained: drained,
		workers: t.snapshot(),
	}.print(cmd.OutOrStdout())

	switch {
	case !drained:
		return errors.New("workload timed out")
	case sub.State == models.SubmissionStateFailed:
		return fmt.Errorf("%d of %d jobs failed", sub.Failed, sub.Total())
	}
	return nil
}
