package jobs

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// RetryPolicy controls how Retry re-runs a failing executor.
type RetryPolicy struct {
	// MaxTries counts the first attempt; 0 means no limit other than MaxElapsedTime.
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsedTime of 0 keeps the backoff library default.
	MaxElapsedTime time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:        3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Retry wraps exec so that a failing attempt is retried with exponential
// backoff. The retries happen inside a single execution of the job: the
// scheduler still runs the job once and marks it completed afterwards.
func Retry(exec Executor, policy RetryPolicy) Executor {
	return Func(func() error {
		if exec == nil {
			return nil
		}

		b := backoff.NewExponentialBackOff()
		if policy.InitialInterval > 0 {
			b.InitialInterval = policy.InitialInterval
		}
		if policy.MaxInterval > 0 {
			b.MaxInterval = policy.MaxInterval
		}

		opts := []backoff.RetryOption{
			backoff.WithBackOff(b),
			backoff.WithNotify(func(err error, next time.Duration) {
				zap.S().Named("job").Debugw("job attempt failed, retrying", "error", err, "next", next)
			}),
		}
		if policy.MaxTries > 0 {
			opts = append(opts, backoff.WithMaxTries(policy.MaxTries))
		}
		if policy.MaxElapsedTime > 0 {
			opts = append(opts, backoff.WithMaxElapsedTime(policy.MaxElapsedTime))
		}

		_, err := backoff.Retry(context.Background(), func() (struct{}, error) {
			return struct{}{}, exec.Execute()
		}, opts...)
		return err
	})
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
