package jobs_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andgen/jobsystem/pkg/jobs"
)

var _ = Describe("Retry", func() {
	policy := jobs.RetryPolicy{
		MaxTries:        3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}

	It("should succeed once an attempt succeeds", func() {
		attempts := 0
		exec := jobs.Retry(jobs.Func(func() error {
			attempts++
			if attempts < 2 {
				return errors.New("transient")
			}
			return nil
		}), policy)

		job := jobs.New(exec)
		job.Run()

		Expect(job.Err()).To(BeNil())
		Expect(attempts).To(Equal(2))
	})

	It("should give up after MaxTries", func() {
		attempts := 0
		job := jobs.New(jobs.Retry(jobs.Func(func() error {
			attempts++
			return errors.New("still failing")
		}), policy))

		job.Run()

		Expect(job.IsCompleted()).To(BeTrue())
		Expect(job.Err()).To(MatchError("still failing"))
		Expect(attempts).To(Equal(3))
	})

	It("should not retry a permanent error", func() {
		attempts := 0
		job := jobs.New(jobs.Retry(jobs.Func(func() error {
			attempts++
			return jobs.Permanent(errors.New("fatal"))
		}), policy))

		job.Run()

		Expect(attempts).To(Equal(1))
		Expect(job.Err()).To(MatchError(ContainSubstring("fatal")))
	})
})
