package store_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andgen/jobsystem/internal/store"
	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/scheduler"
)

var _ = Describe("HistoryStore", func() {
	var (
		ctx context.Context
		s   *store.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		s, err = store.Open(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if s != nil {
			s.Close()
		}
	})

	newRecord := func(id, worker string, finished time.Time, errText string) jobs.Record {
		return jobs.Record{
			JobID:      id,
			Name:       "job-" + id,
			Worker:     worker,
			StartedAt:  finished.Add(-20 * time.Millisecond),
			FinishedAt: finished,
			Duration:   20 * time.Millisecond,
			Error:      errText,
		}
	}

	Context("Record", func() {
		// Given an empty history
		// When we record a job
		// Then it should be listed with all its fields
		It("should store a record", func() {
			// Arrange
			finished := time.Now().UTC().Truncate(time.Microsecond)
			r := newRecord("1", "pool-0", finished, "boom")
			r.Panicked = true

			// Act
			err := s.History().Record(ctx, r)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			records, err := s.History().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].JobID).To(Equal("1"))
			Expect(records[0].Name).To(Equal("job-1"))
			Expect(records[0].Worker).To(Equal("pool-0"))
			Expect(records[0].Duration).To(Equal(20 * time.Millisecond))
			Expect(records[0].Error).To(Equal("boom"))
			Expect(records[0].Panicked).To(BeTrue())
			Expect(records[0].FinishedAt).To(BeTemporally("~", finished, time.Millisecond))
		})

		// Given a recorded job
		// When the same job is recorded again
		// Then the history should still hold a single row
		It("should ignore a duplicate record", func() {
			r := newRecord("1", "pool-0", time.Now(), "")
			Expect(s.History().Record(ctx, r)).To(Succeed())
			Expect(s.History().Record(ctx, r)).To(Succeed())

			count, err := s.History().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			base := time.Now().UTC()
			for i := range 6 {
				w := fmt.Sprintf("pool-%d", i%2)
				errText := ""
				if i%3 == 0 {
					errText = "failed"
				}
				r := newRecord(fmt.Sprintf("%02d", i), w, base.Add(time.Duration(i)*time.Second), errText)
				Expect(s.History().Record(ctx, r)).To(Succeed())
			}
		})

		It("should filter by worker", func() {
			records, err := s.History().List(ctx, store.ByWorkers("pool-1"), store.WithDefaultSort())
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			for _, r := range records {
				Expect(r.Worker).To(Equal("pool-1"))
			}
		})

		It("should filter by outcome", func() {
			failed, err := s.History().Count(ctx, store.ByFailed(true))
			Expect(err).NotTo(HaveOccurred())
			Expect(failed).To(Equal(2))

			succeeded, err := s.History().Count(ctx, store.ByFailed(false))
			Expect(err).NotTo(HaveOccurred())
			Expect(succeeded).To(Equal(4))
		})

		It("should filter by name", func() {
			records, err := s.History().List(ctx, store.ByNames("job-04"))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].JobID).To(Equal("04"))
		})

		It("should paginate in finish order", func() {
			records, err := s.History().List(ctx, store.WithDefaultSort(), store.WithLimit(2), store.WithOffset(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].JobID).To(Equal("02"))
			Expect(records[1].JobID).To(Equal("03"))
		})

		It("should summarize per worker", func() {
			summaries, err := s.History().Summary(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(2))
			Expect(summaries[0].Worker).To(Equal("pool-0"))
			Expect(summaries[0].Total).To(Equal(3))
			Expect(summaries[0].Failed).To(Equal(1))
			Expect(summaries[0].AvgDuration).To(Equal(20 * time.Millisecond))
			Expect(summaries[1].Worker).To(Equal("pool-1"))
			Expect(summaries[1].Failed).To(Equal(1))
		})

		It("should clear the history", func() {
			Expect(s.History().Clear(ctx)).To(Succeed())

			count, err := s.History().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(0))
		})
	})

	Context("Recorder", func() {
		// Given a pool observed by a recorder
		// When jobs run
		// Then each execution should be in the history
		It("should record jobs executed by a pool", func() {
			pool, err := scheduler.NewPool(2, scheduler.WithName("rec"), scheduler.WithObserver(store.NewRecorder(s.History())))
			Expect(err).NotTo(HaveOccurred())
			defer pool.Close()

			for i := range 10 {
				job := jobs.NewFunc(func() error {
					if i == 0 {
						return errors.New("first one fails")
					}
					return nil
				})
				Expect(pool.QueueJob(job)).To(Succeed())
			}
			pool.WaitForThreads()

			count, err := s.History().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(10))

			failed, err := s.History().List(ctx, store.ByFailed(true))
			Expect(err).NotTo(HaveOccurred())
			Expect(failed).To(HaveLen(1))
			Expect(failed[0].Error).To(Equal("first one fails"))
			Expect(failed[0].Worker).To(HavePrefix("rec-"))
		})
	})
})
