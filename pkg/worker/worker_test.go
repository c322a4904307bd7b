package worker_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/worker"
)

// gate returns a job that blocks until the returned release func is called.
func gate() (*jobs.Job, func()) {
	ch := make(chan struct{})
	var once sync.Once
	job := jobs.NewFunc(func() error {
		<-ch
		return nil
	})
	return job, func() { once.Do(func() { close(ch) }) }
}

var _ = Describe("Worker", func() {
	var w *worker.Worker

	AfterEach(func() {
		if w != nil {
			w.Stop(true)
		}
	})

	Describe("Status", func() {
		It("should follow the start, execute, stop lifecycle", func() {
			w = worker.New(worker.WithName("w0"))
			Expect(w.Status()).To(Equal(worker.Stopped))
			Expect(w.Name()).To(Equal("w0"))

			w.Start()
			Eventually(w.Status).Should(Equal(worker.Idle))

			job, release := gate()
			w.QueueJob(job)
			Eventually(w.Status).Should(Equal(worker.ExecutingJobs))

			release()
			Eventually(w.Status).Should(Equal(worker.Idle))

			w.Stop(true)
			Expect(w.Status()).To(Equal(worker.Stopped))
		})

		It("should render status names", func() {
			Expect(worker.Stopped.String()).To(Equal("stopped"))
			Expect(worker.Idle.String()).To(Equal("idle"))
			Expect(worker.ExecutingJobs.String()).To(Equal("executing_jobs"))
		})
	})

	Describe("Start and Stop", func() {
		It("should ignore a second Start", func() {
			w = worker.New()
			w.Start()
			w.Start()

			w.Stop(true)
			Expect(w.Status()).To(Equal(worker.Stopped))
		})

		It("should ignore Stop on a worker that never started", func() {
			w = worker.New()
			w.Stop(true)
			w.Stop(false)

			Expect(w.Status()).To(Equal(worker.Stopped))
		})

		It("should keep pending jobs across a restart", func() {
			w = worker.New()
			w.Start()
			w.Stop(false)
			w.Stop(true)

			done := make(chan struct{})
			w.QueueJob(jobs.NewFunc(func() error {
				close(done)
				return nil
			}))
			Consistently(done, 50*time.Millisecond).ShouldNot(BeClosed())
			Expect(w.Pending()).To(Equal(1))

			w.Start()
			Eventually(done, time.Second).Should(BeClosed())
		})

		It("should restart right after a non-blocking stop", func() {
			w = worker.New()
			w.Start()
			w.Stop(false)
			w.Start()

			done := make(chan struct{})
			w.QueueJob(jobs.NewFunc(func() error {
				close(done)
				return nil
			}))
			Eventually(done, time.Second).Should(BeClosed())
		})
	})

	Describe("QueueJob", func() {
		It("should execute jobs in FIFO order", func() {
			w = worker.New()
			w.Start()

			var mu sync.Mutex
			var order []int
			for i := range 50 {
				w.QueueJob(jobs.NewFunc(func() error {
					mu.Lock()
					defer mu.Unlock()
					order = append(order, i)
					return nil
				}))
			}
			w.WaitForQueue()

			mu.Lock()
			defer mu.Unlock()
			Expect(order).To(HaveLen(50))
			for i := range order {
				Expect(order[i]).To(Equal(i))
			}
		})

		It("should ignore a nil job", func() {
			w = worker.New()
			w.Start()
			w.QueueJob(nil)

			Expect(w.Pending()).To(Equal(0))
			w.WaitForQueue()
		})

		It("should merge a queue of jobs", func() {
			w = worker.New()
			q := jobs.NewQueue()
			a, b := jobs.New(nil), jobs.New(nil)
			q.AddJob(a)
			q.AddJob(b)

			w.QueueJobs(q)
			Expect(w.Pending()).To(Equal(2))

			w.Start()
			w.WaitForQueue()
			Expect(a.IsCompleted()).To(BeTrue())
			Expect(b.IsCompleted()).To(BeTrue())
			Expect(q.Count()).To(Equal(2))
		})
	})

	Describe("WaitForQueue", func() {
		It("should return at once for an empty running worker", func() {
			w = worker.New()
			w.Start()

			done := make(chan struct{})
			go func() {
				w.WaitForQueue()
				close(done)
			}()
			Eventually(done, time.Second).Should(BeClosed())
		})

		It("should return at once for a stopped worker with pending jobs", func() {
			w = worker.New()
			w.QueueJob(jobs.New(nil))

			done := make(chan struct{})
			go func() {
				w.WaitForQueue()
				close(done)
			}()
			Eventually(done, time.Second).Should(BeClosed())
			Expect(w.Pending()).To(Equal(1))
		})

		It("should wait for the executing job, not only the queue", func() {
			w = worker.New()
			w.Start()
			job, release := gate()
			w.QueueJob(job)
			Eventually(w.Pending).Should(Equal(0))

			done := make(chan struct{})
			go func() {
				w.WaitForQueue()
				close(done)
			}()
			Consistently(done, 100*time.Millisecond).ShouldNot(BeClosed())

			release()
			Eventually(done, time.Second).Should(BeClosed())
			Expect(job.IsCompleted()).To(BeTrue())
		})

		It("should release every concurrent waiter", func() {
			w = worker.New()
			w.Start()
			job, release := gate()
			w.QueueJob(job)

			var wg sync.WaitGroup
			for range 4 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					w.WaitForQueue()
				}()
			}
			time.Sleep(50 * time.Millisecond)
			release()

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			Eventually(done, time.Second).Should(BeClosed())
		})

		It("should return when the worker is stopped while waiting", func() {
			w = worker.New()
			w.Start()
			dep := jobs.New(nil)
			blocked := jobs.New(nil)
			Expect(blocked.Schedule(dep)).To(Succeed())
			w.QueueJob(blocked)

			done := make(chan struct{})
			go func() {
				w.WaitForQueue()
				close(done)
			}()
			Consistently(done, 50*time.Millisecond).ShouldNot(BeClosed())

			w.Stop(true)
			Eventually(done, time.Second).Should(BeClosed())
		})

		It("should honor the context deadline", func() {
			w = worker.New()
			w.Start()
			job, release := gate()
			defer release()
			w.QueueJob(job)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			Expect(w.WaitForQueueContext(ctx)).To(MatchError(context.DeadlineExceeded))
		})
	})

	Describe("ClearQueue", func() {
		It("should drop pending jobs but let the current one finish", func() {
			w = worker.New()
			w.Start()
			running, release := gate()
			pending := jobs.New(nil)
			w.QueueJob(running)
			w.QueueJob(pending)
			Eventually(w.Status).Should(Equal(worker.ExecutingJobs))

			w.ClearQueue()
			Expect(w.Pending()).To(Equal(0))

			release()
			w.WaitForQueue()
			Expect(running.IsCompleted()).To(BeTrue())
			Expect(pending.IsCompleted()).To(BeFalse())
		})

		It("should release waiters blocked on jobs that can never run", func() {
			w = worker.New()
			w.Start()
			blocked := jobs.New(nil)
			Expect(blocked.Schedule(jobs.New(nil))).To(Succeed())
			w.QueueJob(blocked)

			done := make(chan struct{})
			go func() {
				w.WaitForQueue()
				close(done)
			}()
			Consistently(done, 50*time.Millisecond).ShouldNot(BeClosed())

			w.ClearQueue()
			Eventually(done, time.Second).Should(BeClosed())
		})
	})

	Describe("Dependencies", func() {
		It("should run a blocked job once its dependency completes on another worker", func() {
			// Given a job on w that depends on a job held by another worker
			other := worker.New()
			defer other.Stop(true)
			dep, release := gate()
			other.Start()
			other.QueueJob(dep)

			blocked := jobs.New(nil)
			Expect(blocked.Schedule(dep)).To(Succeed())
			free := jobs.New(nil)

			w = worker.New()
			w.Start()
			w.QueueJob(blocked)
			w.QueueJob(free)

			// Then the free job runs while the blocked one waits
			Eventually(free.IsCompleted).Should(BeTrue())
			Consistently(blocked.IsCompleted, 50*time.Millisecond).Should(BeFalse())
			Expect(w.Status()).To(Equal(worker.Idle))

			// When the dependency completes
			release()

			// Then the blocked job runs
			Eventually(blocked.IsCompleted, time.Second).Should(BeTrue())
			w.WaitForQueue()
		})

		// Given a worker scanning a long queue of blocked jobs
		// When the dependency of the first job completes during the scan
		// Then the worker does not park with a ready job in its queue
		It("should run a job whose dependency completes while the queue is scanned", func() {
			never := jobs.New(nil)
			for i := range 10 {
				dep := jobs.New(nil)
				dependent := jobs.New(nil)
				Expect(dependent.Schedule(dep)).To(Succeed())

				q := jobs.NewQueue()
				q.AddJob(dependent)
				for range 100000 {
					filler := jobs.New(nil)
					Expect(filler.Schedule(never)).To(Succeed())
					q.AddJob(filler)
				}

				sw := worker.New()
				sw.QueueJobs(q)
				sw.Start()

				time.Sleep(time.Duration(i) * time.Millisecond)
				dep.Run()

				Eventually(dependent.IsCompleted, 2*time.Second).Should(BeTrue(), "iteration %d", i)

				sw.ClearQueue()
				sw.Stop(true)
			}
		})
	})

	Describe("RunPending", func() {
		It("should run ready jobs on the caller of a stopped worker", func() {
			w = worker.New()
			dep := jobs.New(nil)
			blocked := jobs.New(nil)
			Expect(blocked.Schedule(dep)).To(Succeed())
			w.QueueJob(blocked)
			w.QueueJob(jobs.New(nil))

			Expect(w.RunPending()).To(Equal(1))
			Expect(w.Pending()).To(Equal(1))
			Expect(w.Load()).To(Equal(1))

			dep.Run()
			Expect(w.RunPending()).To(Equal(1))
			Expect(blocked.IsCompleted()).To(BeTrue())
			Expect(w.Load()).To(Equal(0))
		})
	})

	Describe("Observer", func() {
		It("should report a record for every finished job", func() {
			var mu sync.Mutex
			var records []jobs.Record
			w = worker.New(
				worker.WithName("observed"),
				worker.WithObserver(worker.ObserverFunc(func(r jobs.Record) {
					mu.Lock()
					defer mu.Unlock()
					records = append(records, r)
				})),
			)
			w.Start()

			ok := jobs.New(nil, jobs.WithName("ok"))
			failing := jobs.NewFunc(func() error { return errors.New("nope") }, jobs.WithName("failing"))
			w.QueueJob(ok)
			w.QueueJob(failing)
			w.WaitForQueue()

			mu.Lock()
			defer mu.Unlock()
			Expect(records).To(HaveLen(2))
			Expect(records[0].JobID).To(Equal(ok.ID()))
			Expect(records[0].Worker).To(Equal("observed"))
			Expect(records[0].Failed()).To(BeFalse())
			Expect(records[1].Name).To(Equal("failing"))
			Expect(records[1].Error).To(Equal("nope"))
		})

		It("should fan out to several observers and skip nil ones", func() {
			var a, b int
			o := worker.Observers(
				worker.ObserverFunc(func(jobs.Record) { a++ }),
				nil,
				worker.ObserverFunc(func(jobs.Record) { b++ }),
			)
			o.JobFinished(jobs.Record{})

			Expect(a).To(Equal(1))
			Expect(b).To(Equal(1))
			Expect(worker.Observers(nil)).To(BeNil())
		})
	})
})
