package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/andgen/jobsystem/api/v1"
	"github.com/andgen/jobsystem/internal/handlers"
	"github.com/andgen/jobsystem/internal/services"
	"github.com/andgen/jobsystem/internal/store"
	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/scheduler"
)

var _ = Describe("Handlers", func() {
	var (
		pool   *scheduler.Pool
		st     *store.Store
		router *gin.Engine
	)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		st, err = store.Open(context.Background(), ":memory:")
		Expect(err).NotTo(HaveOccurred())

		pool, err = scheduler.NewPool(2, scheduler.WithName("api"), scheduler.WithObserver(store.NewRecorder(st.History())))
		Expect(err).NotTo(HaveOccurred())

		router = gin.New()
		handlers.RegisterHandlers(router.Group("/api/v1"), handlers.New(services.NewWorkloadService(pool), st.History()))
	})

	AfterEach(func() {
		pool.Close()
		st.Close()
	})

	Context("GET /pool", func() {
		It("should return the pool status", func() {
			rec := do(http.MethodGet, "/api/v1/pool", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var status v1.PoolStatus
			decode(rec, &status)
			Expect(status.Name).To(Equal("api"))
			Expect(status.Size).To(Equal(2))
			Expect(status.Workers).To(HaveLen(2))
			Expect(status.Workers[0].Name).To(Equal("api-0"))
		})
	})

	Context("workloads", func() {
		// Given a valid workload request
		// When it is posted and the pool is waited on
		// Then the workload reports completion
		It("should accept a workload and report its progress", func() {
			// Act
			rec := do(http.MethodPost, "/api/v1/workloads", v1.WorkloadRequest{Kind: "fanin", Count: 3, Duration: "1ms"})

			// Assert
			Expect(rec.Code).To(Equal(http.StatusAccepted))
			var created v1.Workload
			decode(rec, &created)
			Expect(created.Total).To(Equal(4))
			Expect(created.JobIDs).To(HaveLen(4))

			rec = do(http.MethodPost, "/api/v1/pool/wait?timeout=5s", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var waited v1.WaitResponse
			decode(rec, &waited)
			Expect(waited.Drained).To(BeTrue())

			rec = do(http.MethodGet, "/api/v1/workloads/"+created.ID, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var got v1.Workload
			decode(rec, &got)
			Expect(got.State).To(Equal("completed"))
			Expect(got.Completed).To(Equal(4))

			rec = do(http.MethodGet, "/api/v1/workloads", nil)
			var list v1.WorkloadList
			decode(rec, &list)
			Expect(list.Workloads).To(HaveLen(1))
		})

		It("should reject an unknown kind", func() {
			rec := do(http.MethodPost, "/api/v1/workloads", v1.WorkloadRequest{Kind: "spiral", Count: 3})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a malformed duration", func() {
			rec := do(http.MethodPost, "/api/v1/workloads", v1.WorkloadRequest{Kind: "chain", Count: 3, Duration: "soon"})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a missing count", func() {
			rec := do(http.MethodPost, "/api/v1/workloads", map[string]any{"kind": "chain"})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 503 once the pool is closed", func() {
			pool.Close()
			rec := do(http.MethodPost, "/api/v1/workloads", v1.WorkloadRequest{Kind: "sleep", Count: 1})
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		})

		It("should return 404 for an unknown workload", func() {
			rec := do(http.MethodGet, "/api/v1/workloads/nope", nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("POST /pool/wait", func() {
		It("should report a timed out wait as not drained", func() {
			rec := do(http.MethodPost, "/api/v1/workloads", v1.WorkloadRequest{Kind: "sleep", Count: 2, Duration: "300ms"})
			Expect(rec.Code).To(Equal(http.StatusAccepted))

			rec = do(http.MethodPost, "/api/v1/pool/wait?timeout=10ms", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var waited v1.WaitResponse
			decode(rec, &waited)
			Expect(waited.Drained).To(BeFalse())
		})

		It("should reject an invalid timeout", func() {
			rec := do(http.MethodPost, "/api/v1/pool/wait?timeout=-1s", nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("GET /history", func() {
		BeforeEach(func() {
			for i := range 5 {
				job := jobs.NewFunc(func() error {
					if i == 0 {
						return errors.New("boom")
					}
					return nil
				})
				Expect(pool.QueueJob(job)).To(Succeed())
			}
			pool.WaitForThreads()
		})

		It("should page through the records", func() {
			rec := do(http.MethodGet, "/api/v1/history?limit=2&offset=1", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var list v1.HistoryList
			decode(rec, &list)
			Expect(list.Total).To(Equal(5))
			Expect(list.Limit).To(Equal(2))
			Expect(list.Offset).To(Equal(1))
			Expect(list.Records).To(HaveLen(2))
		})

		It("should filter failed jobs", func() {
			rec := do(http.MethodGet, "/api/v1/history?failed=true", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var list v1.HistoryList
			decode(rec, &list)
			Expect(list.Total).To(Equal(1))
			Expect(list.Records).To(HaveLen(1))
			Expect(list.Records[0].Error).NotTo(BeNil())
			Expect(*list.Records[0].Error).To(Equal("boom"))
		})

		It("should reject a malformed failed filter", func() {
			rec := do(http.MethodGet, "/api/v1/history?failed=maybe", nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 404 without a history store", func() {
			r := gin.New()
			handlers.RegisterHandlers(r.Group("/api/v1"), handlers.New(services.NewWorkloadService(pool), nil))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})

