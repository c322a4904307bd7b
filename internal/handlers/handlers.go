package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/andgen/jobsystem/internal/models"
	"github.com/andgen/jobsystem/internal/store"
	"github.com/andgen/jobsystem/internal/workload"
	"github.com/andgen/jobsystem/pkg/jobs"
	"github.com/andgen/jobsystem/pkg/scheduler"
)

// WorkloadService is implemented by *services.WorkloadService.
type WorkloadService interface {
	Submit(spec workload.Spec) (models.Submission, error)
	Get(id string) (models.Submission, error)
	List() []models.Submission
	Wait(ctx context.Context) error
	Stats() scheduler.Stats
}

// HistoryReader is implemented by *store.HistoryStore.
type HistoryReader interface {
	List(ctx context.Context, opts ...store.ListOption) ([]jobs.Record, error)
	Count(ctx context.Context, opts ...store.ListOption) (int, error)
}

type Handler struct {
	workloads WorkloadService
	// nil when no history store is configured
	history HistoryReader
}

func New(workloads WorkloadService, history HistoryReader) *Handler {
	return &Handler{
		workloads: workloads,
		history:   history,
	}
}

// RegisterHandlers wires every endpoint on router, which is expected to be
// the /api/v1 group.
func RegisterHandlers(router gin.IRoutes, h *Handler) {
	router.GET("/pool", h.GetPool)
	router.POST("/pool/wait", h.WaitPool)
	router.GET("/workloads", h.ListWorkloads)
	router.POST("/workloads", h.CreateWorkload)
	router.GET("/workloads/:id", h.GetWorkload)
	router.GET("/history", h.GetHistory)
}
