package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/andgen/jobsystem/api/v1"
	srvErrors "github.com/andgen/jobsystem/pkg/errors"
)

// ListWorkloads returns the remembered workloads
// (GET /workloads)
func (h *Handler) ListWorkloads(c *gin.Context) {
	subs := h.workloads.List()

	resp := v1.WorkloadList{Workloads: make([]v1.Workload, 0, len(subs))}
	for _, s := range subs {
		resp.Workloads = append(resp.Workloads, v1.NewWorkloadFromModel(s))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateWorkload submits a synthetic workload to the pool
// (POST /workloads)
func (h *Handler) CreateWorkload(c *gin.Context) {
	var req v1.WorkloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}

	spec, err := req.ToSpec()
	if err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	}

	sub, err := h.workloads.Submit(spec)
	switch {
	case err == nil:
	case srvErrors.IsInvalidArgumentError(err):
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		return
	case errors.Is(err, srvErrors.ErrPoolClosed):
		c.JSON(http.StatusServiceUnavailable, v1.Error{Error: err.Error()})
		return
	default:
		zap.S().Named("workload_handler").Errorw("failed to submit workload", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to submit workload"})
		return
	}

	c.JSON(http.StatusAccepted, v1.NewWorkloadFromModel(sub))
}

// GetWorkload returns the progress of one workload
// (GET /workloads/:id)
func (h *Handler) GetWorkload(c *gin.Context) {
	sub, err := h.workloads.Get(c.Param("id"))
	if err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
			return
		}
		zap.S().Named("workload_handler").Errorw("failed to get workload", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to get workload"})
		return
	}

	c.JSON(http.StatusOK, v1.NewWorkloadFromModel(sub))
}
