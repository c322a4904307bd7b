package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/andgen/jobsystem/api/v1"
)

const (
	defaultWaitTimeout = 30 * time.Second
	maxWaitTimeout     = 5 * time.Minute
)

// GetPool returns the pool status
// (GET /pool)
func (h *Handler) GetPool(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewPoolStatus(h.workloads.Stats()))
}

// WaitPool blocks until the pool is drained or the timeout expires
// (POST /pool/wait?timeout=10s)
func (h *Handler) WaitPool(c *gin.Context) {
	timeout := defaultWaitTimeout
	if raw := c.Query("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid timeout: " + raw})
			return
		}
		timeout = min(d, maxWaitTimeout)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	err := h.workloads.Wait(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		zap.S().Named("pool_handler").Debugw("wait timed out", "timeout", timeout)
	default:
		zap.S().Named("pool_handler").Errorw("failed to wait for pool", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to wait for pool"})
		return
	}

	c.JSON(http.StatusOK, v1.WaitResponse{
		Drained: err == nil,
		Pool:    v1.NewPoolStatus(h.workloads.Stats()),
	})
}
