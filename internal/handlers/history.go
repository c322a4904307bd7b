package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/andgen/jobsystem/api/v1"
	"github.com/andgen/jobsystem/internal/store"
	"github.com/andgen/jobsystem/internal/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetHistory returns executed job records with filtering and pagination
// (GET /history?limit=&offset=&worker=&failed=)
func (h *Handler) GetHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, v1.Error{Error: "job history is disabled"})
		return
	}

	limit := util.Clamp(util.AtoiOr(c.Query("limit"), defaultPageSize), 1, maxPageSize)
	offset := max(util.AtoiOr(c.Query("offset"), 0), 0)

	var filters []store.ListOption
	if workers := c.QueryArray("worker"); len(workers) > 0 {
		filters = append(filters, store.ByWorkers(workers...))
	}
	if raw := c.Query("failed"); raw != "" {
		failed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid failed filter: " + raw})
			return
		}
		filters = append(filters, store.ByFailed(failed))
	}

	ctx := c.Request.Context()

	total, err := h.history.Count(ctx, filters...)
	if err != nil {
		zap.S().Named("history_handler").Errorw("failed to count history", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to read history"})
		return
	}

	opts := append(filters, store.WithDefaultSort(), store.WithLimit(uint64(limit)), store.WithOffset(uint64(offset)))
	records, err := h.history.List(ctx, opts...)
	if err != nil {
		zap.S().Named("history_handler").Errorw("failed to list history", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to read history"})
		return
	}

	resp := v1.HistoryList{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Records: make([]v1.HistoryRecord, 0, len(records)),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, v1.NewHistoryRecord(r))
	}
	c.JSON(http.StatusOK, resp)
}
