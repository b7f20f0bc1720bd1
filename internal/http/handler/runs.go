package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hollymart.app/intel/internal/http/dto"
	"hollymart.app/intel/internal/store"
)

const defaultRunListLimit = 20

type RunHandler struct {
	runs store.RunStore
}

func NewRunHandler(runs store.RunStore) *RunHandler {
	return &RunHandler{runs: runs}
}

func (h *RunHandler) ListRecent(c *gin.Context) {
	ctx := c.Request.Context()

	limit := defaultRunListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	runs, err := h.runs.ListRecent(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": dto.ToRunResponses(runs)})
}

func (h *RunHandler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.runs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}

	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}
