package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hollymart.app/intel/internal/http/dto"
	"hollymart.app/intel/internal/store"
)

type BriefingHandler struct {
	briefings store.BriefingStore
	loc       *time.Location
}

func NewBriefingHandler(briefings store.BriefingStore, loc *time.Location) *BriefingHandler {
	return &BriefingHandler{briefings: briefings, loc: loc}
}

func (h *BriefingHandler) GetByDate(c *gin.Context) {
	ctx := c.Request.Context()

	date, err := time.ParseInLocation("2006-01-02", c.Param("date"), h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	briefing, err := h.briefings.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no briefing for this date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load briefing"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBriefingResponse(briefing))
}
