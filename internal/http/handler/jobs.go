package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"hollymart.app/intel/internal/http/dto"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/queue"
)

type JobHandler struct {
	producer queue.Producer
}

func NewJobHandler(producer queue.Producer) *JobHandler {
	return &JobHandler{producer: producer}
}

// Trigger enqueues a batch job. The run happens asynchronously in the worker;
// 202 only means the trigger reached the stream.
func (h *JobHandler) Trigger(c *gin.Context) {
	ctx := c.Request.Context()

	job := model.JobName(c.Param("job"))
	if !job.IsValid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}

	var req dto.TriggerJobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.WarnContext(ctx, "invalid request body", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	// Propagate the otelgin trace ID so worker logs join this request's trace.
	var traceID string
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		traceID = span.SpanContext().TraceID().String()
	}

	if err := h.producer.Enqueue(ctx, queue.Job{
		Job:     job,
		Date:    req.Date,
		TraceID: traceID,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue job", "error", err, "job", string(job))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, dto.TriggerJobResponse{
		Job:      string(job),
		Date:     req.Date,
		Enqueued: true,
	})
}
