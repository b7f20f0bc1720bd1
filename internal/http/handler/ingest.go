package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"hollymart.app/intel/internal/http/dto"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/service"
)

type IngestHandler struct {
	ingestor *service.Ingestor
}

func NewIngestHandler(ingestor *service.Ingestor) *IngestHandler {
	return &IngestHandler{ingestor: ingestor}
}

// Ingest stores one message from the transport listener. Redeliveries return
// 200 with duplicated=true instead of an error.
func (h *IngestHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, duplicated, err := h.ingestor.IngestMessage(ctx, service.IngestParams{
		ChannelExternalID: req.ChannelExternalID,
		ChannelName:       req.ChannelName,
		ChannelKind:       model.ChannelKind(req.ChannelKind),
		ExternalID:        req.ExternalID,
		SenderJID:         req.SenderJID,
		SenderName:        req.SenderName,
		FromMe:            req.FromMe,
		Text:              req.Text,
		ReplyToExternalID: req.ReplyToExternalID,
		Timestamp:         req.Timestamp,
	})
	if err != nil {
		slog.ErrorContext(ctx, "message ingest failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest message"})
		return
	}

	status := http.StatusCreated
	if duplicated {
		status = http.StatusOK
	}
	c.JSON(status, dto.IngestMessageResponse{
		MessageID:  msg.ID,
		ChannelID:  msg.ChannelID,
		Duplicated: duplicated,
	})
}

// ImportChat parses a WhatsApp export and stores its messages.
func (h *IngestHandler) ImportChat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ImportChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ingestor.ImportChat(ctx, service.ImportParams{
		ChannelExternalID: req.ChannelExternalID,
		ChannelName:       req.ChannelName,
		ChannelKind:       model.ChannelKind(req.ChannelKind),
		Content:           req.Content,
	})
	if err != nil {
		slog.ErrorContext(ctx, "chat import failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import chat"})
		return
	}

	c.JSON(http.StatusOK, dto.ImportChatResponse{
		ChannelID: result.ChannelID,
		Parsed:    result.Parsed,
		Created:   result.Created,
		Skipped:   result.Skipped,
	})
}
