package router

import (
	"github.com/gin-gonic/gin"

	"hollymart.app/intel/internal/http/handler"
)

func IngestRouter(router *gin.RouterGroup, handler *handler.IngestHandler) {
	router.POST("/messages", handler.Ingest)
	router.POST("/import/chat", handler.ImportChat)
}
