package router

import (
	"github.com/gin-gonic/gin"

	"hollymart.app/intel/internal/http/handler"
)

func JobRouter(router *gin.RouterGroup, handler *handler.JobHandler) {
	router.POST("/:job", handler.Trigger)
}
