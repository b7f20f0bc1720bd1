package router

import (
	"github.com/gin-gonic/gin"

	"hollymart.app/intel/internal/http/handler"
)

func BriefingRouter(router *gin.RouterGroup, handler *handler.BriefingHandler) {
	router.GET("/:date", handler.GetByDate)
}
