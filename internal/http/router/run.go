package router

import (
	"github.com/gin-gonic/gin"

	"hollymart.app/intel/internal/http/handler"
)

func RunRouter(router *gin.RouterGroup, handler *handler.RunHandler) {
	router.GET("", handler.ListRecent)
	router.GET("/:id", handler.GetByID)
}
