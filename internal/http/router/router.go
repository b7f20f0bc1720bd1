package router

import (
	"github.com/gin-gonic/gin"

	"hollymart.app/intel/internal/http/handler"
	"hollymart.app/intel/internal/queue"
	"hollymart.app/intel/internal/service"
	"hollymart.app/intel/internal/store"
)

func SetupRoutes(router *gin.Engine, services *service.Services, stores *store.Stores, producer queue.Producer) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		jobHandler := handler.NewJobHandler(producer)
		JobRouter(v1.Group("/jobs"), jobHandler)

		runHandler := handler.NewRunHandler(stores.Runs)
		RunRouter(v1.Group("/runs"), runHandler)

		ingestHandler := handler.NewIngestHandler(services.Ingestor())
		IngestRouter(v1, ingestHandler)

		briefingHandler := handler.NewBriefingHandler(stores.Briefings, services.Location())
		BriefingRouter(v1.Group("/briefings"), briefingHandler)
	}
}
