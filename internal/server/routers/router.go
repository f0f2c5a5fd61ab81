package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eightball/variance/internal/server/handlers/varianceapi"
	"eightball/variance/internal/server/middlewares"
	"eightball/variance/pkg/logger"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(varianceHandler *varianceapi.VarianceHandler, log logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.Recovery(log))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.ActorID())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "variance",
		})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/config/detection/default", varianceHandler.GetDefaultConfig)

		orgs := v1.Group("/orgs/:org_id")
		{
			orgs.GET("/config/detection", varianceHandler.GetDetectionConfig)
			orgs.PUT("/config/detection", varianceHandler.UpdateDetectionConfig)

			orgs.POST("/units/:unit_id/variance", varianceHandler.AnalyzeUnit)
			orgs.POST("/variance", varianceHandler.AnalyzeOrganization)
			orgs.GET("/brands/variance", varianceHandler.AnalyzeBrands)

			orgs.GET("/variance/results", varianceHandler.ListResults)
			orgs.GET("/variance/results/:result_id", varianceHandler.GetResult)
			orgs.POST("/variance/jobs", varianceHandler.EnqueueJob)
		}
	}

	return r
}
