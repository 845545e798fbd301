package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/internal/handle"
)

// RegisterHealthCheckRoute binds the liveness and per-component health
// probes. These paths sit on the auth skip list.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("", handle.Health)
		healthRoutes.GET("/db", handle.HealthDB)
		healthRoutes.GET("/blob", handle.HealthBlob)
		healthRoutes.GET("/mq", handle.HealthMQ)
	}
}
