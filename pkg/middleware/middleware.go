// Package middleware provides the gin middleware chain: request logging,
// metrics, tracing, identity/role resolution and rate limiting.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkozyrev/softvault/pkg/metrics"
)

// PrometheusMiddleware records per-request counters and latency histograms.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveConnections.Inc()
		c.Next()
		metrics.ActiveConnections.Dec()

		// FullPath keeps the cardinality bounded; raw paths would explode
		// on ids.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RequestCounter.WithLabelValues(method, path).Inc()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
