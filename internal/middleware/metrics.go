package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tempo-schedule-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes every request under its route template. Requests that match no route share one
// label so arbitrary URLs cannot grow the series count.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
