package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workpulse/timesheet-api/internal/service"
)

// Metrics records request counts and latencies for every route.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
