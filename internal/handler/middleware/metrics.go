package middleware

import (
	"strconv"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request durations labelled by route template
// rather than raw path, keeping cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
