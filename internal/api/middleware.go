package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"blogvelocity/internal/metrics"
)

// PrometheusMiddleware records request counts and latencies.
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		metrics.HttpRequestsTotal.WithLabelValues(
			method,
			path,
			statusCode,
			serviceName,
		).Inc()

		metrics.HttpRequestDuration.WithLabelValues(
			method,
			path,
			serviceName,
		).Observe(duration)
	}
}
