package api

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarkCarsonDev/PhotoBomb/internal/observability"
)

// LoggingMiddleware logs each request with slog and records its duration.
// The metric label uses the route template (e.g. /v1/photos/:id) rather
// than the raw path, keeping label cardinality bounded; unmatched routes
// fall back to the raw path.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"elapsed_ms", elapsed.Milliseconds(),
			"client", c.ClientIP(),
		)

		observability.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(status),
		).Observe(elapsed.Seconds())
	}
}
