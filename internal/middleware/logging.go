package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gryroach/ugc-service/internal/observability/logger"
)

// AccessLog emits one structured log entry per request.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithContext(c.Request.Context()).Info("request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
