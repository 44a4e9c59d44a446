package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"hotelbooking-backend/pkg/logger"
)

// Logger writes one access log line per request after the handler
// chain finishes. The path is captured up front; handlers may rewrite
// the URL.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("http request", map[string]interface{}{
			"requestId": c.GetString("request_id"),
			"method":    c.Request.Method,
			"path":      path,
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"ip":        c.ClientIP(),
		})
	}
}
