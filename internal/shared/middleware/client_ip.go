package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

type clientIPKey struct{}

// ClientIP injects the caller's IP into both the gin context and the
// request context. VNPay requires the originating IP on every payment
// URL, so the gateway clients read it back via ClientIPFromContext.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		c.Set("client_ip", ip)
		ctx := context.WithValue(c.Request.Context(), clientIPKey{}, ip)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ClientIPFromContext returns the injected client IP, or "" when the
// middleware did not run (background jobs, tests).
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}
