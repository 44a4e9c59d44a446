package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelbooking-backend/internal/shared/response"
	"hotelbooking-backend/pkg/logger"
)

// Recovery turns a handler panic into a 500 envelope instead of a
// dropped connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorWithFields("panic recovered", fmt.Errorf("%v", rec), map[string]interface{}{
					"requestId": c.GetString("request_id"),
					"path":      c.Request.URL.Path,
				})

				response.ErrorResponse(c, http.StatusInternalServerError, "SYS_001", "Internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
