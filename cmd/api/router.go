package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelbooking-backend/internal/shared/middleware"
	"hotelbooking-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares. ClientIP must run before any handler that
	// forwards the caller's address to a gateway.
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.ClientIP(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		// public: availability lookups and gateway callbacks; the
		// callbacks authenticate by signature, not by bearer token.
		public := v1.Group("")

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(c.JWTManager))

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())

		c.BookingHandler.RegisterRoutes(public, protected, admin)
		c.PaymentHandler.RegisterRoutes(protected)
		c.WebhookHandler.RegisterRoutes(public)
	}

	return router
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "DOWN",
				"error":  "database unreachable",
			})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"service": c.Config.App.Name,
			"version": c.Config.App.Version,
		})
	}
}
