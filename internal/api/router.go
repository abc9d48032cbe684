package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coaching-dashboard/internal/config"
	"github.com/coaching-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router. health, if not nil, is
// consulted by /health.
func NewRouter(services *service.Services, cfg *config.Config, presets *config.Presets, health func(context.Context) error, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	pages := NewPageHandler(services, cfg, presets, log)
	customers := NewCustomerHandler(services, cfg, presets, log)
	sessions := NewSessionHandler(services, cfg, log)
	plans := NewPlanHandler(services, cfg, log)
	checkins := NewCheckinHandler(services, cfg, log)
	reports := NewReportHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(health))
	router.GET("/metrics", metricsHandler(services))
	router.GET("/static/avatar.svg", fallbackAvatar)

	// Dashboard pages
	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/customers") })
	router.GET("/customers", pages.Customers)
	router.GET("/customers/:id", pages.CustomerDetail)
	router.POST("/customers/:id/status", pages.SetCustomerStatus)
	router.GET("/customers/:id/plans/:kind/edit", pages.EditPlan)
	router.POST("/customers/:id/plans/:kind/edit", pages.SavePlan)
	router.GET("/followups", pages.Followups)
	router.POST("/followups/:id/status", pages.SetFollowupStatus)

	// API v1
	v1 := router.Group("/v1")
	{
		byCustomer := v1.Group("/customers")
		{
			byCustomer.GET("", customers.List)
			byCustomer.POST("", customers.Create)
			byCustomer.GET("/:id", customers.Get)
			byCustomer.PATCH("/:id", customers.Update)

			byCustomer.GET("/:id/sessions", sessions.List)
			byCustomer.POST("/:id/sessions", sessions.Book)

			byCustomer.GET("/:id/plans/:kind", plans.Get)
			byCustomer.PUT("/:id/plans/:kind", plans.Save)

			byCustomer.GET("/:id/checkins", checkins.List)
			byCustomer.POST("/:id/checkins", checkins.Record)

			byCustomer.GET("/:id/reports", reports.List)
			byCustomer.POST("/:id/reports", reports.Create)
		}

		v1.POST("/sessions/:id/cancel", sessions.Cancel)
		v1.POST("/sessions/:id/complete", sessions.Complete)
		v1.DELETE("/reports/:id", reports.Delete)

		// Export endpoints
		v1.GET("/exports/customers", exportHandler.StreamCustomers)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(check func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "coaching-dashboard",
		})
	}
}

// metricsHandler returns record counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		customersCount, _ := services.Export.GetCount(ctx, "customers")
		sessionsCount, _ := services.Export.GetCount(ctx, "sessions")
		checkinsCount, _ := services.Export.GetCount(ctx, "checkins")
		reportsCount, _ := services.Export.GetCount(ctx, "reports")

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"customers": customersCount,
				"sessions":  sessionsCount,
				"checkins":  checkinsCount,
				"reports":   reportsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

const avatarSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 40"><circle cx="20" cy="20" r="20" fill="#d5d9e0"/><circle cx="20" cy="16" r="7" fill="#fff"/><path d="M7 34c2-7 7-10 13-10s11 3 13 10" fill="#fff"/></svg>`

// fallbackAvatar serves the placeholder shown for rows without a usable image
func fallbackAvatar(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", []byte(avatarSVG))
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}
