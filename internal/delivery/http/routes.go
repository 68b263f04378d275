package http

import (
	"github.com/gin-gonic/gin"
	"github.com/recipefootprint/backend/config"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Only listed proxies may set the client IP through forwarded headers
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, ignoring forwarded headers",
			zap.Strings("trusted_proxies", cfg.Server.TrustedProxies),
			zap.Error(err),
		)
		_ = router.SetTrustedProxies(nil)
	}

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		footprint := v1.Group("/footprint")
		{
			footprint.POST("/recipe", handler.CalculateRecipe)
			footprint.POST("/selection", handler.CalculateSelection)
		}

		catalog := v1.Group("/catalog")
		{
			catalog.GET("/indicators", handler.ListIndicators)
			catalog.GET("/subgroups", handler.SubgroupTotals)
		}

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/lookup", handler.LookupProduct)
		}

		v1.GET("/units", handler.ListUnits)
	}

	return router
}
