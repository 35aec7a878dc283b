package api

import (
	"github.com/Conceptual-Machines/magda-trapbeat/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/magda-trapbeat/internal/api/middleware"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/config"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config, service handlers.BeatService, recorder apimiddleware.APIRecorder, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(recorder))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(service)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, service)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	if cfg.IsGatewayMode() {
		v1.Use(apimiddleware.GatewayAuth())
	} else {
		v1.Use(apimiddleware.NoAuth())
	}
	{
		beatHandler := handlers.NewTrapBeatHandler(service)
		v1.POST("/trapbeat/generate", beatHandler.Generate)
		v1.GET("/trapbeat/modes", beatHandler.Modes)
		v1.GET("/trapbeat/presets", beatHandler.Presets)
	}

	return router
}
