package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-trapbeat/internal/api"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/config"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/metrics"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/presets"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/services"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/trapbeat"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout = 2 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "magda-trapbeat@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            !cfg.IsProduction(),
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	// Load preset catalog
	catalog, err := presets.LoadEmbedded()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load presets:", err)
	}

	// Initialize metrics
	cloudwatchClient, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Printf("CloudWatch metrics unavailable: %v", err)
		cloudwatchClient = nil
	}
	recorder := metrics.NewRecorder(metrics.NewSentryMetrics(), cloudwatchClient)

	// Initialize beat service
	service := services.NewBeatService(cfg, trapbeat.NewDefaultGenerator(), catalog, recorder)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(cfg, service, recorder, GetVersion())

	// Start server
	log.Printf("🚀 Starting server on port %s (auth mode: %s, presets: %d)", cfg.Port, cfg.AuthMode, catalog.Len())
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
