package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/magda-trapbeat/internal/logger"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	httpStatusBadRequest          = http.StatusBadRequest
	httpStatusInternalServerError = http.StatusInternalServerError
	sentryFlushTimeout            = 2 * time.Second
)

// APIRecorder receives one record per completed request
type APIRecorder interface {
	RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
}

// RequestTracking adds request ID and logging to all requests
func RequestTracking(recorder APIRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Generate request ID
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()

		// Process request
		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		fields := logger.Fields{
			"request_id":  requestID,
			"duration_ms": duration.Milliseconds(),
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"client_ip":   c.ClientIP(),
		}

		// Attach the caller set by the auth middleware
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}
		if role, ok := GetUserRoleFromGateway(c); ok {
			fields["user_role"] = role
		}

		// Log based on status code
		switch {
		case statusCode >= httpStatusInternalServerError:
			logger.Error("Request failed with server error",
				fmt.Errorf("%s %s returned %d", c.Request.Method, c.Request.URL.Path, statusCode), fields)
		case statusCode >= httpStatusBadRequest:
			logger.Warn("Request failed with client error", fields)
		default:
			logger.Info("Request completed", fields)
		}

		// Record API metrics
		if recorder != nil {
			endpoint := c.FullPath()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			recorder.RecordAPIRequest(c.Request.Context(), endpoint, statusCode, duration)
		}
	}
}

// SentryMiddleware returns the Sentry middleware with custom configuration
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// RecoverWithSentry recovers from panics and sends them to Sentry
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// Report to Sentry with request context
				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.WithScope(func(scope *sentry.Scope) {
						scope.SetRequest(c.Request)
						scope.SetContext("request", map[string]interface{}{
							"request_id": c.GetString("request_id"),
							"method":     c.Request.Method,
							"path":       c.Request.URL.Path,
							"client_ip":  c.ClientIP(),
						})

						if userID, ok := GetUserID(c); ok {
							scope.SetUser(sentry.User{ID: userID})
						}
						if role, ok := GetUserRoleFromGateway(c); ok {
							scope.SetTag("user_role", role)
						}

						hub.RecoverWithContext(c.Request.Context(), err)
					})
				}

				logger.Error("Panic recovered", fmt.Errorf("panic: %v", err), logger.Fields{
					"request_id": c.GetString("request_id"),
					"path":       c.Request.URL.Path,
				})

				// Return error response
				c.JSON(httpStatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": c.GetString("request_id"),
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
