package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records request and generation spans in Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Spans are dropped by the SDK when Sentry is not configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordGeneration attaches generation data to the request transaction and a child span
func (m *SentryMetrics) RecordGeneration(ctx context.Context, gen Generation) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("trapbeat.mode", gen.Mode)
		transaction.SetTag("trapbeat.corrected", fmt.Sprintf("%t", gen.Corrected))
		if gen.Preset != "" {
			transaction.SetTag("trapbeat.preset", gen.Preset)
		}
	}

	span := sentry.StartSpan(ctx, "trapbeat.generation")
	defer span.Finish()

	span.SetTag("mode", gen.Mode)
	span.SetTag("corrected", fmt.Sprintf("%t", gen.Corrected))

	span.SetData("duration_ms", gen.Duration.Milliseconds())
	span.SetData("darkness", gen.Darkness)
	span.SetData("darkness_before_correction", gen.DarknessBeforeCorrection)
	span.SetData("notes", gen.Notes)
	span.SetData("glides", gen.Glides)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Trap Beat: %s", gen.Mode)
}
