package metrics

import (
	"context"
	"time"
)

// Generation summarises one generated pattern for metrics sinks.
type Generation struct {
	Mode                     string
	Preset                   string
	Duration                 time.Duration
	Darkness                 float64
	DarknessBeforeCorrection float64
	Corrected                bool
	Notes                    int
	Glides                   int
}

// Recorder fans generation and request metrics out to Sentry and CloudWatch.
// Either sink may be nil.
type Recorder struct {
	sentry     *SentryMetrics
	cloudwatch *Client
}

// NewRecorder creates a recorder over the given sinks
func NewRecorder(sentryMetrics *SentryMetrics, cloudwatchClient *Client) *Recorder {
	return &Recorder{
		sentry:     sentryMetrics,
		cloudwatch: cloudwatchClient,
	}
}

// RecordGeneration records a finished generation in every configured sink
func (r *Recorder) RecordGeneration(ctx context.Context, gen Generation) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordGeneration(ctx, gen)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordGeneration(gen)
	}
}

// RecordAPIRequest records a finished HTTP request in every configured sink
func (r *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordAPIRequest(endpoint, statusCode, duration)
	}
}
