package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "TRAPBEAT/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// metricPutter is the part of the CloudWatch client used here
type metricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      metricPutter
	enabled     bool
	environment string
	// async is false only in tests so puts can be observed synchronously
	async bool
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false, environment: environment}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)

	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
		async:       true,
	}, nil
}

// Enabled reports whether metrics are sent
func (m *Client) Enabled() bool {
	return m.enabled
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	m.dispatch(func(ctx context.Context) {
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}

		dimensions := m.dimensions("Endpoint", endpoint)

		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}

		latencyMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "APILatency", latencyMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record APILatency metric: %v", err)
		}
	})
}

// RecordGeneration records duration, darkness and corrective passes per mode
func (m *Client) RecordGeneration(gen Generation) {
	if !m.enabled {
		return
	}

	m.dispatch(func(ctx context.Context) {
		dimensions := m.dimensions("Mode", gen.Mode)

		durationMs := float64(gen.Duration.Milliseconds())
		if err := m.putMetric(ctx, "GenerationDuration", durationMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record GenerationDuration metric: %v", err)
		}

		if err := m.putMetric(ctx, "Darkness", gen.Darkness, types.StandardUnitNone, dimensions); err != nil {
			log.Printf("Failed to record Darkness metric: %v", err)
		}

		corrected := append(m.dimensions("Mode", gen.Mode), types.Dimension{
			Name:  aws.String("Corrected"),
			Value: aws.String(boolToString(gen.Corrected)),
		})
		if err := m.putMetric(ctx, "Generations", 1, types.StandardUnitCount, corrected); err != nil {
			log.Printf("Failed to record Generations metric: %v", err)
		}
	})
}

func (m *Client) dispatch(fn func(ctx context.Context)) {
	if m.async {
		go fn(context.Background())
		return
	}
	fn(context.Background())
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	ctx context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
