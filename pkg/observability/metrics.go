// Package observability provides CloudWatch metrics and X-Ray tracing for the
// bridge and the migration runner.
package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes custom metrics to CloudWatch. A nil *Metrics is a valid
// no-op receiver so callers don't need to branch on whether metrics are
// enabled.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a metrics publisher in the given namespace.
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordDuration publishes a millisecond duration metric.
func (m *Metrics) RecordDuration(ctx context.Context, name string, d time.Duration, dimensions map[string]string) {
	if m == nil {
		return
	}
	m.put(ctx, name, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
}

// RecordCount publishes a count metric.
func (m *Metrics) RecordCount(ctx context.Context, name string, value float64, dimensions map[string]string) {
	if m == nil {
		return
	}
	m.put(ctx, name, value, types.StandardUnitCount, dimensions)
}

func (m *Metrics) put(ctx context.Context, name string, value float64, unit types.StandardUnit, dimensions map[string]string) {
	dims := make([]types.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		dims = append(dims, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now().UTC()),
				Dimensions: dims,
			},
		},
	})
	if err != nil {
		// Metric delivery failures never fail the operation being measured.
		m.logger.Warn("failed to publish metric",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}
