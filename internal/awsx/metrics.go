package awsx

import (
	"context"
	"log/slog"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the storefront.
const (
	MetricOrdersCreated      = "OrdersCreated"
	MetricOrderPersistFailed = "OrderPersistFailed"
	MetricOrderRecovered     = "OrderRecovered"
)

// Metrics emits operational counters to CloudWatch. Emission is best-effort:
// a metrics outage must never touch the customer flow, so failures are only
// logged.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
	logger    *slog.Logger
}

func NewMetrics(client CloudWatchAPI, namespace string, logger *slog.Logger) *Metrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Metrics{client: client, namespace: namespace, logger: logger}
}

// Count emits a single count datum. A nil receiver or nil client is a no-op
// so local runs work without CloudWatch.
func (m *Metrics) Count(ctx context.Context, name string, value float64) {
	if m == nil || m.client == nil {
		return
	}
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      sdkaws.Float64(value),
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
	if err != nil {
		m.logger.Warn("metric emission failed", "metric", name, "err", err)
	}
}
