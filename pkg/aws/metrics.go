package aws

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const defaultNamespace = "ECommerceAdmin"

// CloudWatch metric names.
const (
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPErrors   = "HTTPErrors"
	MetricHTTPLatency  = "HTTPLatency"
	MetricHTTP4xx      = "HTTP4xxErrors"
	MetricHTTP5xx      = "HTTP5xxErrors"

	MetricProductsCreated       = "ProductsCreated"
	MetricCategoriesDeleted     = "CategoriesDeleted"
	MetricBackrefRepairEnqueued = "BackrefRepairEnqueued"
	MetricBackrefRepaired       = "BackrefRepaired"
)

type cloudwatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsClient pushes custom metrics to CloudWatch. Both a nil client and a
// disabled one are silent no-ops.
type MetricsClient struct {
	api       cloudwatchAPI
	namespace string
	enabled   bool
}

func NewMetricsClient(cfg sdkaws.Config, namespace string, enabled bool) *MetricsClient {
	return newMetricsClient(cloudwatch.NewFromConfig(cfg), namespace, enabled)
}

func newMetricsClient(api cloudwatchAPI, namespace string, enabled bool) *MetricsClient {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &MetricsClient{api: api, namespace: namespace, enabled: enabled}
}

func (m *MetricsClient) IsEnabled() bool { return m != nil && m.enabled }

// RecordCount adds one to name.
func (m *MetricsClient) RecordCount(ctx context.Context, name string, dims map[string]string) error {
	return m.put(ctx, name, 1, types.StandardUnitCount, dims)
}

// RecordLatency reports d in milliseconds.
func (m *MetricsClient) RecordLatency(ctx context.Context, name string, d time.Duration, dims map[string]string) error {
	return m.put(ctx, name, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dims)
}

func (m *MetricsClient) put(ctx context.Context, name string, v float64, unit types.StandardUnit, dims map[string]string) error {
	if !m.IsEnabled() {
		return nil
	}
	datum := types.MetricDatum{
		MetricName: &name,
		Value:      &v,
		Unit:       unit,
		Timestamp:  sdkaws.Time(time.Now()),
		Dimensions: dimensionList(dims),
	}
	_, err := m.api.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &m.namespace,
		MetricData: []types.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}

// dimensionList orders dimensions by name so the same map always maps to the
// same series.
func dimensionList(dims map[string]string) []types.Dimension {
	out := make([]types.Dimension, 0, len(dims))
	for _, k := range slices.Sorted(maps.Keys(dims)) {
		out = append(out, types.Dimension{Name: sdkaws.String(k), Value: sdkaws.String(dims[k])})
	}
	return out
}
