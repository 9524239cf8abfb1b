package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	awspkg "github.com/ixtiyorSaitov/e-commerce-admin/pkg/aws"
)

// MetricsRecorder is the CloudWatch surface used by MetricsMiddleware.
type MetricsRecorder interface {
	IsEnabled() bool
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

const cloudwatchFlushTimeout = 5 * time.Second

// MetricsMiddleware reports each request to CloudWatch from a goroutine so
// the response is never held up by the PutMetricData call.
func MetricsMiddleware(recorder MetricsRecorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil || !recorder.IsEnabled() {
			c.Next()
			return
		}

		began := time.Now()
		c.Next()
		took := time.Since(began)

		code := c.Writer.Status()
		dims := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    routeOf(c),
			"Status":  statusCodeToRange(code),
		}
		names := []string{awspkg.MetricHTTPRequests}
		if code >= 400 {
			names = append(names, awspkg.MetricHTTPErrors)
			if code >= 500 {
				names = append(names, awspkg.MetricHTTP5xx)
			} else {
				names = append(names, awspkg.MetricHTTP4xx)
			}
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cloudwatchFlushTimeout)
			defer cancel()
			_ = recorder.RecordLatency(ctx, awspkg.MetricHTTPLatency, took, dims)
			for _, n := range names {
				_ = recorder.RecordCount(ctx, n, dims)
			}
		}()
	}
}

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "admin_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// PrometheusMiddleware records request counters and latency histograms.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// routeOf prefers the matched route template so IDs do not explode label
// cardinality.
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

func statusCodeToRange(code int) string {
	if code < 200 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
