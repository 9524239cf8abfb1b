package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const countPushTimeout = 5 * time.Second

var (
	backrefStepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backref_sync_failures_total",
		Help: "Back-reference steps that failed inline and were handed to the repair queue",
	}, []string{"op"})

	backrefRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backref_repairs_total",
		Help: "Repair jobs processed by the repair worker, by outcome",
	}, []string{"result"})
)

// CountRecorder publishes business counters. *aws.MetricsClient satisfies it.
type CountRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// recordCount pushes one count from a goroutine so the caller never waits on
// CloudWatch. A failed push is only logged.
func recordCount(r CountRecorder, name string, dims map[string]string) {
	if r == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), countPushTimeout)
		defer cancel()
		if err := r.RecordCount(ctx, name, dims); err != nil {
			zap.L().Debug("count metric not recorded", zap.String("metric", name), zap.Error(err))
		}
	}()
}
