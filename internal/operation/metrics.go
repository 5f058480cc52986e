package operation

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tombee/cascade/pkg/pipeline"
)

// Metrics collects per-operation invocation counts and latencies.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cascade",
			Subsystem: "operation",
			Name:      "invocations_total",
			Help:      "Operation invocations by name and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cascade",
			Subsystem: "operation",
			Name:      "duration_seconds",
			Help:      "Operation invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.invocations, m.duration)
	return m
}

func (m *Metrics) observe(name string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.invocations.WithLabelValues(name, status).Inc()
	m.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// instrumented decorates an operation with metrics collection.
type instrumented struct {
	pipeline.Operation
	metrics *Metrics
}

func (i *instrumented) Invoke(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	start := time.Now()
	outputs, err := i.Operation.Invoke(ctx, inputs)
	i.metrics.observe(i.Operation.Name(), start, err)
	return outputs, err
}
