package installer

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricsNamespace = "opstrace"

// Attempt results recorded in metrics.
const (
	resultSuccess = "success"
	resultTimeout = "timeout"
	resultFailure = "failure"
)

// Metrics collects installer metrics in a registry of its own so that a
// run can push them to a Pushgateway when it ends.
type Metrics struct {
	registry *prometheus.Registry

	attemptsTotal   *prometheus.CounterVec
	attemptDuration prometheus.Histogram
	stepDuration    *prometheus.HistogramVec
	probeAttempts   *prometheus.CounterVec
}

// NewMetrics creates and registers the installer metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "installer",
				Name:      "attempts_total",
				Help:      "Total number of create attempts by result",
			},
			[]string{"result"},
		),
		attemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "installer",
				Name:      "attempt_duration_seconds",
				Help:      "Duration of create attempts in seconds",
				Buckets:   prometheus.ExponentialBuckets(30, 2, 8), // 30s to ~64min
			},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "installer",
				Name:      "step_duration_seconds",
				Help:      "Duration of pipeline steps in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 4, 9), // 100ms to ~109min
			},
			[]string{"step"},
		),
		probeAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "readiness",
				Name:      "probe_attempts_total",
				Help:      "Total number of endpoint probe requests by group and outcome",
			},
			[]string{"group", "outcome"},
		),
	}

	m.registry.MustRegister(m.attemptsTotal, m.attemptDuration, m.stepDuration, m.probeAttempts)
	return m
}

// Registry returns the registry holding the installer metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordAttempt(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(result).Inc()
	m.attemptDuration.Observe(d.Seconds())
}

func (m *Metrics) recordStep(step string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RecordProbe counts one endpoint probe request.
func (m *Metrics) RecordProbe(group, outcome string) {
	if m == nil {
		return
	}
	m.probeAttempts.WithLabelValues(group, outcome).Inc()
}

// Push sends the metrics to a Pushgateway, grouped by cluster.
func (m *Metrics) Push(ctx context.Context, url, clusterName string) error {
	err := push.New(url, "opstrace_installer").
		Gatherer(m.registry).
		Grouping("cluster", clusterName).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
