package prometheus

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/Swind/go-region-runner/core"
)

const defaultNamespace = "regionrunner"

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskSubmittedTotal  *prom.CounterVec
	taskRefusedTotal    *prom.CounterVec
	taskRetiredTotal    *prom.CounterVec
	taskCancelledTotal  *prom.CounterVec
	taskDurationSeconds *prom.HistogramVec
	taskPanicTotal      *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	submittedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_submitted_total",
		Help:      "Total number of tasks accepted by the host.",
	}, []string{"scope", "repeating"})
	refusedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_refused_total",
		Help:      "Total number of submissions refused by the host or by entity retirement.",
	}, []string{"scope"})
	retiredVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_retired_total",
		Help:      "Total number of retired callbacks run for entity tasks.",
	}, []string{"scope"})
	cancelledVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_cancelled_total",
		Help:      "Total number of tasks cancelled through their handle.",
	}, []string{"scope"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"scope"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics.",
	}, []string{"scope"})

	var err error
	if submittedVec, err = registerCollector(reg, submittedVec); err != nil {
		return nil, err
	}
	if refusedVec, err = registerCollector(reg, refusedVec); err != nil {
		return nil, err
	}
	if retiredVec, err = registerCollector(reg, retiredVec); err != nil {
		return nil, err
	}
	if cancelledVec, err = registerCollector(reg, cancelledVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskSubmittedTotal:  submittedVec,
		taskRefusedTotal:    refusedVec,
		taskRetiredTotal:    retiredVec,
		taskCancelledTotal:  cancelledVec,
		taskDurationSeconds: durationVec,
		taskPanicTotal:      panicVec,
	}, nil
}

// RecordTaskSubmitted records a task accepted by the host.
func (m *MetricsExporter) RecordTaskSubmitted(scope core.ScopeKind, repeating bool) {
	if m == nil {
		return
	}
	m.taskSubmittedTotal.WithLabelValues(scope.String(), strconv.FormatBool(repeating)).Inc()
}

// RecordTaskRefused records a refused submission.
func (m *MetricsExporter) RecordTaskRefused(scope core.ScopeKind) {
	if m == nil {
		return
	}
	m.taskRefusedTotal.WithLabelValues(scope.String()).Inc()
}

// RecordTaskRetired records a retired callback.
func (m *MetricsExporter) RecordTaskRetired(scope core.ScopeKind) {
	if m == nil {
		return
	}
	m.taskRetiredTotal.WithLabelValues(scope.String()).Inc()
}

// RecordTaskCancelled records a cancellation through a task handle.
func (m *MetricsExporter) RecordTaskCancelled(scope core.ScopeKind) {
	if m == nil {
		return
	}
	m.taskCancelledTotal.WithLabelValues(scope.String()).Inc()
}

// RecordTaskDuration records task execution duration.
func (m *MetricsExporter) RecordTaskDuration(scope core.ScopeKind, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(scope.String()).Observe(duration.Seconds())
}

// RecordTaskPanic records task panic events.
func (m *MetricsExporter) RecordTaskPanic(scope core.ScopeKind, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(scope.String()).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
