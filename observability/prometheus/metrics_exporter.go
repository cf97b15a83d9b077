// Package prometheus adapts core.Metrics to Prometheus collectors.
package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/Helix128/EasyAsync/core"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter implements core.Metrics on top of Prometheus collectors.
// Task names are not used as label values: they are unique per task and
// would explode cardinality. Outcomes and rejection reasons are bounded.
type MetricsExporter struct {
	tasksLaunchedTotal  prom.Counter
	tasksFinishedTotal  *prom.CounterVec
	taskDurationSeconds *prom.HistogramVec
	launchRejectedTotal *prom.CounterVec
	callbackQueueDepth  prom.Gauge
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// core.Metrics. Registering an identical collector set twice yields the
// existing collectors instead of an error.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "easyasync"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	launched := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_launched_total",
		Help:      "Total number of execution contexts created.",
	})
	finished := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_finished_total",
		Help:      "Total number of tasks per terminal outcome.",
	}, []string{"outcome"})
	durations := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task start-to-end duration in seconds.",
		Buckets:   buckets,
	}, []string{"outcome"})
	rejected := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "launch_rejected_total",
		Help:      "Total number of refused launches.",
	}, []string{"reason"})
	queueDepth := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "callback_queue_depth",
		Help:      "Callback queue depth observed after a drain.",
	})

	var err error
	if launched, err = registerCollector(reg, launched); err != nil {
		return nil, err
	}
	if finished, err = registerCollector(reg, finished); err != nil {
		return nil, err
	}
	if durations, err = registerCollector(reg, durations); err != nil {
		return nil, err
	}
	if rejected, err = registerCollector(reg, rejected); err != nil {
		return nil, err
	}
	if queueDepth, err = registerCollector(reg, queueDepth); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		tasksLaunchedTotal:  launched,
		tasksFinishedTotal:  finished,
		taskDurationSeconds: durations,
		launchRejectedTotal: rejected,
		callbackQueueDepth:  queueDepth,
	}, nil
}

// RecordTaskLaunched counts execution context creation.
func (m *MetricsExporter) RecordTaskLaunched(name string) {
	if m == nil {
		return
	}
	m.tasksLaunchedTotal.Inc()
}

// RecordTaskFinished counts terminal outcomes and observes durations.
func (m *MetricsExporter) RecordTaskFinished(name string, outcome core.TaskState, duration time.Duration) {
	if m == nil {
		return
	}
	label := outcomeLabel(outcome)
	m.tasksFinishedTotal.WithLabelValues(label).Inc()
	m.taskDurationSeconds.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordLaunchRejected counts refused launches.
func (m *MetricsExporter) RecordLaunchRejected(reason string) {
	if m == nil {
		return
	}
	m.launchRejectedTotal.WithLabelValues(normalizeLabel(reason, "unknown")).Inc()
}

// RecordCallbackQueueDepth records the observed queue depth.
func (m *MetricsExporter) RecordCallbackQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.callbackQueueDepth.Set(float64(depth))
}

func outcomeLabel(outcome core.TaskState) string {
	switch outcome {
	case core.StateCompleted:
		return "completed"
	case core.StateFailed:
		return "failed"
	case core.StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
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
