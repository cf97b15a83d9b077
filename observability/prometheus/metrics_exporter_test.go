package prometheus

import (
	"context"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Helix128/EasyAsync/core"
)

// TestMetricsExporter_RecordsOutcomes verifies outcome counting
// Given: A registered exporter
// When: Task lifecycle events are recorded
// Then: The Prometheus counters and gauges reflect them
func TestMetricsExporter_RecordsOutcomes(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("easyasync", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.RecordTaskLaunched("Task_0")
	exporter.RecordTaskLaunched("Task_1")
	exporter.RecordTaskFinished("Task_0", core.StateCompleted, 15*time.Millisecond)
	exporter.RecordTaskFinished("Task_1", core.StateCancelled, 5*time.Millisecond)
	exporter.RecordLaunchRejected("max_concurrent")
	exporter.RecordCallbackQueueDepth(3)

	require.Equal(t, float64(2), testutil.ToFloat64(exporter.tasksLaunchedTotal))
	require.Equal(t, float64(1),
		testutil.ToFloat64(exporter.tasksFinishedTotal.WithLabelValues("completed")))
	require.Equal(t, float64(1),
		testutil.ToFloat64(exporter.tasksFinishedTotal.WithLabelValues("cancelled")))
	require.Equal(t, float64(1),
		testutil.ToFloat64(exporter.launchRejectedTotal.WithLabelValues("max_concurrent")))
	require.Equal(t, float64(3), testutil.ToFloat64(exporter.callbackQueueDepth))
}

// TestMetricsExporter_DuplicateRegistration verifies idempotent setup
// Given: An exporter already registered against a registry
// When: A second exporter registers with the same namespace
// Then: The existing collectors are reused instead of failing
func TestMetricsExporter_DuplicateRegistration(t *testing.T) {
	reg := prom.NewRegistry()

	first, err := NewMetricsExporter("easyasync", reg, ExporterOptions{})
	require.NoError(t, err)
	second, err := NewMetricsExporter("easyasync", reg, ExporterOptions{})
	require.NoError(t, err)

	first.RecordLaunchRejected("launcher_error")
	second.RecordLaunchRejected("launcher_error")

	require.Equal(t, float64(2),
		testutil.ToFloat64(first.launchRejectedTotal.WithLabelValues("launcher_error")))
}

// TestMetricsExporter_EmptyReasonNormalized verifies label hygiene
func TestMetricsExporter_EmptyReasonNormalized(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.RecordLaunchRejected("")

	require.Equal(t, float64(1),
		testutil.ToFloat64(exporter.launchRejectedTotal.WithLabelValues("unknown")))
}

// TestMetricsExporter_EndToEnd verifies wiring through a real scheduler
// Given: A scheduler configured with the exporter as its metrics sink
// When: A task completes and the control loop drains
// Then: The launched and completed counters increment
func TestMetricsExporter_EndToEnd(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("easyasync", reg, ExporterOptions{})
	require.NoError(t, err)

	logger := zerolog.Nop()
	s := core.NewSchedulerWithOptions(core.SchedulerOptions{
		Metrics: exporter,
		Logger:  &logger,
	})

	_, err = s.Run(func(ctx context.Context) error { return nil }, func() {})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s.Update()
		return testutil.ToFloat64(exporter.tasksFinishedTotal.WithLabelValues("completed")) == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, float64(1), testutil.ToFloat64(exporter.tasksLaunchedTotal))
}
