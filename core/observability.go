package core

import "time"

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics receives task lifecycle measurements. Implementations can send
// them to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called from worker goroutines and the control loop; they must
// be safe for concurrent use and fast enough not to perturb task execution.
type Metrics interface {
	// RecordTaskLaunched is called when an execution context is created.
	RecordTaskLaunched(name string)

	// RecordTaskFinished is called once per task on entry to a terminal
	// state, with the outcome and the start-to-end duration.
	RecordTaskFinished(name string, outcome TaskState, duration time.Duration)

	// RecordLaunchRejected is called when a launch is refused before an
	// execution context exists (admission gate, launcher failure).
	RecordLaunchRejected(reason string)

	// RecordCallbackQueueDepth records the callback queue depth observed
	// after a drain.
	RecordCallbackQueueDepth(depth int)
}

// NilMetrics is the no-op default when no metrics sink is provided.
type NilMetrics struct{}

func (NilMetrics) RecordTaskLaunched(name string) {}

func (NilMetrics) RecordTaskFinished(name string, outcome TaskState, duration time.Duration) {}

func (NilMetrics) RecordLaunchRejected(reason string) {}

func (NilMetrics) RecordCallbackQueueDepth(depth int) {}
