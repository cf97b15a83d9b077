package easyasync

import (
	"sync"
	"time"

	"github.com/Helix128/EasyAsync/core"
)

// Re-export commonly used types from core for convenience, so most users
// only import this package.

// Work is the void work shape: it runs inside the execution context.
type Work = core.Work

// Completion is the void completion callback shape.
type Completion = core.Completion

// WorkFunc is the result-producing work shape.
type WorkFunc[T any] = core.WorkFunc[T]

// CompletionFunc receives the result of a successfully completed task.
type CompletionFunc[T any] = core.CompletionFunc[T]

// Task is one unit of work bound to a lifecycle.
type Task[T any] = core.Task[T]

// Void is the result type of tasks that produce no value.
type Void = core.Void

// TaskConfig carries per-task launch parameters.
type TaskConfig = core.TaskConfig

// ProcessConfig holds the process-wide defaults.
type ProcessConfig = core.ProcessConfig

// TaskState is the task lifecycle state.
type TaskState = core.TaskState

// TaskRecord describes one finished task in the execution history.
type TaskRecord = core.TaskRecord

// Lifecycle state values.
const (
	StatePending   = core.StatePending
	StateRunning   = core.StateRunning
	StateCompleted = core.StateCompleted
	StateFailed    = core.StateFailed
	StateCancelled = core.StateCancelled
)

// Core affinity helpers.
var (
	PinToCore = core.PinToCore
	AnyCore   = core.AnyCore
)

// NoCallback is the no-op completion used by fire-and-forget entry points.
func NoCallback() {}

// =============================================================================
// Process-wide default scheduler
// =============================================================================

var (
	defaultMu    sync.RWMutex
	defaultSched = core.NewScheduler()
)

// Default returns the process-wide scheduler backing the package-level
// functions.
func Default() *core.Scheduler {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultSched
}

// SetDefault replaces the process-wide scheduler. Intended for embedders
// that need custom collaborators (launcher, clock, metrics) behind the
// package-level API; call it during initialization, before tasks exist.
func SetDefault(s *core.Scheduler) {
	if s == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSched = s
}

// SetConfig replaces the process-wide defaults on the default scheduler.
func SetConfig(cfg ProcessConfig) {
	Default().SetConfig(cfg)
}

// Update drains queued completion callbacks onto the calling goroutine.
// Call it periodically from the control loop. Non-blocking.
func Update() int {
	return Default().Update()
}

// PendingCallbacks returns the number of queued, undrained callbacks.
func PendingCallbacks() int {
	return Default().PendingCallbacks()
}

// =============================================================================
// Task creation
// =============================================================================

// Run starts a void task immediately.
func Run(work Work, complete Completion, cfg ...TaskConfig) (*Task[Void], error) {
	return Default().Run(work, complete, cfg...)
}

// Create binds a void task without starting it.
func Create(work Work, complete Completion, cfg ...TaskConfig) *Task[Void] {
	return Default().Create(work, complete, cfg...)
}

// RunAfter starts a void task whose worker sleeps for delay first.
func RunAfter(delay time.Duration, work Work, complete Completion, cfg ...TaskConfig) (*Task[Void], error) {
	return Default().RunAfter(delay, work, complete, cfg...)
}

// RunFireAndForget starts a void task with a no-op completion callback.
func RunFireAndForget(work Work, cfg ...TaskConfig) (*Task[Void], error) {
	return Default().RunFireAndForget(work, cfg...)
}

// RunOnCore starts a void task pinned to the given core index.
func RunOnCore(coreIndex int, work Work, complete Completion) (*Task[Void], error) {
	return Default().RunOnCore(coreIndex, work, complete)
}

// RunWithPriority starts a void task with the given priority.
func RunWithPriority(priority int, work Work, complete Completion) (*Task[Void], error) {
	return Default().RunWithPriority(priority, work, complete)
}

// RunWithResult starts a result-producing task immediately.
func RunWithResult[T any](work WorkFunc[T], complete CompletionFunc[T], cfg ...TaskConfig) (*Task[T], error) {
	return core.RunWithResult(Default(), work, complete, cfg...)
}

// CreateWithResult binds a result-producing task without starting it.
func CreateWithResult[T any](work WorkFunc[T], complete CompletionFunc[T], cfg ...TaskConfig) *Task[T] {
	return core.CreateWithResult(Default(), work, complete, cfg...)
}

// RunAfterWithResult starts a result-producing task after a worker-side
// delay.
func RunAfterWithResult[T any](delay time.Duration, work WorkFunc[T], complete CompletionFunc[T], cfg ...TaskConfig) (*Task[T], error) {
	return core.RunAfterWithResult(Default(), delay, work, complete, cfg...)
}

// RunOnCoreWithResult starts a result-producing task pinned to a core.
func RunOnCoreWithResult[T any](coreIndex int, work WorkFunc[T], complete CompletionFunc[T]) (*Task[T], error) {
	return core.RunOnCoreWithResult(Default(), coreIndex, work, complete)
}

// RunWithPriorityWithResult starts a result-producing task with the given
// priority.
func RunWithPriorityWithResult[T any](priority int, work WorkFunc[T], complete CompletionFunc[T]) (*Task[T], error) {
	return core.RunWithPriorityWithResult(Default(), priority, work, complete)
}
