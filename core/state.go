package core

import (
	"sync"
	"time"
)

// =============================================================================
// TaskState: Lifecycle state machine
// =============================================================================

// TaskState is the lifecycle state of a task.
// States only advance along Pending -> Running -> {Completed|Failed|Cancelled};
// a task never regresses or revisits an earlier state.
type TaskState int32

const (
	// StatePending: the task exists but its execution context does not.
	StatePending TaskState = iota

	// StateRunning: the execution context is live.
	StateRunning

	// StateCompleted: the work function returned normally.
	StateCompleted

	// StateFailed: the work function returned an error or the launch failed.
	StateFailed

	// StateCancelled: the task was cancelled while running.
	StateCancelled
)

// IsTerminal reports whether the state ends the lifecycle.
func (s TaskState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

func (s TaskState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// =============================================================================
// Lifecycle: Shared per-task state
// =============================================================================

// Lifecycle tracks one task's state machine, cancellation flag, execution
// context handle and timestamps. It is shared by pointer between the owning
// Task and the wrapper running on the worker goroutine, so it outlives
// whichever side finishes first. All methods are safe for concurrent use.
type Lifecycle struct {
	mu        sync.Mutex
	clock     Clock
	state     TaskState
	cancelled bool
	handle    *ExecContext
	startMs   int64
	endMs     int64
	err       error
}

func newLifecycle(clock Clock) *Lifecycle {
	return &Lifecycle{clock: clock, state: StatePending}
}

// markRunning records the execution context handle, stamps the start time
// and advances Pending -> Running.
func (l *Lifecycle) markRunning(h *ExecContext) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StatePending {
		return false
	}
	l.state = StateRunning
	l.handle = h
	l.startMs = l.clock.NowMillis()
	return true
}

// complete advances to Completed. Returns false if the task was cancelled
// or already terminal, in which case the completion callback must not fire.
func (l *Lifecycle) complete() bool {
	return l.finish(StateCompleted, nil)
}

// fail advances to Failed and records the work or launch error.
func (l *Lifecycle) fail(err error) bool {
	return l.finish(StateFailed, err)
}

// markCancelledBeforeWork is called by the wrapper when it observes the
// cancellation flag before invoking the work function. The context exists
// but no user code ran, so the task settles as Cancelled.
func (l *Lifecycle) markCancelledBeforeWork() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.IsTerminal() {
		return false
	}
	l.state = StateCancelled
	l.handle = nil
	l.stampEndLocked()
	return true
}

func (l *Lifecycle) finish(terminal TaskState, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.IsTerminal() {
		return false
	}
	if l.cancelled && terminal == StateCompleted {
		// Cancelled at the moment the work returned: no completion.
		return false
	}
	l.state = terminal
	l.handle = nil
	l.err = err
	l.stampEndLocked()
	return true
}

// requestCancel sets the cancellation flag. If the task is running, it
// atomically transitions to Cancelled and returns the context handle so the
// caller can forcibly terminate it. While Pending the flag alone is enough:
// there is nothing to terminate yet, and the wrapper will observe the flag
// and exit without side effects.
func (l *Lifecycle) requestCancel() (h *ExecContext, forced bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cancelled = true
	if l.state != StateRunning {
		return nil, false
	}
	l.state = StateCancelled
	h = l.handle
	l.handle = nil
	l.stampEndLocked()
	return h, true
}

// stampEndLocked stamps the end time exactly once, on entry to a terminal
// state.
func (l *Lifecycle) stampEndLocked() {
	if l.endMs == 0 {
		l.endMs = l.clock.NowMillis()
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() TaskState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// IsCancelled reports whether cancellation was requested.
func (l *Lifecycle) IsCancelled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancelled
}

// IsRunning reports whether the task is running and not cancelled.
func (l *Lifecycle) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateRunning && !l.cancelled
}

// Err returns the work or launch error for a Failed task, nil otherwise.
func (l *Lifecycle) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// ExecutionTime returns how long the task has been running, or the fixed
// start-to-end duration once the task is terminal. Zero before the task
// starts.
func (l *Lifecycle) ExecutionTime() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.startMs == 0 {
		return 0
	}
	if l.endMs == 0 {
		return time.Duration(l.clock.NowMillis()-l.startMs) * time.Millisecond
	}
	return time.Duration(l.endMs-l.startMs) * time.Millisecond
}

// startMillis returns the start timestamp, 0 if the task never started.
func (l *Lifecycle) startMillis() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startMs
}
