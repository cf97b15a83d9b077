package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// =============================================================================
// Work and completion callable shapes
// =============================================================================

// Void is the result type of tasks that produce no value.
type Void = struct{}

// WorkFunc produces the task's result. ctx is cancelled when the task is
// forcibly cancelled or times out; cooperative work should observe it.
type WorkFunc[T any] func(ctx context.Context) (T, error)

// CompletionFunc receives the result of a successfully completed task.
// With in-loop delivery enabled it runs on the goroutine that drains the
// callback queue, otherwise inline on the worker.
type CompletionFunc[T any] func(result T)

// Work is the void work shape used by the non-generic entry points.
type Work func(ctx context.Context) error

// Completion is the void completion shape used by the non-generic entry
// points.
type Completion func()

// =============================================================================
// Task: One unit of work
// =============================================================================

// Task binds a work function, a completion callback and a TaskConfig to a
// shared Lifecycle. Exactly one *Task represents a unit of work; Tasks are
// created through a Scheduler and must not be copied.
type Task[T any] struct {
	sched    *Scheduler
	config   TaskConfig
	work     WorkFunc[T]
	complete CompletionFunc[T]
	life     *Lifecycle

	name         string
	started      atomic.Bool
	settleOnce   sync.Once
	timeoutTimer atomic.Pointer[time.Timer]
}

// CreateWithResult binds work, completion and config without starting the
// task. The caller starts it later with Run.
func CreateWithResult[T any](s *Scheduler, work WorkFunc[T], complete CompletionFunc[T], cfg ...TaskConfig) *Task[T] {
	return &Task[T]{
		sched:    s,
		config:   firstConfig(cfg),
		work:     work,
		complete: complete,
		life:     newLifecycle(s.clock),
	}
}

// RunWithResult creates a task producing a T and starts it immediately.
// The returned task is already running unless err is non-nil.
func RunWithResult[T any](s *Scheduler, work WorkFunc[T], complete CompletionFunc[T], cfg ...TaskConfig) (*Task[T], error) {
	t := CreateWithResult(s, work, complete, cfg...)
	return t, t.Run()
}

// RunAfterWithResult starts a task whose worker first sleeps for delay, then
// runs work normally. The delay is charged against the worker's own time,
// never the control loop's. A zero delay behaves like RunWithResult.
func RunAfterWithResult[T any](s *Scheduler, delay time.Duration, work WorkFunc[T], complete CompletionFunc[T], cfg ...TaskConfig) (*Task[T], error) {
	return RunWithResult(s, delayedWork(work, delay), complete, cfg...)
}

// RunOnCoreWithResult starts a task pinned to the given core index.
func RunOnCoreWithResult[T any](s *Scheduler, coreIndex int, work WorkFunc[T], complete CompletionFunc[T]) (*Task[T], error) {
	cfg := TaskConfig{Core: PinToCore(coreIndex)}
	return RunWithResult(s, work, complete, cfg)
}

// RunWithPriorityWithResult starts a task with the given priority.
func RunWithPriorityWithResult[T any](s *Scheduler, priority int, work WorkFunc[T], complete CompletionFunc[T]) (*Task[T], error) {
	cfg := TaskConfig{Priority: priority}
	return RunWithResult(s, work, complete, cfg)
}

// Run resolves the effective configuration, asks the launcher for an
// execution context and transitions the task to Running.
//
// Failure modes: ErrNoWork when no work function is bound, ErrAlreadyStarted
// on a second call, ErrTooManyTasks when the admission gate is full, or a
// wrapped launcher error. Admission and launcher failures leave the task
// Failed; no completion callback is ever delivered for them.
func (t *Task[T]) Run() error {
	if t.work == nil {
		return ErrNoWork
	}
	if !t.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	cfg := t.sched.Config()
	t.name = t.config.Name
	if t.name == "" {
		t.name = t.sched.nextTaskName()
	}
	spec := t.config.resolve(cfg, t.name)

	if !t.sched.admit(cfg.MaxConcurrentTasks) {
		t.sched.metrics.RecordLaunchRejected("max_concurrent")
		t.sched.logger.Warn().Str("task", t.name).
			Int("limit", cfg.MaxConcurrentTasks).
			Msg("launch rejected by admission gate")
		t.life.fail(ErrTooManyTasks)
		return ErrTooManyTasks
	}

	inLoop := cfg.ExecuteCallbacksInLoop && !t.config.InlineCallback

	// The goroutine may start before Run records the handle; the gate keeps
	// the Pending -> Running transition ordered before any terminal one.
	launched := make(chan struct{})
	entry := func(ctx context.Context) {
		<-launched
		t.runWrapper(ctx, inLoop)
	}

	handle, err := t.sched.launcher.Create(entry, spec)
	if err != nil {
		t.life.fail(err)
		t.sched.metrics.RecordLaunchRejected("launcher_error")
		t.settle()
		return errors.Wrap(err, "create execution context")
	}

	t.life.markRunning(handle)
	close(launched)

	if timeout := t.config.Timeout; timeout > 0 {
		t.armTimeout(timeout)
	}

	t.sched.metrics.RecordTaskLaunched(t.name)
	return nil
}

// runWrapper is the execution context body: it checks the cancellation flag,
// invokes the work function, moves the lifecycle to its terminal state and
// delivers the completion thunk. The context self-terminates when this
// returns; nobody else reclaims it.
func (t *Task[T]) runWrapper(ctx context.Context, inLoop bool) {
	defer t.settle()

	if t.life.IsCancelled() {
		if t.life.markCancelledBeforeWork() {
			t.sched.logger.Debug().Str("task", t.name).Msg("cancelled before work started")
		}
		return
	}

	result, err := t.invokeWork(ctx)
	if err != nil {
		if t.life.fail(err) {
			t.sched.logger.Error().Err(err).Str("task", t.name).Msg("task failed")
		}
		return
	}

	if !t.life.complete() {
		// Cancelled while the work ran: result is discarded, no callback.
		return
	}

	complete := t.complete
	thunk := func() {
		if complete != nil {
			complete(result)
		}
	}
	if inLoop {
		t.sched.queue.Enqueue(thunk)
	} else {
		thunk()
	}
}

// invokeWork calls the work function with panic recovery, so a panicking
// task fails instead of crashing the process.
func (t *Task[T]) invokeWork(ctx context.Context) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("task panicked: %v", r)
		}
	}()
	return t.work(ctx)
}

// Cancel requests cancellation. While Pending only the flag is set and the
// work will never execute its effects. While Running the execution context
// is forcibly terminated: best effort, no cleanup inside the work function
// is guaranteed to run, so callers must not hold cleanup-requiring resources
// across a cancellable task boundary.
func (t *Task[T]) Cancel() {
	h, forced := t.life.requestCancel()
	if forced {
		t.sched.launcher.Terminate(h)
		t.sched.logger.Debug().Str("task", t.name).Msg("task cancelled")
		t.settle()
	}
}

// settle releases the admission slot and records the terminal outcome
// exactly once per task, whichever of the wrapper or a forced cancel gets
// here first.
func (t *Task[T]) settle() {
	t.settleOnce.Do(func() {
		if timer := t.timeoutTimer.Load(); timer != nil {
			timer.Stop()
		}
		t.sched.releaseSlot()
		t.sched.recordFinished(t.name, t.life)
	})
}

func (t *Task[T]) armTimeout(timeout time.Duration) {
	timer := time.AfterFunc(timeout, func() {
		if t.life.IsRunning() {
			t.sched.logger.Warn().Str("task", t.name).
				Dur("timeout", timeout).
				Msg("task exceeded timeout, cancelling")
			t.Cancel()
		}
	})
	t.timeoutTimer.Store(timer)
}

// Name returns the effective task name. Empty until Run resolves it.
func (t *Task[T]) Name() string {
	return t.name
}

// State returns the current lifecycle state.
func (t *Task[T]) State() TaskState {
	return t.life.State()
}

// IsRunning reports whether the task is running and not cancelled.
func (t *Task[T]) IsRunning() bool {
	return t.life.IsRunning()
}

// IsCancelled reports whether cancellation was requested.
func (t *Task[T]) IsCancelled() bool {
	return t.life.IsCancelled()
}

// Err returns the work or launch error once the task has Failed.
func (t *Task[T]) Err() error {
	return t.life.Err()
}

// ExecutionTime returns the elapsed running time, fixed once terminal.
func (t *Task[T]) ExecutionTime() time.Duration {
	return t.life.ExecutionTime()
}

// =============================================================================
// Work adapters
// =============================================================================

func voidWork(work Work) WorkFunc[Void] {
	if work == nil {
		return nil
	}
	return func(ctx context.Context) (Void, error) {
		return Void{}, work(ctx)
	}
}

func voidCompletion(complete Completion) CompletionFunc[Void] {
	if complete == nil {
		return nil
	}
	return func(Void) {
		complete()
	}
}

// delayedWork prepends a sleep to the work function. The sleep aborts early
// when the execution context is terminated.
func delayedWork[T any](work WorkFunc[T], delay time.Duration) WorkFunc[T] {
	if work == nil || delay <= 0 {
		return work
	}
	return func(ctx context.Context) (T, error) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
		return work(ctx)
	}
}

func firstConfig(cfg []TaskConfig) TaskConfig {
	if len(cfg) > 0 {
		return cfg[0]
	}
	return TaskConfig{}
}
