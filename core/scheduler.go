package core

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scheduler resolves effective task configuration, creates tasks and drives
// callback delivery from the embedding application's control loop.
//
// One Scheduler is normally shared process-wide (see the root package's
// Default); creating more is useful in tests and when separate workloads
// need separate defaults.
type Scheduler struct {
	configMu sync.RWMutex
	config   ProcessConfig

	queue    *CallbackQueue
	launcher Launcher
	clock    Clock
	logger   zerolog.Logger
	metrics  Metrics

	inFlight atomic.Int32
	nameSeq  atomic.Uint64
	history  executionHistory
}

// SchedulerOptions holds optional collaborators. Zero fields fall back to
// the goroutine launcher, the system clock, a stderr logger and no-op
// metrics.
type SchedulerOptions struct {
	Launcher Launcher
	Clock    Clock
	Logger   *zerolog.Logger
	Metrics  Metrics

	// HistoryCapacity bounds the execution history ring. 0 = default (100).
	HistoryCapacity int
}

// NewScheduler creates a scheduler with default collaborators and
// DefaultProcessConfig.
func NewScheduler() *Scheduler {
	return NewSchedulerWithOptions(SchedulerOptions{})
}

// NewSchedulerWithOptions creates a scheduler with the given collaborators.
func NewSchedulerWithOptions(opts SchedulerOptions) *Scheduler {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "easyasync").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	launcher := opts.Launcher
	if launcher == nil {
		launcher = NewGoroutineLauncher(logger)
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NilMetrics{}
	}

	return &Scheduler{
		config:   DefaultProcessConfig(),
		queue:    NewCallbackQueue(),
		launcher: launcher,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		history:  newExecutionHistory(opts.HistoryCapacity),
	}
}

// SetConfig replaces the process-wide defaults. Safe to call while tasks
// are launching; tasks created afterwards see the new defaults.
func (s *Scheduler) SetConfig(cfg ProcessConfig) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config = cfg
	s.logger.Debug().
		Int("stack", cfg.DefaultStackSize).
		Int("priority", cfg.DefaultPriority).
		Str("core", cfg.DefaultCore.String()).
		Int("max_concurrent", cfg.MaxConcurrentTasks).
		Bool("in_loop", cfg.ExecuteCallbacksInLoop).
		Msg("process config updated")
}

// Config returns a snapshot of the process-wide defaults.
func (s *Scheduler) Config() ProcessConfig {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// =============================================================================
// Task creation entry points (void variants; see task.go for ...WithResult)
// =============================================================================

// Create binds work, completion and config without starting the task.
func (s *Scheduler) Create(work Work, complete Completion, cfg ...TaskConfig) *Task[Void] {
	return CreateWithResult(s, voidWork(work), voidCompletion(complete), cfg...)
}

// Run creates a void task and starts it immediately.
func (s *Scheduler) Run(work Work, complete Completion, cfg ...TaskConfig) (*Task[Void], error) {
	return RunWithResult(s, voidWork(work), voidCompletion(complete), cfg...)
}

// RunAfter starts a void task whose worker sleeps for delay before running
// the work. A zero delay behaves like Run.
func (s *Scheduler) RunAfter(delay time.Duration, work Work, complete Completion, cfg ...TaskConfig) (*Task[Void], error) {
	return RunAfterWithResult(s, delay, voidWork(work), voidCompletion(complete), cfg...)
}

// RunFireAndForget starts a void task with a no-op completion callback.
func (s *Scheduler) RunFireAndForget(work Work, cfg ...TaskConfig) (*Task[Void], error) {
	return s.Run(work, func() {}, cfg...)
}

// RunOnCore starts a void task pinned to the given core index.
func (s *Scheduler) RunOnCore(coreIndex int, work Work, complete Completion) (*Task[Void], error) {
	return RunOnCoreWithResult(s, coreIndex, voidWork(work), voidCompletion(complete))
}

// RunWithPriority starts a void task with the given priority.
func (s *Scheduler) RunWithPriority(priority int, work Work, complete Completion) (*Task[Void], error) {
	return RunWithPriorityWithResult(s, priority, voidWork(work), voidCompletion(complete))
}

// =============================================================================
// Control loop integration
// =============================================================================

// Update drains the callback queue on the calling goroutine when in-loop
// delivery is enabled, and returns the number of callbacks executed. With
// in-loop delivery disabled callbacks already ran inline on their workers
// and Update is a no-op. Update never blocks: a concurrent drain makes it
// return immediately.
//
// The embedding application must call Update periodically from its control
// loop, or queued completions never execute.
func (s *Scheduler) Update() int {
	if !s.Config().ExecuteCallbacksInLoop {
		return 0
	}
	n := s.queue.Drain()
	s.metrics.RecordCallbackQueueDepth(s.queue.Size())
	return n
}

// PendingCallbacks returns the number of queued, undrained completion
// callbacks, for diagnostics and backpressure observation.
func (s *Scheduler) PendingCallbacks() int {
	return s.queue.Size()
}

// InFlight returns the number of tasks currently holding an admission slot.
func (s *Scheduler) InFlight() int {
	return int(s.inFlight.Load())
}

// RecentTasks returns up to limit finished tasks, newest first. limit <= 0
// returns everything retained.
func (s *Scheduler) RecentTasks(limit int) []TaskRecord {
	return s.history.Recent(limit)
}

// LastTask returns the most recently finished task, if any.
func (s *Scheduler) LastTask() (TaskRecord, bool) {
	return s.history.Last()
}

// =============================================================================
// Internal bookkeeping
// =============================================================================

// admit reserves an in-flight slot, refusing when the limit is reached.
// limit <= 0 disables the gate.
func (s *Scheduler) admit(limit int) bool {
	if limit <= 0 {
		s.inFlight.Add(1)
		return true
	}
	for {
		n := s.inFlight.Load()
		if int(n) >= limit {
			return false
		}
		if s.inFlight.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (s *Scheduler) releaseSlot() {
	s.inFlight.Add(-1)
}

// nextTaskName generates a unique sequential name for unnamed tasks.
func (s *Scheduler) nextTaskName() string {
	return "Task_" + strconv.FormatUint(s.nameSeq.Add(1)-1, 10)
}

// recordFinished appends the terminal outcome to the history ring and the
// metrics sink. Called exactly once per settled task.
func (s *Scheduler) recordFinished(name string, life *Lifecycle) {
	outcome := life.State()
	duration := life.ExecutionTime()

	s.history.Add(TaskRecord{
		ID:          uuid.New(),
		Name:        name,
		Outcome:     outcome,
		StartMillis: life.startMillis(),
		Duration:    duration,
		Err:         life.Err(),
	})
	s.metrics.RecordTaskFinished(name, outcome, duration)
	s.logger.Debug().
		Str("task", name).
		Stringer("outcome", outcome).
		Dur("duration", duration).
		Msg("task finished")
}
