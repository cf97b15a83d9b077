package core

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// fakeClock is a manually advanced Clock for deterministic duration
// assertions.
type fakeClock struct {
	mu  sync.Mutex
	now int64
}

func newFakeClock(start int64) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d.Milliseconds()
}

// recordingLauncher delegates to the goroutine launcher and records every
// resolved LaunchSpec it receives.
type recordingLauncher struct {
	inner Launcher

	mu    sync.Mutex
	specs []LaunchSpec
}

func newRecordingLauncher() *recordingLauncher {
	return &recordingLauncher{inner: NewGoroutineLauncher(zerolog.Nop())}
}

func (l *recordingLauncher) Create(entry EntryFunc, spec LaunchSpec) (*ExecContext, error) {
	l.mu.Lock()
	l.specs = append(l.specs, spec)
	l.mu.Unlock()
	return l.inner.Create(entry, spec)
}

func (l *recordingLauncher) Terminate(h *ExecContext) {
	l.inner.Terminate(h)
}

func (l *recordingLauncher) lastSpec() (LaunchSpec, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.specs) == 0 {
		return LaunchSpec{}, false
	}
	return l.specs[len(l.specs)-1], true
}

// failingLauncher refuses every creation request.
type failingLauncher struct{}

func (failingLauncher) Create(entry EntryFunc, spec LaunchSpec) (*ExecContext, error) {
	return nil, errors.New("out of execution contexts")
}

func (failingLauncher) Terminate(h *ExecContext) {}

// countingMetrics records metric calls for assertions.
type countingMetrics struct {
	mu        sync.Mutex
	launched  int
	finished  map[TaskState]int
	rejected  map[string]int
	lastDepth int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		finished: make(map[TaskState]int),
		rejected: make(map[string]int),
	}
}

func (m *countingMetrics) RecordTaskLaunched(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.launched++
}

func (m *countingMetrics) RecordTaskFinished(name string, outcome TaskState, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished[outcome]++
}

func (m *countingMetrics) RecordLaunchRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *countingMetrics) RecordCallbackQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastDepth = depth
}

func (m *countingMetrics) finishedCount(outcome TaskState) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished[outcome]
}

func (m *countingMetrics) rejectedCount(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejected[reason]
}

// newTestScheduler builds a scheduler with a silent logger and the given
// optional overrides.
func newTestScheduler(opts SchedulerOptions) *Scheduler {
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	return NewSchedulerWithOptions(opts)
}
