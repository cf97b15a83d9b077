package core

import (
	"strconv"
	"time"
)

// =============================================================================
// CoreAffinity: Core pinning with a zero-value "unset" sentinel
// =============================================================================

// CoreAffinity selects the core an execution context is pinned to.
// The zero value means "unset": a TaskConfig with an unset affinity inherits
// the process default, and an unset process default means "any core".
// This keeps core 0 addressable while an empty TaskConfig still resolves to
// the process-wide defaults exactly.
type CoreAffinity struct {
	// 0 = unset, -1 = any core, n > 0 = pinned to core n-1
	code int
}

// PinToCore returns an affinity pinned to the given core index.
func PinToCore(index int) CoreAffinity {
	if index < 0 {
		return AnyCore()
	}
	return CoreAffinity{code: index + 1}
}

// AnyCore returns an affinity that lets the scheduler pick the core.
func AnyCore() CoreAffinity {
	return CoreAffinity{code: -1}
}

// IsUnset reports whether the affinity was never specified.
func (c CoreAffinity) IsUnset() bool {
	return c.code == 0
}

// Index returns the pinned core index. ok is false for unset or any-core
// affinities.
func (c CoreAffinity) Index() (index int, ok bool) {
	if c.code > 0 {
		return c.code - 1, true
	}
	return 0, false
}

func (c CoreAffinity) String() string {
	if idx, ok := c.Index(); ok {
		return "core-" + strconv.Itoa(idx)
	}
	return "any"
}

// =============================================================================
// TaskConfig: Per-task launch parameters
// =============================================================================

// TaskConfig carries the launch parameters of a single task.
// Zero values mean "use the process-wide default".
type TaskConfig struct {
	// StackSize is the requested stack size in bytes. 0 = process default.
	// The default GoroutineLauncher treats it as advisory.
	StackSize int

	// Priority is the scheduling priority. 0 = process default.
	Priority int

	// Core pins the execution context to a core. Unset = process default.
	Core CoreAffinity

	// Name identifies the task in logs, metrics and history.
	// Empty = a unique sequential name is generated at launch.
	Name string

	// Timeout, when positive, forcibly cancels the task if it is still
	// running after the duration elapses.
	Timeout time.Duration

	// InlineCallback forces the completion callback to run on the worker
	// goroutine even when the process default delivers callbacks in-loop.
	InlineCallback bool
}

// =============================================================================
// ProcessConfig: Process-wide defaults
// =============================================================================

// ProcessConfig holds the process-wide defaults substituted for unset
// TaskConfig fields. It is owned by a Scheduler and guarded by the
// scheduler's lock, so it may be replaced while tasks are launching.
type ProcessConfig struct {
	DefaultStackSize int
	DefaultPriority  int
	DefaultCore      CoreAffinity

	// MaxConcurrentTasks is the admission limit for in-flight tasks.
	// 0 disables the gate.
	MaxConcurrentTasks int

	// ExecuteCallbacksInLoop selects whether completion callbacks are
	// marshaled through the callback queue (drained by Update from the
	// control loop) or invoked inline on the worker goroutine.
	ExecuteCallbacksInLoop bool
}

// DefaultProcessConfig returns the defaults applied when the embedding
// application never calls SetConfig.
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		DefaultStackSize:       4096,
		DefaultPriority:        1,
		DefaultCore:            AnyCore(),
		MaxConcurrentTasks:     10,
		ExecuteCallbacksInLoop: true,
	}
}

// =============================================================================
// LaunchSpec: Resolved launch parameters
// =============================================================================

// LaunchSpec is a TaskConfig after substituting process-wide defaults for
// every unset field. This is what a Launcher actually receives.
type LaunchSpec struct {
	Name      string
	StackSize int
	Priority  int
	Core      CoreAffinity
}

// resolve substitutes process defaults for unset fields. name must already
// be resolved by the caller (it may be generated).
func (c TaskConfig) resolve(p ProcessConfig, name string) LaunchSpec {
	spec := LaunchSpec{
		Name:      name,
		StackSize: c.StackSize,
		Priority:  c.Priority,
		Core:      c.Core,
	}
	if spec.StackSize <= 0 {
		spec.StackSize = p.DefaultStackSize
	}
	if spec.Priority <= 0 {
		spec.Priority = p.DefaultPriority
	}
	if spec.Core.IsUnset() {
		spec.Core = p.DefaultCore
	}
	if spec.Core.IsUnset() {
		spec.Core = AnyCore()
	}
	return spec
}
