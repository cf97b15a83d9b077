package core

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// =============================================================================
// Launcher: Execution context creation and teardown
// =============================================================================

// EntryFunc is the body executed inside an execution context. The context is
// cancelled when the execution context is terminated; long-running bodies
// should observe it.
type EntryFunc func(ctx context.Context)

// ExecContext is the handle to one launched execution context. It is valid
// from Create until the entry function returns or Terminate is called.
type ExecContext struct {
	spec       LaunchSpec
	cancel     context.CancelFunc
	done       chan struct{}
	terminated atomic.Bool
}

// Spec returns the resolved launch parameters of this context.
func (c *ExecContext) Spec() LaunchSpec {
	return c.spec
}

// Done is closed when the entry function returns.
func (c *ExecContext) Done() <-chan struct{} {
	return c.done
}

// Terminated reports whether Terminate was called on this context.
func (c *ExecContext) Terminated() bool {
	return c.terminated.Load()
}

// Launcher creates preemptively scheduled execution contexts and tears them
// down. The default launcher backs each context with one goroutine; an
// embedding application may substitute an implementation that maps contexts
// onto OS threads or a custom runtime.
type Launcher interface {
	// Create starts a new execution context running entry. The context
	// self-terminates when entry returns; no caller reclaims it.
	Create(entry EntryFunc, spec LaunchSpec) (*ExecContext, error)

	// Terminate forcibly tears down a running context. Best effort: no
	// cleanup inside the entry function is guaranteed to run.
	Terminate(h *ExecContext)
}

// =============================================================================
// GoroutineLauncher: Default goroutine-backed launcher
// =============================================================================

// GoroutineLauncher runs each execution context on its own goroutine.
// StackSize, Priority and Core are advisory: they are carried on the handle
// and logged for diagnostics, since the Go runtime sizes stacks and places
// goroutines itself. Terminate cancels the context's context.Context and
// abandons the goroutine; the canceller has already moved the task to a
// terminal state, so anything the abandoned body does afterwards is
// discarded.
type GoroutineLauncher struct {
	logger zerolog.Logger
}

// NewGoroutineLauncher creates a launcher that logs through the given logger.
func NewGoroutineLauncher(logger zerolog.Logger) *GoroutineLauncher {
	return &GoroutineLauncher{logger: logger}
}

func (g *GoroutineLauncher) Create(entry EntryFunc, spec LaunchSpec) (*ExecContext, error) {
	if entry == nil {
		return nil, errors.New("launcher: nil entry function")
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &ExecContext{
		spec:   spec,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	g.logger.Debug().
		Str("task", spec.Name).
		Str("core", spec.Core.String()).
		Int("stack", spec.StackSize).
		Int("priority", spec.Priority).
		Msg("creating execution context")

	go func() {
		defer close(h.done)
		defer cancel()
		entry(ctx)
	}()

	return h, nil
}

func (g *GoroutineLauncher) Terminate(h *ExecContext) {
	if h == nil {
		return
	}
	if h.terminated.CompareAndSwap(false, true) {
		h.cancel()
		g.logger.Debug().Str("task", h.spec.Name).Msg("execution context terminated")
	}
}
