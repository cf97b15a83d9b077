// Package easyasync lets application code launch units of work that run
// concurrently with a main control loop and receive a completion callback,
// optionally carrying a typed result, delivered back on the control-loop
// goroutine instead of the worker's.
//
// # Quick Start
//
// Configure the process-wide defaults once at startup, launch work, and
// drain callbacks from the control loop:
//
//	easyasync.SetConfig(core.ProcessConfig{
//		DefaultStackSize:       8192,
//		DefaultPriority:        2,
//		MaxConcurrentTasks:     5,
//		ExecuteCallbacksInLoop: true,
//	})
//
//	task, err := easyasync.RunWithResult(
//		func(ctx context.Context) (int, error) {
//			return expensiveComputation(ctx)
//		},
//		func(result int) {
//			// Runs on the control-loop goroutine.
//			display.Show(result)
//		},
//	)
//
//	for {
//		easyasync.Update() // non-blocking drain
//		stepApplication()
//	}
//
// # Key Concepts
//
// Task: one unit of work with a forward-only lifecycle
// (Pending -> Running -> Completed/Failed/Cancelled). Tasks that fail or
// are cancelled never invoke their completion callback.
//
// Callback delivery: with ExecuteCallbacksInLoop enabled (the default),
// completions queue up until Update drains them on the calling goroutine.
// Disabled, they run inline on the worker that produced them.
//
// Cancellation: a best-effort forced termination primitive. The worker's
// context.Context is cancelled and its subsequent effects are discarded,
// but no cleanup inside the work function is guaranteed to run. Prefer
// observing ctx inside the work wherever resource safety matters.
//
// The package-level functions operate on a process-wide default scheduler;
// create core.Scheduler values directly when separate workloads need
// separate defaults or collaborators.
package easyasync
