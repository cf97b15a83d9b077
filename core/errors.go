package core

import "github.com/pkg/errors"

var (
	// ErrNoWork is returned by Run when no work function is bound.
	ErrNoWork = errors.New("task: no work function bound")

	// ErrAlreadyStarted is returned by Run when the task was started before.
	ErrAlreadyStarted = errors.New("task: already started")

	// ErrTooManyTasks is returned by Run when the admission gate rejects the
	// launch because MaxConcurrentTasks in-flight tasks already exist.
	ErrTooManyTasks = errors.New("task: max concurrent tasks reached")
)
