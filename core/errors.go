package core

import "errors"

// Errors reported by the dispatcher. All of them are returned synchronously
// to the calling goroutine at the point of misuse; the scheduler never
// recovers from them internally.
var (
	// ErrNotInitialized indicates a scheduling operation was invoked
	// before Initialize completed.
	ErrNotInitialized = errors.New("dispatch: operation invoked before dispatcher initialization")

	// ErrTaskContext indicates a context-required operation (Spawn,
	// current-task inspection) was invoked off any worker goroutine, or on
	// the main goroutine while ProcessMain is not running.
	ErrTaskContext = errors.New("dispatch: task context method invoked from non-task context")

	// ErrWrongThread indicates ProcessMain was invoked from a goroutine
	// other than the one that called Initialize.
	ErrWrongThread = errors.New("dispatch: ProcessMain invoked from outside the main goroutine")

	// ErrNoWorker indicates the configured placement policy could not
	// select a worker for a submission.
	ErrNoWorker = errors.New("dispatch: placement policy could not select a worker")
)
