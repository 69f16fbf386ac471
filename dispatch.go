package dispatch

import (
	"sync"
	"time"

	"github.com/go-dispatch/dispatch/core"
)

// =============================================================================
// Global Dispatcher Helper (Singleton)
// =============================================================================

var (
	globalDispatcher *core.Dispatcher
	globalMu         sync.Mutex
)

// getOrCreate returns the process-wide dispatcher, creating an
// unconfigured one on first use.
func getOrCreate() *core.Dispatcher {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalDispatcher == nil {
		globalDispatcher = core.NewDispatcher()
	}
	return globalDispatcher
}

// GetGlobalDispatcher returns the global dispatcher instance, creating it
// if needed. Advanced users can configure logging and metrics by swapping
// in a dispatcher of their own with SetGlobalDispatcher before Initialize.
func GetGlobalDispatcher() *core.Dispatcher {
	return getOrCreate()
}

// SetGlobalDispatcher replaces the global dispatcher. Ignored once the
// current one has been initialized; call Shutdown first.
func SetGlobalDispatcher(d *core.Dispatcher) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalDispatcher != nil && globalDispatcher.Initialized() {
		return
	}
	globalDispatcher = d
}

// SetPolicy configures the global placement policy
// (default: load balancing). Only effective before Initialize.
func SetPolicy(p PlacementPolicy) {
	getOrCreate().SetPolicy(p)
}

// SetWorkerCount configures the number of stealable workers to create
// (default: one per CPU). Only effective before Initialize.
func SetWorkerCount(n int) {
	getOrCreate().SetWorkerCount(n)
}

// WorkerCount returns the configured number of stealable workers.
func WorkerCount() int {
	return getOrCreate().WorkerCount()
}

// Configure applies a file-loadable Config. Only effective before
// Initialize.
func Configure(cfg Config) {
	getOrCreate().Configure(cfg)
}

// Initialize creates and starts the worker pool. Must be called from the
// main goroutine (the one that will drive ProcessMain). Repeated calls
// are ineffective.
func Initialize() {
	getOrCreate().Initialize()
}

// Initialized reports whether the global dispatcher has been initialized.
func Initialized() bool {
	return getOrCreate().Initialized()
}

// Shutdown signals all workers to stop, joins them, and drops the global
// dispatcher so a fresh one can be configured afterwards. Safe to call
// multiple times.
func Shutdown() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalDispatcher != nil {
		globalDispatcher.Shutdown()
		globalDispatcher = nil
	}
}

// Submit places a task for asynchronous execution, choosing a worker via
// the placement policy (or the main lane for main-affinity tasks).
// Submitting nil is a no-op.
func Submit(t *Task) error {
	return getOrCreate().Submit(t)
}

// SubmitAfter places a task for submission once the delay elapses.
func SubmitAfter(t *Task, delay time.Duration) error {
	return getOrCreate().SubmitAfter(t, delay)
}

// Spawn links the task as a child of the currently executing task and
// pushes it onto the executing worker's front. Must be called from inside
// a payload.
func Spawn(t *Task) error {
	return getOrCreate().Spawn(t)
}

// ProcessMain drains main-affinity tasks on the calling goroutine, which
// must be the one that called Initialize. Returns when the main lane is
// empty.
func ProcessMain() error {
	return getOrCreate().ProcessMain()
}

// =============================================================================
// Current-task inspection
// =============================================================================

// CurrentTask returns the task executing on the calling goroutine. Fails
// with ErrTaskContext outside task execution.
func CurrentTask() (*Task, error) {
	return getOrCreate().CurrentTask()
}

// CurrentParent returns the parent of the currently executing task, or
// nil when it has none.
func CurrentParent() (*Task, error) {
	t, err := CurrentTask()
	if err != nil {
		return nil, err
	}
	return t.Parent(), nil
}

// CurrentContinuation returns the continuation of the currently executing
// task, or nil when it has none.
func CurrentContinuation() (*Task, error) {
	t, err := CurrentTask()
	if err != nil {
		return nil, err
	}
	return t.Continuation(), nil
}

// CurrentRefcount returns the reference count of the currently executing
// task.
func CurrentRefcount() (uint32, error) {
	t, err := CurrentTask()
	if err != nil {
		return 0, err
	}
	return t.Refcount(), nil
}
