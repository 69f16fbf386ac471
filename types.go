package dispatch

import "github.com/go-dispatch/dispatch/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the dispatch package for most use cases.

// Task is the unit of work
type Task = core.Task

// Payload is the capability a Task is polymorphic over
type Payload = core.Payload

// Affinity constrains which worker may execute a task
type Affinity = core.Affinity

// PlacementPolicy selects the initial worker for a submitted task
type PlacementPolicy = core.PlacementPolicy

// Config mirrors the dispatcher settings loadable from a YAML file
type Config = core.Config

// Logger is the logging interface used for dispatcher lifecycle events
type Logger = core.Logger

// Metrics is the scheduler metrics collection interface
type Metrics = core.Metrics

// Affinity constants
const (
	AffinityNone = core.AffinityNone
	AffinityMain = core.AffinityMain
)

// Task constructors
var (
	NewTask        = core.NewTask
	NewPayloadTask = core.NewPayloadTask
)

// NewResultTask builds a task that stores the function's result through
// out; see core.NewResultTask.
func NewResultTask[T any](fn func() T, out *T) *Task {
	return core.NewResultTask(fn, out)
}

// Placement policy constructors
var (
	LoadBalancing = core.LoadBalancing
	RoundRobin    = core.RoundRobin
	Random        = core.Random
)

// Errors
var (
	ErrNotInitialized = core.ErrNotInitialized
	ErrTaskContext    = core.ErrTaskContext
	ErrWrongThread    = core.ErrWrongThread
	ErrNoWorker       = core.ErrNoWorker
)

// Configuration helpers
var (
	DefaultConfig = core.DefaultConfig
	LoadConfig    = core.LoadConfig
)
