package core

import (
	"sync/atomic"
)

// Affinity constrains which worker may execute a task.
type Affinity int

const (
	// AffinityNone lets the placement policy pick any stealable worker.
	AffinityNone Affinity = iota

	// AffinityMain pins the task to the main worker. Main-affinity tasks
	// only run on the main goroutine, inside ProcessMain.
	AffinityMain
)

// Payload is the single capability a Task is polymorphic over. Execute
// runs the task body; it is invoked exactly once, on the worker that took
// the task. Panics from Execute are not recovered by the scheduler.
type Payload interface {
	Execute()
}

// taskIDCounter assigns task identities process-wide.
var taskIDCounter atomic.Uint64

// =============================================================================
// Task: the unit of work
// =============================================================================

// Task is a unit of work bundled with completion accounting, links to a
// parent and a continuation, and an affinity tag.
//
// The refcount starts at 1 (the task's self-reference) and is incremented
// once per spawned child. It reaches zero only after the payload and every
// descendant spawned under the task have finished; at that transition the
// continuation (if any) is published and waiters are released.
type Task struct {
	id       uint64
	refcount atomic.Uint32
	done     chan struct{}

	// parent and continuation are set before the task is published to a
	// worker and never mutated afterwards; the deque mutex orders those
	// writes against worker reads.
	parent       *Task
	continuation *Task

	affinity  Affinity
	submitted atomic.Bool

	// disp is the dispatcher that adopted the task (submit, spawn or
	// continuation push). Completion propagation publishes the
	// continuation through it.
	disp *Dispatcher

	payload Payload
}

// NewPayloadTask constructs a task around the given payload. The new task
// has a fresh id, refcount 1, no links and no affinity.
func NewPayloadTask(payload Payload) *Task {
	t := &Task{
		id:      taskIDCounter.Add(1),
		done:    make(chan struct{}),
		payload: payload,
	}
	t.refcount.Store(1)
	return t
}

// Process executes the payload, then decrements the parent's refcount (if
// any), then decrements the task's own refcount. It is called by the
// worker that took the task; user code normally never calls it directly.
func (t *Task) Process() {
	t.payload.Execute()

	if t.parent != nil {
		t.parent.DecrementRefcount()
	}

	t.DecrementRefcount()
}

// Wait blocks the caller until the task's refcount reaches zero, i.e.
// until the payload and every descendant spawned under the task have
// finished. Waiting from inside a payload is legal but keeps the worker
// from processing other tasks in the meantime.
func (t *Task) Wait() {
	<-t.done
}

// ID returns the task's process-wide identity.
func (t *Task) ID() uint64 { return t.id }

// Refcount returns the current reference count.
func (t *Task) Refcount() uint32 { return t.refcount.Load() }

// Parent returns the task's parent, or nil.
func (t *Task) Parent() *Task { return t.parent }

// Continuation returns the task's continuation, or nil.
func (t *Task) Continuation() *Task { return t.continuation }

// Affinity returns the task's affinity tag.
func (t *Task) Affinity() Affinity { return t.affinity }

// SetParent stores the parent backlink. The caller is responsible for
// incrementing the parent's refcount before publishing the task; Spawn
// does both.
func (t *Task) SetParent(parent *Task) {
	t.parent = parent
}

// SetContinuation stores the forward link and returns the continuation so
// chains read naturally:
//
//	t1.SetContinuation(t2).SetContinuation(t3)
func (t *Task) SetContinuation(continuation *Task) *Task {
	t.continuation = continuation
	return continuation
}

// SetAffinity stores the affinity tag. Ignored once the task has been
// submitted.
func (t *Task) SetAffinity(affinity Affinity) {
	if t.submitted.Load() {
		return
	}
	t.affinity = affinity
}

// IncrementRefcount adds one reference. Used when spawning child tasks to
// keep the parent alive until the child completes.
func (t *Task) IncrementRefcount() {
	t.refcount.Add(1)
}

// DecrementRefcount removes one reference. On the transition to zero the
// continuation (if any) is pushed to the front of the decrementing
// worker's deque, then all waiters are released. The count never rises
// from zero, so the transition happens at most once.
func (t *Task) DecrementRefcount() {
	if t.refcount.Add(^uint32(0)) != 0 {
		return
	}

	if c := t.continuation; c != nil && t.disp != nil {
		// The continuation lands on whichever worker drove the last
		// decrement. If the decrement came from outside any worker
		// (caller-managed refcounts), fall back to normal placement.
		if err := t.disp.pushTask(c); err != nil {
			_ = t.disp.Submit(c)
		}
	}

	close(t.done)
}

// adopt records the dispatcher responsible for the task and marks it
// submitted. Called before the task is published to any worker.
func (t *Task) adopt(d *Dispatcher) {
	t.disp = d
	t.submitted.Store(true)
}
