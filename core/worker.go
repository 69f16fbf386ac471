package core

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// =============================================================================
// Worker: execution vehicle with a private deque
// =============================================================================

// Worker owns a double-ended queue of pending tasks and, except for the
// main worker, a goroutine running the steal loop.
//
// Deque discipline: the owner takes from the front, thieves steal from the
// front, and only external submission pushes to the back. This is not the
// classical Chase-Lev arrangement; owner and thieves contend on the same
// end under the worker mutex, and submissions are observed only after
// local and stolen work drains to the front.
type Worker struct {
	// index is the worker's position in the dispatcher's list (0 = main).
	// It doubles as the total order used by lockInOrder.
	index     int
	stealable bool

	stop atomic.Bool

	mu    sync.Mutex
	deque *taskDeque

	// goid identifies the goroutine running the steal loop. For the main
	// worker it is the goroutine that called Initialize.
	goid atomic.Int64

	// current is the task being executed, valid only inside the run loop
	// between take and complete. It is only ever read from the worker's
	// own goroutine (current-task inspection happens from inside
	// payloads), so it needs no synchronization.
	current *Task

	// done is closed when the steal loop returns. Joining a worker twice
	// is safe: receiving from a closed channel returns immediately.
	done    chan struct{}
	disp    *Dispatcher
	backoff time.Duration

	executed atomic.Uint64
	stolen   atomic.Uint64
}

func newWorker(index int, stealable bool, disp *Dispatcher) *Worker {
	return &Worker{
		index:     index,
		stealable: stealable,
		deque:     newTaskDeque(),
		done:      make(chan struct{}),
		disp:      disp,
		backoff:   disp.stealBackoff,
	}
}

// start launches the steal loop on its own goroutine. It returns once the
// goroutine has recorded its identity, so current-worker lookups observe
// the worker immediately. Not used for the main worker, whose loop is
// driven synchronously by ProcessMain.
func (w *Worker) start() {
	ready := make(chan struct{})
	go func() {
		w.goid.Store(goid.Get())
		close(ready)
		defer close(w.done)
		w.doWork()
	}()
	<-ready
}

// stopWork signals the steal loop to exit once the deque has drained.
func (w *Worker) stopWork() {
	w.stop.Store(true)
}

// join blocks until the steal loop has returned. Safe to call repeatedly.
func (w *Worker) join() {
	if !w.stealable {
		return
	}
	<-w.done
}

// submit pushes a task to the back of the deque. Used by the dispatcher
// for new top-level work.
func (w *Worker) submit(t *Task) {
	w.mu.Lock()
	w.deque.pushBack(t)
	w.mu.Unlock()
}

// pushFront pushes a task to the front of the deque. Used only by the
// owning worker, for spawned children and continuation publication.
func (w *Worker) pushFront(t *Task) {
	w.mu.Lock()
	w.deque.pushFront(t)
	w.mu.Unlock()
}

// trySteal pops the front task without locking. The caller must hold the
// worker's mutex (normally via lockInOrder).
func (w *Worker) trySteal() *Task {
	return w.deque.popFront()
}

// CurrentTask returns the task the worker is executing, or nil between
// tasks. Only meaningful when called from the worker's own goroutine.
func (w *Worker) CurrentTask() *Task {
	return w.current
}

// TaskCount returns the number of pending tasks in the deque. The value is
// immediately stale; placement policies use it as a heuristic only.
func (w *Worker) TaskCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deque.len()
}

// Index returns the worker's position in the dispatcher's list; 0 is the
// main worker.
func (w *Worker) Index() int { return w.index }

// Stealable reports whether thieves may take from this worker.
func (w *Worker) Stealable() bool { return w.stealable }

// Stats returns a snapshot of the worker's counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Index:     w.index,
		Stealable: w.stealable,
		Queued:    w.TaskCount(),
		Executed:  w.executed.Load(),
		Stolen:    w.stolen.Load(),
	}
}

// lockInOrder acquires both workers' mutexes ordered by worker index, so
// two workers stealing from each other cannot deadlock.
func lockInOrder(a, b *Worker) {
	if a.index < b.index {
		a.mu.Lock()
		b.mu.Lock()
	} else {
		b.mu.Lock()
		a.mu.Lock()
	}
}

// unlockInOrder releases both workers' mutexes in reverse acquisition
// order.
func unlockInOrder(a, b *Worker) {
	if a.index < b.index {
		b.mu.Unlock()
		a.mu.Unlock()
	} else {
		a.mu.Unlock()
		b.mu.Unlock()
	}
}

// doWork is the steal loop. It repeatedly takes from the front of its own
// deque; when empty, stealable workers back off briefly and try to take
// from a random victim's front. The loop exits once the stop flag is set
// and the deque has drained.
//
// The main worker is created with the stop flag already set, so its loop
// runs until the deque is empty and returns, which is what lets
// ProcessMain drive it synchronously.
func (w *Worker) doWork() {
	for {
		w.mu.Lock()
		task := w.deque.popFront()
		w.current = task
		w.mu.Unlock()

		if task != nil {
			w.runTask(task)
			continue
		}

		if w.stop.Load() {
			// Re-check emptiness under the lock: a continuation or a
			// late submission may have landed since the unlocked pop.
			w.mu.Lock()
			empty := w.deque.empty()
			w.mu.Unlock()
			if empty {
				return
			}
			continue
		}

		if !w.stealable {
			continue
		}

		// Nothing local: yield, back off, then pick a victim.
		runtime.Gosched()
		time.Sleep(w.backoff)

		victim := w.disp.chooseVictim()
		if victim == nil || victim == w {
			continue
		}

		lockInOrder(w, victim)
		task = victim.trySteal()
		if task != nil {
			w.current = task
		}
		unlockInOrder(w, victim)

		if task != nil {
			w.stolen.Add(1)
			w.disp.metrics.RecordSteal(w.index, victim.index)
			w.runTask(task)
		}
	}
}

func (w *Worker) runTask(t *Task) {
	// Count before running so a waiter released by the task's completion
	// already observes it.
	w.executed.Add(1)
	start := time.Now()
	t.Process()
	w.disp.metrics.RecordTaskDuration(w.index, time.Since(start))
	w.current = nil
}
