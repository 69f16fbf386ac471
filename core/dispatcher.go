package core

import (
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// =============================================================================
// Dispatcher: coordinates the worker set
// =============================================================================

// Dispatcher coordinates a set of workers, routes submissions through the
// placement policy, and provides the current-worker lookup used by
// spawning and stealing.
//
// A Dispatcher transitions once from unconfigured to initialised
// (Initialize, main goroutine only) and once from initialised to shut
// down (Shutdown). Configuration setters are accepted only before
// Initialize and are silent no-ops afterwards.
//
// The package-level facade in the root package owns the process-wide
// instance; tests construct private dispatchers freely.
type Dispatcher struct {
	mu          sync.Mutex // guards configuration and lifecycle transitions
	initialized atomic.Bool
	shutDown    bool

	// workers[0] is the main worker; indices >= 1 are the stealable pool.
	// Built once in Initialize and never resized; readers do not lock.
	workers []*Worker

	policy       PlacementPolicy
	workerCount  int
	stealBackoff time.Duration

	mainGoID       int64
	mainProcessing atomic.Bool

	delay *DelayManager

	logger  Logger
	metrics Metrics
}

// NewDispatcher creates an unconfigured dispatcher with default settings:
// load-balancing policy, one stealable worker per CPU, no-op logging and
// metrics.
func NewDispatcher() *Dispatcher {
	return NewDispatcherWithConfig(DefaultDispatcherConfig())
}

// NewDispatcherWithConfig creates an unconfigured dispatcher with the
// given collaborators. Nil config or nil fields fall back to defaults.
func NewDispatcherWithConfig(config *DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		policy:       LoadBalancing(),
		workerCount:  runtime.NumCPU(),
		stealBackoff: time.Microsecond,
	}

	if config != nil {
		d.logger = config.Logger
		d.metrics = config.Metrics
	}
	if d.logger == nil {
		d.logger = NewNoOpLogger()
	}
	if d.metrics == nil {
		d.metrics = &NilMetrics{}
	}

	return d
}

// =============================================================================
// Configuration (pre-initialization only)
// =============================================================================

// SetPolicy configures the placement policy. No-op after Initialize.
func (d *Dispatcher) SetPolicy(p PlacementPolicy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized.Load() || p == nil {
		return
	}
	d.policy = p
}

// SetWorkerCount configures the number of stealable workers to create.
// No-op after Initialize.
func (d *Dispatcher) SetWorkerCount(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized.Load() || n < 0 {
		return
	}
	d.workerCount = n
}

// SetStealBackoff configures the sleep a worker takes between failed
// steal attempts. No-op after Initialize.
func (d *Dispatcher) SetStealBackoff(backoff time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized.Load() || backoff <= 0 {
		return
	}
	d.stealBackoff = backoff
}

// Configure applies a file-loadable Config. No-op after Initialize.
func (d *Dispatcher) Configure(cfg Config) {
	d.SetWorkerCount(cfg.Workers)
	d.SetStealBackoff(cfg.stealBackoff())
	if p, ok := policyByName(cfg.Policy); ok {
		d.SetPolicy(p)
	}
}

// Policy returns the configured placement policy. The getters read without
// the configuration lock (payloads may call them while Shutdown holds it).
// After Initialize the values are immutable, so the reads are race-free;
// before Initialize they race with concurrent setters.
func (d *Dispatcher) Policy() PlacementPolicy {
	return d.policy
}

// WorkerCount returns the configured number of stealable workers.
func (d *Dispatcher) WorkerCount() int {
	return d.workerCount
}

// Initialized reports whether Initialize has completed.
func (d *Dispatcher) Initialized() bool {
	return d.initialized.Load()
}

// =============================================================================
// Lifecycle
// =============================================================================

// Initialize records the calling goroutine as the main one, creates the
// main worker at index 0 plus the configured stealable workers, and starts
// the stealable workers' steal loops. Idempotent on repeated calls.
//
// Must be called from the goroutine that will later drive ProcessMain.
func (d *Dispatcher) Initialize() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized.Load() {
		return
	}

	d.mainGoID = goid.Get()

	// The main worker does not manage its own goroutine. It is never
	// started, stopped or joined; its loop runs only when ProcessMain
	// drives it. Its stop flag is set from birth so the loop returns as
	// soon as the deque drains. It is invisible to the placement policy
	// and to thieves.
	main := newWorker(0, false, d)
	main.stop.Store(true)
	main.goid.Store(d.mainGoID)
	d.workers = append(d.workers, main)

	for i := 1; i <= d.workerCount; i++ {
		d.workers = append(d.workers, newWorker(i, true, d))
	}

	for _, w := range d.workers[1:] {
		w.start()
	}

	d.delay = NewDelayManager(d)

	d.initialized.Store(true)
	d.logger.Info("dispatcher initialized", F("workers", d.workerCount))
}

// Shutdown signals all stealable workers to stop, then joins them. Safe
// to call multiple times; joined workers are not re-joined. The main
// worker requires no signalling.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized.Load() || d.shutDown {
		return
	}
	d.shutDown = true

	d.delay.Stop()

	for _, w := range d.workers[1:] {
		w.stopWork()
	}
	for _, w := range d.workers[1:] {
		w.join()
	}

	d.logger.Info("dispatcher shut down", F("workers", d.workerCount))
}

// =============================================================================
// Scheduling operations
// =============================================================================

// Submit places a task for asynchronous execution. Main-affinity tasks go
// to the main worker's back; everything else is routed by the placement
// policy over the stealable pool. Submitting nil is a no-op.
func (d *Dispatcher) Submit(t *Task) error {
	if t == nil {
		return nil
	}
	if !d.initialized.Load() {
		return ErrNotInitialized
	}

	t.adopt(d)

	if t.Affinity() == AffinityMain {
		d.workers[0].submit(t)
		d.metrics.RecordSubmit(0)
		return nil
	}

	target := d.policy(d.workers[1:])
	if target == nil {
		d.metrics.RecordPlacementFailure()
		d.logger.Warn("placement policy selected no worker", F("task", t.ID()))
		return ErrNoWorker
	}

	target.submit(t)
	d.metrics.RecordSubmit(target.index)
	return nil
}

// SubmitAfter places a task for normal submission once the delay elapses.
// Zero or negative delay submits immediately. Submitting nil is a no-op.
func (d *Dispatcher) SubmitAfter(t *Task, delay time.Duration) error {
	if t == nil {
		return nil
	}
	if !d.initialized.Load() {
		return ErrNotInitialized
	}
	if delay <= 0 {
		return d.Submit(t)
	}
	d.delay.Add(t, delay)
	return nil
}

// Spawn creates a child relationship between the task and the currently
// executing task, and pushes the child onto the executing worker's front.
// Must be called from a task-execution context. Spawning nil is a no-op.
func (d *Dispatcher) Spawn(t *Task) error {
	if t == nil {
		return nil
	}
	if !d.initialized.Load() {
		return ErrNotInitialized
	}

	spawner, err := d.currentWorker()
	if err != nil {
		return err
	}
	parent := spawner.CurrentTask()
	if parent == nil {
		return ErrTaskContext
	}

	// The parent's count rises strictly before the child becomes
	// reachable to any worker.
	t.SetParent(parent)
	parent.IncrementRefcount()

	t.adopt(d)
	spawner.pushFront(t)
	return nil
}

// ProcessMain drains the main worker's deque on the calling goroutine,
// which must be the one that called Initialize. It returns once the main
// lane is empty.
func (d *Dispatcher) ProcessMain() error {
	if !d.initialized.Load() {
		return ErrNotInitialized
	}
	if goid.Get() != d.mainGoID {
		return ErrWrongThread
	}

	d.mainProcessing.Store(true)
	d.workers[0].doWork()
	d.mainProcessing.Store(false)
	return nil
}

// CurrentTask returns the task executing on the calling worker goroutine.
func (d *Dispatcher) CurrentTask() (*Task, error) {
	if !d.initialized.Load() {
		return nil, ErrNotInitialized
	}
	w, err := d.currentWorker()
	if err != nil {
		return nil, err
	}
	t := w.CurrentTask()
	if t == nil {
		return nil, ErrTaskContext
	}
	return t, nil
}

// currentWorker finds the worker owned by the calling goroutine. The main
// worker is only returned while ProcessMain is draining it.
func (d *Dispatcher) currentWorker() (*Worker, error) {
	id := goid.Get()
	for _, w := range d.workers {
		if w.goid.Load() != id {
			continue
		}
		if w.index == 0 && !d.mainProcessing.Load() {
			return nil, ErrTaskContext
		}
		return w, nil
	}
	return nil, ErrTaskContext
}

// chooseVictim picks a uniformly random stealable worker. The result may
// be the caller itself; the steal loop skips that case.
func (d *Dispatcher) chooseVictim() *Worker {
	if d.workerCount == 0 {
		return nil
	}
	return d.workers[1+rand.IntN(d.workerCount)]
}

// pushTask routes a task to the front of the calling worker's deque. Used
// by continuation publication.
func (d *Dispatcher) pushTask(t *Task) error {
	w, err := d.currentWorker()
	if err != nil {
		return err
	}
	t.adopt(d)
	w.pushFront(t)
	return nil
}

// =============================================================================
// Observability
// =============================================================================

// Stats returns a snapshot of the dispatcher's state.
func (d *Dispatcher) Stats() DispatcherStats {
	s := DispatcherStats{
		Workers:     d.WorkerCount(),
		Initialized: d.initialized.Load(),
	}
	if !s.Initialized {
		return s
	}
	for _, w := range d.workers {
		s.Queued += w.TaskCount()
	}
	s.Delayed = d.delay.TaskCount()
	return s
}

// WorkerStats returns per-worker snapshots, main worker first. Nil before
// initialization.
func (d *Dispatcher) WorkerStats() []WorkerStats {
	if !d.initialized.Load() {
		return nil
	}
	stats := make([]WorkerStats, 0, len(d.workers))
	for _, w := range d.workers {
		stats = append(stats, w.Stats())
	}
	return stats
}

// DelayedTaskCount reports tasks waiting in the delay manager.
func (d *Dispatcher) DelayedTaskCount() int {
	if !d.initialized.Load() {
		return 0
	}
	return d.delay.TaskCount()
}
