package core

import "time"

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting scheduler metrics.
// Implementations can send metrics to monitoring systems; see
// observability/prometheus.
//
// Methods should be non-blocking and fast, as several are called on the
// task execution path.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute on the
	// given worker.
	RecordTaskDuration(workerIndex int, duration time.Duration)

	// RecordSubmit records that a task was placed on the given worker's
	// back.
	RecordSubmit(workerIndex int)

	// RecordSteal records a successful steal by thief from victim.
	RecordSteal(thiefIndex, victimIndex int)

	// RecordQueueDepth records the current deque depth of a worker.
	// Not called by the dispatcher or on the execution path; it is left to
	// callers that sample queue depths themselves.
	RecordQueueDepth(workerIndex int, depth int)

	// RecordPlacementFailure records that the placement policy failed to
	// select a worker for a submission.
	RecordPlacementFailure()
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(workerIndex int, duration time.Duration) {}
func (m *NilMetrics) RecordSubmit(workerIndex int)                               {}
func (m *NilMetrics) RecordSteal(thiefIndex, victimIndex int)                    {}
func (m *NilMetrics) RecordQueueDepth(workerIndex int, depth int)                {}
func (m *NilMetrics) RecordPlacementFailure()                                    {}

// =============================================================================
// Stats snapshots
// =============================================================================

// WorkerStats represents runtime observability state for one worker.
type WorkerStats struct {
	Index     int
	Stealable bool
	Queued    int
	Executed  uint64
	Stolen    uint64
}

// DispatcherStats represents runtime observability state for the
// dispatcher as a whole.
type DispatcherStats struct {
	Workers     int // stealable workers
	Queued      int // pending tasks across all deques
	Delayed     int // tasks waiting in the delay manager
	Initialized bool
}

// =============================================================================
// DispatcherConfig: optional handlers for NewDispatcherWithConfig
// =============================================================================

// DispatcherConfig holds optional collaborators for a Dispatcher. Nil
// fields fall back to defaults (NoOpLogger, NilMetrics).
type DispatcherConfig struct {
	Logger  Logger
	Metrics Metrics
}

// DefaultDispatcherConfig returns a config with default handlers.
func DefaultDispatcherConfig() *DispatcherConfig {
	return &DispatcherConfig{
		Logger:  NewNoOpLogger(),
		Metrics: &NilMetrics{},
	}
}
