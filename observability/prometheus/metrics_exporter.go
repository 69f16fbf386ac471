package prometheus

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-dispatch/dispatch/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors. Workers
// are labelled by index; index 0 is the main worker.
type MetricsExporter struct {
	taskDurationSeconds   *prom.HistogramVec
	taskSubmitTotal       *prom.CounterVec
	taskStealTotal        *prom.CounterVec
	queueDepth            *prom.GaugeVec
	placementFailureTotal prom.Counter
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "dispatch"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"worker"})
	submitVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_submit_total",
		Help:      "Total number of tasks placed per worker.",
	}, []string{"worker"})
	stealVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_steal_total",
		Help:      "Total number of successful steals.",
	}, []string{"thief", "victim"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current deque depth per worker.",
	}, []string{"worker"})
	placementFailure := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "placement_failure_total",
		Help:      "Total number of submissions the placement policy could not place.",
	})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if submitVec, err = registerCollector(reg, submitVec); err != nil {
		return nil, err
	}
	if stealVec, err = registerCollector(reg, stealVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}
	if placementFailure, err = registerCollector(reg, placementFailure); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds:   durationVec,
		taskSubmitTotal:       submitVec,
		taskStealTotal:        stealVec,
		queueDepth:            queueDepthVec,
		placementFailureTotal: placementFailure,
	}, nil
}

// RecordTaskDuration records task execution duration.
func (m *MetricsExporter) RecordTaskDuration(workerIndex int, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(workerLabel(workerIndex)).Observe(duration.Seconds())
}

// RecordSubmit records a task placement.
func (m *MetricsExporter) RecordSubmit(workerIndex int) {
	if m == nil {
		return
	}
	m.taskSubmitTotal.WithLabelValues(workerLabel(workerIndex)).Inc()
}

// RecordSteal records a successful steal.
func (m *MetricsExporter) RecordSteal(thiefIndex, victimIndex int) {
	if m == nil {
		return
	}
	m.taskStealTotal.WithLabelValues(workerLabel(thiefIndex), workerLabel(victimIndex)).Inc()
}

// RecordQueueDepth records deque depth.
func (m *MetricsExporter) RecordQueueDepth(workerIndex int, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(workerLabel(workerIndex)).Set(float64(depth))
}

// RecordPlacementFailure records a placement failure.
func (m *MetricsExporter) RecordPlacementFailure() {
	if m == nil {
		return
	}
	m.placementFailureTotal.Inc()
}

// workerLabel renders a worker index; the main worker gets a stable name.
func workerLabel(index int) string {
	if index == 0 {
		return "main"
	}
	return strconv.Itoa(index)
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
