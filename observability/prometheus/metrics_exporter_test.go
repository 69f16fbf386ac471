package prometheus

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("dispatch", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordTaskDuration(1, 250*time.Millisecond)
	exporter.RecordSubmit(1)
	exporter.RecordSubmit(0)
	exporter.RecordSteal(2, 1)
	exporter.RecordQueueDepth(1, 7)
	exporter.RecordPlacementFailure()

	if got := testutil.ToFloat64(exporter.taskSubmitTotal.WithLabelValues("1")); got != 1 {
		t.Fatalf("submit total for worker 1 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskSubmitTotal.WithLabelValues("main")); got != 1 {
		t.Fatalf("submit total for main = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskStealTotal.WithLabelValues("2", "1")); got != 1 {
		t.Fatalf("steal total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.queueDepth.WithLabelValues("1")); got != 7 {
		t.Fatalf("queue depth = %v, want 7", got)
	}
	if got := testutil.ToFloat64(exporter.placementFailureTotal); got != 1 {
		t.Fatalf("placement failures = %v, want 1", got)
	}

	histCount, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("1"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 1 {
		t.Fatalf("duration sample count = %d, want 1", histCount)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("dispatch", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("dispatch", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordSubmit(1)
	second.RecordSubmit(1)

	if got := testutil.ToFloat64(first.taskSubmitTotal.WithLabelValues("1")); got != 2 {
		t.Fatalf("shared submit counter = %v, want 2", got)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
