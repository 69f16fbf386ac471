package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/go-dispatch/dispatch/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSnapshotPoller_Collect(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, time.Minute)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	d := core.NewDispatcher()
	d.SetWorkerCount(2)
	d.Initialize()
	defer d.Shutdown()

	task := core.NewTask(func() {})
	if err := d.Submit(task); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	task.Wait()

	poller.AddDispatcher("test", d)
	poller.collectOnce()

	if got := testutil.ToFloat64(poller.poolWorkers.WithLabelValues("test")); got != 2 {
		t.Fatalf("pool workers = %v, want 2", got)
	}

	// One of the workers executed the task; executed snapshots must sum
	// to 1 across the pool.
	var executed float64
	for _, ws := range d.WorkerStats() {
		executed += testutil.ToFloat64(poller.workerDone.WithLabelValues("test", workerLabel(ws.Index)))
	}
	if executed != 1 {
		t.Fatalf("executed snapshot sum = %v, want 1", executed)
	}
}

func TestSnapshotPoller_StartStop(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.Start(context.Background())
	poller.Start(context.Background()) // repeated start is a no-op

	time.Sleep(30 * time.Millisecond)

	poller.Stop()
	poller.Stop() // repeated stop is safe
}
