package core

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestSubmitAfter tests delayed submission
// Main test items:
// 1. The task is pending in the delay manager before its due time
// 2. The task executes no earlier than the delay
func TestSubmitAfter(t *testing.T) {
	d := newTestDispatcher(t, 1)

	var ran atomic.Bool
	task := NewTask(func() { ran.Store(true) })

	start := time.Now()
	if err := d.SubmitAfter(task, 50*time.Millisecond); err != nil {
		t.Fatalf("SubmitAfter failed: %v", err)
	}

	if d.DelayedTaskCount() != 1 {
		t.Errorf("expected 1 delayed task, got %d", d.DelayedTaskCount())
	}
	if ran.Load() {
		t.Error("task ran before its delay")
	}

	task.Wait()
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("task ran after %v, expected at least 50ms", elapsed)
	}
	if !ran.Load() {
		t.Error("task did not run")
	}
	if d.DelayedTaskCount() != 0 {
		t.Errorf("expected 0 delayed tasks, got %d", d.DelayedTaskCount())
	}
}

// TestSubmitAfter_ZeroDelay tests immediate degeneration to Submit
func TestSubmitAfter_ZeroDelay(t *testing.T) {
	d := newTestDispatcher(t, 1)

	task := NewTask(func() {})
	if err := d.SubmitAfter(task, 0); err != nil {
		t.Fatalf("SubmitAfter failed: %v", err)
	}
	task.Wait()
}

// TestSubmitAfter_Ordering tests that two delayed tasks fire in due-time
// order
func TestSubmitAfter_Ordering(t *testing.T) {
	d := newTestDispatcher(t, 1)

	results := make(chan string, 2)
	late := NewTask(func() { results <- "late" })
	soon := NewTask(func() { results <- "soon" })

	if err := d.SubmitAfter(late, 80*time.Millisecond); err != nil {
		t.Fatalf("SubmitAfter failed: %v", err)
	}
	if err := d.SubmitAfter(soon, 20*time.Millisecond); err != nil {
		t.Fatalf("SubmitAfter failed: %v", err)
	}

	late.Wait()
	soon.Wait()

	if first := <-results; first != "soon" {
		t.Errorf("expected soon first, got %s", first)
	}
}

// TestDelayManager_StopDropsPending tests that shutdown drops tasks still
// waiting for their due time
func TestDelayManager_StopDropsPending(t *testing.T) {
	d := NewDispatcher()
	d.SetWorkerCount(1)
	d.Initialize()

	task := NewTask(func() {})
	if err := d.SubmitAfter(task, time.Hour); err != nil {
		t.Fatalf("SubmitAfter failed: %v", err)
	}

	d.Shutdown()

	if d.DelayedTaskCount() != 0 {
		t.Errorf("expected pending delayed tasks to be dropped, got %d", d.DelayedTaskCount())
	}
}
