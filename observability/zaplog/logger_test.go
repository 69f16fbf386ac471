package zaplog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/go-dispatch/dispatch/core"
)

func TestLogger_Fields(t *testing.T) {
	zcore, logs := observer.New(zap.DebugLevel)
	logger := New(zap.New(zcore))

	logger.Info("dispatcher initialized", core.F("workers", 4))
	logger.Warn("placement policy selected no worker")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].Message != "dispatcher initialized" {
		t.Errorf("unexpected message: %s", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["workers"] != int64(4) && fields["workers"] != 4 {
		t.Errorf("unexpected workers field: %v", fields["workers"])
	}

	if entries[1].Level != zap.WarnLevel {
		t.Errorf("expected warn level, got %v", entries[1].Level)
	}
}

func TestSetup(t *testing.T) {
	logger, zl, err := Setup("debug", "json")
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer zl.Sync()

	if logger == nil {
		t.Fatal("expected a logger")
	}
	if !zl.Core().Enabled(zap.DebugLevel) {
		t.Error("expected debug level enabled")
	}

	if _, _, err := Setup("", ""); err != nil {
		t.Fatalf("default Setup failed: %v", err)
	}
}
