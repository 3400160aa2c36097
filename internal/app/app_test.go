package app

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/lehmann314159/tangocho/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		DBPath:            filepath.Join(dir, "db", "tangocho.db"),
		DataDir:           dir,
		Addr:              "127.0.0.1:0",
		StoragePrefix:     "riyu_",
		DailyNewGoal:      10,
		DailyReviewGoal:   20,
		TaskRetentionDays: 30,
		CleanupSchedule:   "0 3 * * *",
		DailySchedule:     "5 0 * * *",
		WatchData:         true,
	}
}

func TestApplication_StartStop(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	today, err := a.Services().Tasks.TodayTasks(context.Background())
	if err != nil {
		t.Fatalf("TodayTasks() error = %v", err)
	}
	if len(today) != 1 {
		t.Errorf("expected start to prepare one bundle, got %d", len(today))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestApplication_StartAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Addr = ln.Addr().String()
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if err := a.Start(); err == nil {
		t.Fatal("expected Start to fail on an address already in use")
	}

	tasks, err := a.Services().Tasks.AllTasks(context.Background())
	if err != nil {
		t.Fatalf("AllTasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no background work after a failed start, got %d bundles", len(tasks))
	}
}

func TestNew_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.DailySchedule = "not a schedule"

	if _, err := New(cfg); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestApplication_PersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(t)
	cfg.WatchData = false

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()
	if _, _, err := a.Services().Tasks.EnsureTodayTasks(ctx, a.DailyOptions()); err != nil {
		t.Fatalf("EnsureTodayTasks() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Close()

	tasks, err := b.Services().Tasks.AllTasks(ctx)
	if err != nil {
		t.Fatalf("AllTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("expected 1 persisted bundle, got %d", len(tasks))
	}
}
