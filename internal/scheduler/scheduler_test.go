package scheduler

import (
	"testing"

	"docusign-envelope-sync/internal/config"
	"docusign-envelope-sync/internal/syncer"
)

func TestSchedulerRestart(t *testing.T) {
	cfg := &config.SchedulerConfig{Enabled: true, IntervalMinutes: 60}
	// 60-minute interval keeps runSync from firing during the test, so
	// the syncer's collaborators are never touched
	sched := NewScheduler(cfg, syncer.New(nil, nil, nil, 0))

	if err := sched.Start(); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if !sched.IsRunning() {
		t.Fatalf("scheduler should be running after Start")
	}
	if err := sched.Start(); err == nil {
		t.Fatalf("second Start while running should fail")
	}
	if err := sched.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if sched.IsRunning() {
		t.Fatalf("scheduler should not be running after Stop")
	}
	if err := sched.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if !sched.IsRunning() {
		t.Fatalf("scheduler should be running after restart")
	}
	// context must be live again after a Stop/Start cycle
	if sched.ctx == nil || sched.ctx.Err() != nil {
		t.Fatalf("scheduler context should be active after restart")
	}
	sched.Stop()
}

func TestNextRunOnlyWhileRunning(t *testing.T) {
	cfg := &config.SchedulerConfig{Enabled: true, IntervalMinutes: 60}
	sched := NewScheduler(cfg, syncer.New(nil, nil, nil, 0))

	if !sched.GetNextRun().IsZero() {
		t.Fatalf("next run should be zero before Start")
	}

	if err := sched.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer sched.Stop()

	if sched.GetNextRun().IsZero() {
		t.Fatalf("next run should be scheduled after Start")
	}
}
