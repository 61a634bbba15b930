package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/config"
	"github.com/Paintersrp/portpatrol/internal/kill"
	"github.com/Paintersrp/portpatrol/internal/ports"
)

func applyAll(t *testing.T, r *Reactor, b *bus.Bus, events ...bus.Event) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	for _, ev := range events {
		if !b.Publish(ev) {
			t.Fatal("publish rejected")
		}
	}
	// Drain is confirmed by the last OnUpdate; give the reactor a beat to
	// apply everything, then stop it.
	deadline := time.After(2 * time.Second)
	for {
		if len(b.Events()) == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("reactor did not drain events")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	time.Sleep(5 * time.Millisecond)
	cancel()
	<-done
}

func TestReactorAppliesSnapshotAndClearsError(t *testing.T) {
	b := bus.New()
	r := NewReactor(b, config.Default())

	snap := ports.Snapshot{{Port: 3000, Pid: 42, Command: "node"}}
	applyAll(t, r, b,
		bus.MonitorErrorEvent(errors.New("scan failed")),
		bus.ProcessesEvent(snap),
	)

	state := r.State()
	if len(state.Snapshot) != 1 || state.Snapshot[0].Pid != 42 {
		t.Fatalf("snapshot: %+v", state.Snapshot)
	}
	if state.LastError != "" {
		t.Fatalf("error not cleared by fresh snapshot: %q", state.LastError)
	}
	if state.LastUpdate.IsZero() {
		t.Fatal("LastUpdate not set")
	}
}

func TestReactorRecordsMonitorError(t *testing.T) {
	b := bus.New()
	r := NewReactor(b, config.Default())
	applyAll(t, r, b, bus.MonitorErrorEvent(errors.New("lsof missing")))
	if got := r.State().LastError; got != "lsof missing" {
		t.Fatalf("LastError: %q", got)
	}
}

func TestReactorTracksFeedbackAndConfig(t *testing.T) {
	b := bus.New()
	r := NewReactor(b, config.Default())

	var reloaded []config.Config
	r.OnConfigReloaded = func(cfg config.Config) { reloaded = append(reloaded, cfg) }

	next := config.Default()
	next.Monitoring.PollInterval = config.Duration{Duration: 7 * time.Second}

	applyAll(t, r, b,
		bus.FeedbackEvent(kill.Infof("Terminated node (PID 42).")),
		bus.ConfigReloadedEvent(next),
	)

	state := r.State()
	if state.Feedback == nil || state.Feedback.Severity != kill.SeverityInfo {
		t.Fatalf("feedback: %+v", state.Feedback)
	}
	if got := state.Config.Monitoring.PollInterval.Duration; got != 7*time.Second {
		t.Fatalf("config not applied: %s", got)
	}
	if len(reloaded) != 1 {
		t.Fatalf("OnConfigReloaded fired %d times", len(reloaded))
	}
}

func TestReactorReloadFailureKeepsConfig(t *testing.T) {
	b := bus.New()
	r := NewReactor(b, config.Default())
	applyAll(t, r, b, bus.ConfigReloadFailedEvent(errors.New("yaml: line 3")))

	state := r.State()
	if got := state.Config.Monitoring.PollInterval.Duration; got != config.Default().Monitoring.PollInterval.Duration {
		t.Fatalf("config changed on failed reload: %s", got)
	}
	if state.Feedback == nil || state.Feedback.Severity != kill.SeverityError {
		t.Fatalf("feedback: %+v", state.Feedback)
	}
}

func TestReactorReportsPortDiffs(t *testing.T) {
	b := bus.New()
	r := NewReactor(b, config.Default())

	type diff struct{ added, freed []uint16 }
	var diffs []diff
	r.OnPortsChanged = func(added, freed []uint16) {
		diffs = append(diffs, diff{added: added, freed: freed})
	}

	first := ports.Snapshot{
		{Port: 3000, Pid: 42, Command: "node"},
		{Port: 8080, Pid: 43, Command: "python"},
	}
	second := ports.Snapshot{
		{Port: 8080, Pid: 43, Command: "python"},
		{Port: 5432, Pid: 44, Command: "postgres"},
	}
	applyAll(t, r, b, bus.ProcessesEvent(first), bus.ProcessesEvent(second))

	if len(diffs) != 2 {
		t.Fatalf("diffs: got %d, want 2", len(diffs))
	}
	if len(diffs[0].added) != 2 || len(diffs[0].freed) != 0 {
		t.Fatalf("first diff: %+v", diffs[0])
	}
	if len(diffs[1].added) != 1 || diffs[1].added[0] != 5432 {
		t.Fatalf("second diff added: %v", diffs[1].added)
	}
	if len(diffs[1].freed) != 1 || diffs[1].freed[0] != 3000 {
		t.Fatalf("second diff freed: %v", diffs[1].freed)
	}
}

func TestReactorTracksRunningServices(t *testing.T) {
	b := bus.New()
	r := NewReactor(b, config.Default())
	applyAll(t, r, b, bus.ServicesEvent([]string{"redis", "postgresql@16"}))

	state := r.State()
	if _, ok := state.Services["postgresql@16"]; !ok {
		t.Fatalf("services: %v", state.Services)
	}
}

func TestReactorStateCloneIsolation(t *testing.T) {
	b := bus.New()
	r := NewReactor(b, config.Default())
	snap := ports.Snapshot{{Port: 3000, Pid: 42, Command: "node"}}
	applyAll(t, r, b,
		bus.ProcessesEvent(snap),
		bus.ContainersEvent(map[uint16]string{6379: "redis"}),
		bus.ServicesEvent([]string{"redis"}),
	)

	state := r.State()
	state.Snapshot[0].Pid = 999
	state.Containers[6379] = "mutated"
	delete(state.Services, "redis")

	fresh := r.State()
	if fresh.Snapshot[0].Pid != 42 {
		t.Fatal("snapshot clone shares backing array")
	}
	if fresh.Containers[6379] != "redis" {
		t.Fatal("container map clone shares storage")
	}
	if _, ok := fresh.Services["redis"]; !ok {
		t.Fatal("service set clone shares storage")
	}
}
