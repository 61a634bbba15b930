package kill

import (
	"testing"

	"github.com/Paintersrp/portpatrol/internal/ports"
)

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		command string
		ports   []uint16
		want    string
	}{
		{"node", []uint16{3000}, "node (port 3000)"},
		{"node", []uint16{3000, 3001}, "node (ports 3000, 3001)"},
		{"", []uint16{8080}, "Unknown (port 8080)"},
		{"redis", nil, "redis"},
	}
	for _, tt := range tests {
		if got := FormatLabel(tt.command, tt.ports); got != tt.want {
			t.Errorf("FormatLabel(%q, %v) = %q, want %q", tt.command, tt.ports, got, tt.want)
		}
	}
}

func TestTargetForCollectsPortsAcrossRecords(t *testing.T) {
	snap := ports.Snapshot{
		{Port: 3000, Pid: 11, Command: "node"},
		{Port: 3001, Pid: 11, Command: "node"},
		{Port: 5432, Pid: 22, Command: "postgres"},
	}

	target, ok := TargetFor(11, snap)
	if !ok {
		t.Fatal("expected a target for pid 11")
	}
	if target.Label != "node (ports 3000, 3001)" {
		t.Fatalf("unexpected label %q", target.Label)
	}

	if _, ok := TargetFor(99, snap); ok {
		t.Fatal("expected no target for an absent pid")
	}
}

func TestTargetForPrefersResolvedCommand(t *testing.T) {
	snap := ports.Snapshot{
		{Port: 3000, Pid: 11, Command: "pid 11"},
		{Port: 3001, Pid: 11, Command: "node"},
	}
	target, ok := TargetFor(11, snap)
	if !ok {
		t.Fatal("expected a target")
	}
	if target.Label != "node (ports 3000, 3001)" {
		t.Fatalf("synthetic command should be replaced by the resolved one, got %q", target.Label)
	}
}

func TestTargetsForGroupsByPid(t *testing.T) {
	snap := ports.Snapshot{
		{Port: 3000, Pid: 30, Command: "node"},
		{Port: 3001, Pid: 30, Command: "node"},
		{Port: 5432, Pid: 10, Command: "postgres"},
		{Port: 6379, Pid: 20, Command: "redis"},
	}

	targets := TargetsFor(snap)

	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d: %v", len(targets), targets)
	}
	wantPids := []int32{10, 20, 30}
	for i, pid := range wantPids {
		if targets[i].Pid != pid {
			t.Errorf("target %d: pid %d, want %d", i, targets[i].Pid, pid)
		}
	}
	if targets[2].Label != "node (ports 3000, 3001)" {
		t.Errorf("multi-port process should yield one target, got %q", targets[2].Label)
	}
}

func TestTargetsForEmptySnapshot(t *testing.T) {
	if targets := TargetsFor(nil); len(targets) != 0 {
		t.Fatalf("expected no targets, got %v", targets)
	}
}
