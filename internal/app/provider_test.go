package app

import (
	"context"
	"testing"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/config"
	"github.com/Paintersrp/portpatrol/internal/ports"
)

func TestStatusProviderAnnotatesContainers(t *testing.T) {
	b := bus.New()
	r := NewReactor(b, config.Default())
	applyAll(t, r, b,
		bus.ProcessesEvent(ports.Snapshot{
			{Port: 3000, Pid: 42, Command: "node"},
			{Port: 8080, Pid: 7, Command: "docker-proxy"},
		}),
		bus.ContainersEvent(map[uint16]string{8080: "web"}),
	)

	report, err := NewStatusProvider(r, "1.2.3").Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if report.Version != "1.2.3" {
		t.Fatalf("version: %q", report.Version)
	}
	if len(report.Listeners) != 2 {
		t.Fatalf("listeners: %+v", report.Listeners)
	}
	if report.Listeners[0].Container != "" {
		t.Fatalf("unexpected container for port 3000: %q", report.Listeners[0].Container)
	}
	if report.Listeners[1].Container != "web" {
		t.Fatalf("missing container annotation: %+v", report.Listeners[1])
	}
}
