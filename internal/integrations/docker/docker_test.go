package docker

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"

	"github.com/Paintersrp/portpatrol/internal/kill"
)

type fakeAPI struct {
	containers []types.Container
	listErr    error

	stopErr error
	killErr error
	stopped []string
	killed  []string
}

func (f *fakeAPI) ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error) {
	return f.containers, f.listErr
}

func (f *fakeAPI) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	f.stopped = append(f.stopped, containerID)
	return f.stopErr
}

func (f *fakeAPI) ContainerKill(ctx context.Context, containerID, signal string) error {
	f.killed = append(f.killed, containerID)
	return f.killErr
}

func newTestIntegration(f *fakeAPI) *Integration {
	return &Integration{newClient: func() (api, error) { return f, nil }}
}

func TestPortMapFlattensPublishedPorts(t *testing.T) {
	f := &fakeAPI{containers: []types.Container{
		{
			Names: []string{"/redis"},
			Ports: []types.Port{
				{PrivatePort: 6379, PublicPort: 6379, Type: "tcp"},
			},
		},
		{
			Names: []string{"/web"},
			Ports: []types.Port{
				{PrivatePort: 80, PublicPort: 8080, Type: "tcp"},
				{PrivatePort: 443, Type: "tcp"}, // unpublished
			},
		},
	}}

	got, err := newTestIntegration(f).PortMap(context.Background())
	if err != nil {
		t.Fatalf("PortMap: %v", err)
	}
	want := map[uint16]string{6379: "redis", 8080: "web"}
	if len(got) != len(want) {
		t.Fatalf("port map: %v", got)
	}
	for port, name := range want {
		if got[port] != name {
			t.Fatalf("port %d: got %q, want %q", port, got[port], name)
		}
	}
}

func TestPortMapStableOnConflicts(t *testing.T) {
	f := &fakeAPI{containers: []types.Container{
		{Names: []string{"/zzz"}, Ports: []types.Port{{PublicPort: 9000}}},
		{Names: []string{"/aaa"}, Ports: []types.Port{{PublicPort: 9000}}},
	}}
	got, err := newTestIntegration(f).PortMap(context.Background())
	if err != nil {
		t.Fatalf("PortMap: %v", err)
	}
	if got[9000] != "aaa" {
		t.Fatalf("conflict winner: got %q, want aaa", got[9000])
	}
}

func TestPortMapFallsBackToID(t *testing.T) {
	f := &fakeAPI{containers: []types.Container{
		{ID: "0123456789abcdef", Ports: []types.Port{{PublicPort: 5000}}},
	}}
	got, err := newTestIntegration(f).PortMap(context.Background())
	if err != nil {
		t.Fatalf("PortMap: %v", err)
	}
	if got[5000] != "0123456789ab" {
		t.Fatalf("id fallback: got %q", got[5000])
	}
}

func TestStopContainerSuccess(t *testing.T) {
	f := &fakeAPI{}
	fb := newTestIntegration(f).StopContainer(context.Background(), "redis")
	if fb.Severity != kill.SeverityInfo {
		t.Fatalf("severity: %v, message %q", fb.Severity, fb.Message)
	}
	if len(f.stopped) != 1 || f.stopped[0] != "redis" {
		t.Fatalf("stopped: %v", f.stopped)
	}
}

func TestStopContainerEscalatesToKill(t *testing.T) {
	f := &fakeAPI{stopErr: errors.New("stop failed")}
	fb := newTestIntegration(f).StopContainer(context.Background(), "web")
	if fb.Severity != kill.SeverityWarning {
		t.Fatalf("severity: %v, message %q", fb.Severity, fb.Message)
	}
	if len(f.killed) != 1 || f.killed[0] != "web" {
		t.Fatalf("killed: %v", f.killed)
	}
}

func TestStopContainerKillFailureIsError(t *testing.T) {
	f := &fakeAPI{stopErr: errors.New("stop failed"), killErr: errors.New("kill failed")}
	fb := newTestIntegration(f).StopContainer(context.Background(), "web")
	if fb.Severity != kill.SeverityError {
		t.Fatalf("severity: %v, message %q", fb.Severity, fb.Message)
	}
}
