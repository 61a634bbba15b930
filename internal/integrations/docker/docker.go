package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/kill"
)

const (
	refreshInterval = 5 * time.Second
	stopTimeout     = 10 * time.Second
)

// api is the slice of the Docker client the integration uses. Narrowed for
// tests.
type api interface {
	ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error)
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerKill(ctx context.Context, containerID, signal string) error
}

// Integration maps published container ports onto the listener table and
// stops containers on request. The client is created lazily so a missing
// daemon only surfaces when the integration is actually used.
type Integration struct {
	clientOnce sync.Once
	clientErr  error
	cli        api

	newClient func() (api, error)
}

// New returns an integration backed by the environment-configured Docker
// daemon.
func New() *Integration {
	return &Integration{
		newClient: func() (api, error) {
			return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		},
	}
}

func (d *Integration) getClient() (api, error) {
	d.clientOnce.Do(func() {
		cli, err := d.newClient()
		if err != nil {
			d.clientErr = err
			return
		}
		d.cli = cli
	})
	return d.cli, d.clientErr
}

// PortMap lists running containers and returns published host port to
// container name.
func (d *Integration) PortMap(ctx context.Context) (map[uint16]string, error) {
	cli, err := d.getClient()
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	containers, err := cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	return buildPortMap(containers), nil
}

// buildPortMap flattens the published ports of each container into one map.
// When two containers publish the same host port the lexically-first name
// wins so refreshes stay stable.
func buildPortMap(containers []types.Container) map[uint16]string {
	out := make(map[uint16]string)
	for _, ctr := range containers {
		name := containerName(ctr)
		if name == "" {
			continue
		}
		for _, port := range ctr.Ports {
			if port.PublicPort == 0 {
				continue
			}
			host := port.PublicPort
			if existing, ok := out[host]; ok && existing <= name {
				continue
			}
			out[host] = name
		}
	}
	return out
}

func containerName(ctr types.Container) string {
	names := append([]string(nil), ctr.Names...)
	sort.Strings(names)
	for _, n := range names {
		n = strings.TrimPrefix(n, "/")
		if n != "" {
			return n
		}
	}
	if len(ctr.ID) >= 12 {
		return ctr.ID[:12]
	}
	return ctr.ID
}

// StopContainer stops the named container, escalating to SIGKILL the way
// `docker stop` does when the daemon reports a failure.
func (d *Integration) StopContainer(ctx context.Context, name string) kill.Feedback {
	cli, err := d.getClient()
	if err != nil {
		return kill.Errorf("Docker unavailable: %v.", err)
	}
	sec := int(stopTimeout.Seconds())
	opts := container.StopOptions{Timeout: &sec}
	if err := cli.ContainerStop(ctx, name, opts); err != nil {
		if client.IsErrNotFound(err) {
			return kill.Warningf("Container %s is not running.", name)
		}
		if killErr := cli.ContainerKill(ctx, name, "SIGKILL"); killErr != nil && !client.IsErrNotFound(killErr) {
			return kill.Errorf("Failed to stop container %s: %v.", name, err)
		}
		return kill.Warningf("Container %s required a forced kill.", name)
	}
	return kill.Infof("Stopped container %s.", name)
}

// Refresh runs the periodic port-map refresher. Failures are quiet; a dev
// box without a running daemon is the normal case, not an error.
func (d *Integration) Refresh(ctx context.Context, b *bus.Bus) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		portMap, err := d.PortMap(ctx)
		if err == nil {
			if !b.Publish(bus.ContainersEvent(portMap)) {
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-b.Done():
			return
		case <-ticker.C:
		}
	}
}
