package winservices

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/kill"
)

const refreshInterval = 15 * time.Second

// candidateServices are the Windows service names common dev daemons
// install under. sc.exe has no cheap "list everything" query, so each
// candidate is probed individually.
var candidateServices = []string{
	"postgresql-x64-16",
	"postgresql-x64-15",
	"postgresql-x64-14",
	"postgresql-x64-13",
	"postgresql",
	"MySQL80",
	"MySQL57",
	"MySQL",
	"MSSQLSERVER",
	"MSSQL$SQLEXPRESS",
	"Redis",
	"MongoDB",
}

// serviceClass ties a daemon's process name to the service-name prefixes it
// registers under and the default port it serves. The port check keeps a
// hand-launched second instance from being mistaken for the service.
type serviceClass struct {
	commands []string
	prefixes []string
	port     uint16
}

var classes = []serviceClass{
	{commands: []string{"postgres"}, prefixes: []string{"postgresql"}, port: 5432},
	{commands: []string{"mysqld", "mysql"}, prefixes: []string{"mysql"}, port: 3306},
	{commands: []string{"sqlservr"}, prefixes: []string{"mssqlserver", "mssql$"}, port: 1433},
	{commands: []string{"redis-server", "redis"}, prefixes: []string{"redis"}, port: 6379},
	{commands: []string{"mongod"}, prefixes: []string{"mongodb"}, port: 27017},
}

// Integration stops Windows services so a kill does not race the service
// control manager restarting the daemon. The Homebrew counterpart covers
// the same ground on macOS.
type Integration struct {
	run func(ctx context.Context, args ...string) ([]byte, error)
}

// New returns an integration shelling out to sc.exe.
func New() *Integration {
	return &Integration{
		run: func(ctx context.Context, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, "sc", args...).CombinedOutput()
		},
	}
}

// Running probes each candidate service and reports the ones in the
// RUNNING state. Query failures mean the service is not installed and are
// skipped.
func (w *Integration) Running(ctx context.Context) ([]string, error) {
	var running []string
	for _, name := range candidateServices {
		out, err := w.run(ctx, "query", name)
		if err != nil {
			if ctx.Err() != nil {
				return running, ctx.Err()
			}
			continue
		}
		if strings.Contains(string(out), "RUNNING") {
			running = append(running, name)
		}
	}
	return running, nil
}

// ManagedService resolves a listener to the running Windows service that
// owns it, or "" when no running service matches the command on its
// default port.
func ManagedService(command string, port uint16, running map[string]struct{}) string {
	cmd := strings.ToLower(strings.TrimSpace(command))
	for _, class := range classes {
		if !matchesCommand(cmd, class.commands) {
			continue
		}
		if class.port != port {
			return ""
		}
		for name := range running {
			lower := strings.ToLower(name)
			for _, prefix := range class.prefixes {
				if strings.HasPrefix(lower, prefix) {
					return name
				}
			}
		}
		return ""
	}
	return ""
}

func matchesCommand(cmd string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(cmd, c) {
			return true
		}
	}
	return false
}

// Refresh polls the running-services set and publishes it, mirroring the
// Homebrew refresher.
func (w *Integration) Refresh(ctx context.Context, events *bus.Bus) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		names, err := w.Running(ctx)
		if err == nil {
			if !events.Publish(bus.ServicesEvent(names)) {
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-events.Done():
			return
		case <-ticker.C:
		}
	}
}

// StopService stops the named service via sc.exe. sc's error text is the
// only signal it gives; exit codes are unreliable across Windows versions.
func (w *Integration) StopService(ctx context.Context, name string) kill.Feedback {
	out, err := w.run(ctx, "stop", name)
	text := string(out)
	if err == nil {
		return kill.Infof("Stopped service %s.", name)
	}
	switch {
	case strings.Contains(text, "Access is denied") || strings.Contains(text, "FAILED 5"):
		return kill.Errorf("Access denied stopping %s. Run as Administrator.", name)
	case strings.Contains(text, "has not been started") || strings.Contains(text, "FAILED 1062"):
		return kill.Warningf("Service %s is not running.", name)
	default:
		return kill.Errorf("Failed to stop service %s: %v.", name, err)
	}
}
