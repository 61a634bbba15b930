package brew

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/kill"
)

// refreshInterval paces the started-services poll. `brew services list`
// shells out to Ruby, so it runs much less often than the port scan.
const refreshInterval = 15 * time.Second

// knownServices maps the process command names of common Homebrew services
// onto the formula name `brew services` expects. Version-suffixed formulae
// (postgresql@16 and friends) are matched by prefix in ServiceFor.
var knownServices = map[string]string{
	"redis-server": "redis",
	"redis":        "redis",
	"postgres":     "postgresql",
	"mysqld":       "mysql",
	"mongod":       "mongodb-community",
	"memcached":    "memcached",
	"nginx":        "nginx",
}

// Integration stops Homebrew-managed services so a kill does not race the
// service manager restarting the daemon. Signalling a brew service's pid
// just respawns it; `brew services stop` is the durable way down.
type Integration struct {
	run func(ctx context.Context, args ...string) ([]byte, error)
}

// New returns an integration shelling out to the brew binary on PATH.
func New() *Integration {
	return &Integration{
		run: func(ctx context.Context, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, "brew", args...).Output()
		},
	}
}

// ServiceFor maps a listener's command name to the Homebrew service that
// manages it, or "" when the process is not a known service.
func ServiceFor(command string) string {
	cmd := strings.ToLower(strings.TrimSpace(command))
	if svc, ok := knownServices[cmd]; ok {
		return svc
	}
	for proc, svc := range knownServices {
		if strings.HasPrefix(cmd, proc) {
			return svc
		}
	}
	return ""
}

// ManagedService resolves a listener to the started brew service that owns
// it, or "" when the daemon is not actually under brew's control. A known
// command whose service is stopped was started by hand; killing it is fine.
// The port is unused here; brew services are matched by command alone.
func ManagedService(command string, port uint16, running map[string]struct{}) string {
	svc := ServiceFor(command)
	if svc == "" {
		return ""
	}
	for name := range running {
		if name == svc || strings.HasPrefix(name, svc+"@") {
			return name
		}
	}
	return ""
}

// Refresh polls the started-services list and publishes it. Failures are
// quiet; a box without brew is the normal case, not an error.
func (b *Integration) Refresh(ctx context.Context, events *bus.Bus) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		names, err := b.Running(ctx)
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

// Running lists the services brew reports as started.
func (b *Integration) Running(ctx context.Context) ([]string, error) {
	out, err := b.run(ctx, "services", "list")
	if err != nil {
		return nil, err
	}
	return parseServicesList(out), nil
}

// parseServicesList extracts started service names from `brew services
// list` output. The first line is a header; each row is
// "name status user file".
func parseServicesList(out []byte) []string {
	var running []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			if strings.HasPrefix(line, "Name") {
				continue
			}
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[1] {
		case "started", "scheduled":
			running = append(running, fields[0])
		}
	}
	return running
}

// StopService stops the named service via brew.
func (b *Integration) StopService(ctx context.Context, name string) kill.Feedback {
	if _, err := b.run(ctx, "services", "stop", name); err != nil {
		return kill.Errorf("Failed to stop service %s: %v.", name, err)
	}
	return kill.Infof("Stopped service %s.", name)
}
