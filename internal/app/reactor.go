package app

import (
	"context"
	"sync"
	"time"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/config"
	"github.com/Paintersrp/portpatrol/internal/kill"
)

// Reactor is the single consumer of the event bus and the only goroutine
// that mutates State. Background producers never touch state directly; they
// publish events and the reactor folds them in one at a time, which keeps
// every mutation ordered without fine-grained locking. The mutex below only
// guards the clone handed to concurrent readers such as the status API.
type Reactor struct {
	bus *bus.Bus

	mu    sync.RWMutex
	state State

	// OnUpdate fires after every applied event, on the reactor goroutine.
	// UI layers use it to schedule a redraw.
	OnUpdate func(State)
	// OnPortsChanged fires when listeners appear or disappear, with the
	// affected ports. Drives desktop notifications.
	OnPortsChanged func(added, freed []uint16)
	// OnConfigReloaded fires when a new configuration has been applied.
	OnConfigReloaded func(config.Config)
	// OnEvent sees every raw event before it is applied. Drives headless
	// JSON logging.
	OnEvent func(bus.Event)
}

// NewReactor seeds the reactor with the startup configuration.
func NewReactor(b *bus.Bus, cfg config.Config) *Reactor {
	return &Reactor{
		bus:   b,
		state: State{Config: cfg},
	}
}

// State returns a clone safe to read from any goroutine.
func (r *Reactor) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.clone()
}

// Run applies events until the context is cancelled or the bus closes.
func (r *Reactor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.bus.Done():
			return
		case ev := <-r.bus.Events():
			r.apply(ev)
		}
	}
}

func (r *Reactor) apply(ev bus.Event) {
	if r.OnEvent != nil {
		r.OnEvent(ev)
	}
	var (
		added, freed []uint16
		reloaded     *config.Config
	)

	r.mu.Lock()
	switch ev.Type {
	case bus.EventTypeProcesses:
		added, freed = diffPorts(r.state.Snapshot, ev.Snapshot)
		r.state.Snapshot = ev.Snapshot
		r.state.LastUpdate = ev.Timestamp
		r.state.LastError = ""
	case bus.EventTypeMonitorError:
		r.state.LastError = ev.Message
	case bus.EventTypeKillFeedback:
		fb := ev.Feedback
		r.state.Feedback = &fb
	case bus.EventTypeConfigReloaded:
		if ev.Config != nil {
			r.state.Config = ev.Config.Clone()
			reloaded = ev.Config
		}
	case bus.EventTypeConfigReloadFailed:
		r.state.Feedback = &kill.Feedback{
			Message:  "Config reload failed: " + ev.Message,
			Severity: kill.SeverityError,
		}
	case bus.EventTypeContainers:
		r.state.Containers = ev.Containers
	case bus.EventTypeServices:
		r.state.Services = ev.Services
	}
	snapshot := r.state.clone()
	r.mu.Unlock()

	if r.OnPortsChanged != nil && (len(added) > 0 || len(freed) > 0) {
		r.OnPortsChanged(added, freed)
	}
	if r.OnConfigReloaded != nil && reloaded != nil {
		r.OnConfigReloaded(*reloaded)
	}
	if r.OnUpdate != nil {
		r.OnUpdate(snapshot)
	}
}

// Age reports how long ago the snapshot was refreshed, for the UI status
// line.
func (s State) Age(now time.Time) time.Duration {
	if s.LastUpdate.IsZero() {
		return 0
	}
	return now.Sub(s.LastUpdate)
}
