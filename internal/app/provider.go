package app

import (
	stdcontext "context"
	"time"

	"github.com/Paintersrp/portpatrol/internal/api"
)

// StatusProvider adapts reactor state to the status API.
type StatusProvider struct {
	reactor *Reactor
	version string
}

// NewStatusProvider wires the provider to the reactor.
func NewStatusProvider(r *Reactor, version string) *StatusProvider {
	return &StatusProvider{reactor: r, version: version}
}

// Status builds a report from the current state clone.
func (p *StatusProvider) Status(stdcontext.Context) (*api.StatusReport, error) {
	state := p.reactor.State()
	report := &api.StatusReport{
		Version:     p.version,
		GeneratedAt: time.Now().UTC(),
		LastUpdate:  state.LastUpdate,
		LastError:   state.LastError,
		Listeners:   make([]api.ListenerReport, 0, len(state.Snapshot)),
	}
	for _, rec := range state.Snapshot {
		report.Listeners = append(report.Listeners, api.ListenerReport{
			Port:      rec.Port,
			Pid:       rec.Pid,
			Command:   rec.Command,
			Container: state.Containers[rec.Port],
		})
	}
	return report, nil
}
