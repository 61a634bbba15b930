package api

import (
	stdcontext "context"
	"time"
)

// ListenerReport describes one listening socket for API consumers.
type ListenerReport struct {
	Port      uint16 `json:"port"`
	Pid       int32  `json:"pid"`
	Command   string `json:"command"`
	Container string `json:"container,omitempty"`
}

// StatusReport aggregates the monitor's current view.
type StatusReport struct {
	Version     string           `json:"version"`
	GeneratedAt time.Time        `json:"generated_at"`
	LastUpdate  time.Time        `json:"last_update"`
	LastError   string           `json:"last_error,omitempty"`
	Listeners   []ListenerReport `json:"listeners"`
}

// Provider exposes the monitor state required by status servers.
type Provider interface {
	Status(stdcontext.Context) (*StatusReport, error)
}
