package app

import (
	"time"

	"github.com/Paintersrp/portpatrol/internal/config"
	"github.com/Paintersrp/portpatrol/internal/kill"
	"github.com/Paintersrp/portpatrol/internal/ports"
)

// State is everything the UI and the status API render. The reactor owns
// the canonical copy; everyone else sees clones.
type State struct {
	Snapshot   ports.Snapshot
	Feedback   *kill.Feedback
	Config     config.Config
	Containers map[uint16]string
	Services   map[string]struct{}
	LastUpdate time.Time
	LastError  string
}

func (s State) clone() State {
	out := s
	out.Snapshot = append(ports.Snapshot(nil), s.Snapshot...)
	out.Config = s.Config.Clone()
	if s.Feedback != nil {
		fb := *s.Feedback
		out.Feedback = &fb
	}
	if s.Containers != nil {
		out.Containers = make(map[uint16]string, len(s.Containers))
		for port, name := range s.Containers {
			out.Containers[port] = name
		}
	}
	if s.Services != nil {
		out.Services = make(map[string]struct{}, len(s.Services))
		for name := range s.Services {
			out.Services[name] = struct{}{}
		}
	}
	return out
}

// diffPorts reports the ports present in next but not prev, and vice versa.
// Both lists come back sorted because the snapshots are normalized.
func diffPorts(prev, next ports.Snapshot) (added, freed []uint16) {
	prevSet := prev.Ports()
	nextSet := next.Ports()
	for _, rec := range next {
		if _, ok := prevSet[rec.Port]; !ok {
			added = appendPort(added, rec.Port)
		}
	}
	for _, rec := range prev {
		if _, ok := nextSet[rec.Port]; !ok {
			freed = appendPort(freed, rec.Port)
		}
	}
	return added, freed
}

func appendPort(list []uint16, port uint16) []uint16 {
	if n := len(list); n > 0 && list[n-1] == port {
		return list
	}
	return append(list, port)
}
