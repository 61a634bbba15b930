package kill

import (
	"sort"
	"strings"

	"github.com/Paintersrp/portpatrol/internal/ports"
)

// Target is one pid scheduled for termination. A process listening on several
// ports yields a single target whose label summarizes all of them.
type Target struct {
	Pid   int32
	Label string
}

// FormatLabel renders a display label from a command name and the sorted
// ports it listens on, e.g. "node (ports 3000, 3001)".
func FormatLabel(command string, portList []uint16) string {
	var b strings.Builder
	if command == "" {
		b.WriteString("Unknown")
	} else {
		b.WriteString(command)
	}
	if len(portList) > 0 {
		b.WriteString(" (port")
		if len(portList) > 1 {
			b.WriteString("s")
		}
		b.WriteString(" ")
		for i, port := range portList {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ports.Range{Low: port, High: port}.String())
		}
		b.WriteString(")")
	}
	return b.String()
}

// TargetFor builds the target for one pid from the current snapshot,
// collecting every port that pid listens on. The second return is false when
// the pid no longer appears in the snapshot.
func TargetFor(pid int32, snap ports.Snapshot) (Target, bool) {
	var (
		portList []uint16
		command  string
	)
	for _, rec := range snap {
		if rec.Pid != pid {
			continue
		}
		if !containsPort(portList, rec.Port) {
			portList = append(portList, rec.Port)
		}
		// Prefer a resolved command over the synthetic "pid N" fallback.
		if command == "" || strings.HasPrefix(command, "pid ") {
			command = rec.Command
		}
	}
	if len(portList) == 0 {
		return Target{}, false
	}
	sort.Slice(portList, func(i, j int) bool { return portList[i] < portList[j] })
	return Target{Pid: pid, Label: FormatLabel(command, portList)}, true
}

// TargetsFor builds one target per distinct pid in the snapshot, ordered by
// ascending pid.
func TargetsFor(snap ports.Snapshot) []Target {
	pids := make([]int32, 0, len(snap))
	seen := make(map[int32]struct{}, len(snap))
	for _, rec := range snap {
		if _, dup := seen[rec.Pid]; dup {
			continue
		}
		seen[rec.Pid] = struct{}{}
		pids = append(pids, rec.Pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	targets := make([]Target, 0, len(pids))
	for _, pid := range pids {
		if target, ok := TargetFor(pid, snap); ok {
			targets = append(targets, target)
		}
	}
	return targets
}

func containsPort(list []uint16, port uint16) bool {
	for _, p := range list {
		if p == port {
			return true
		}
	}
	return false
}
