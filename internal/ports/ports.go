package ports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record describes a single TCP socket in the LISTEN state together with the
// process that owns it. Records are unique by (Port, Pid); a process listening
// on several monitored ports produces one record per port.
type Record struct {
	Port    uint16 `json:"port"`
	Pid     int32  `json:"pid"`
	Command string `json:"command"`
}

// Snapshot is the deduplicated set of listener records captured at one poll
// instant, sorted ascending by (port, pid). The ordering carries no meaning of
// its own; it exists so that two snapshots describing the same listeners
// compare equal element-wise.
type Snapshot []Record

// Normalize deduplicates records by (port, pid) and sorts them into canonical
// snapshot order. The first record seen for a key wins, so callers that
// resolve better command names first should emit those records first.
func Normalize(records []Record) Snapshot {
	type key struct {
		port uint16
		pid  int32
	}
	seen := make(map[key]struct{}, len(records))
	out := make(Snapshot, 0, len(records))
	for _, rec := range records {
		k := key{rec.Port, rec.Pid}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Port != out[j].Port {
			return out[i].Port < out[j].Port
		}
		return out[i].Pid < out[j].Pid
	})
	return out
}

// Equal reports whether two snapshots describe the same set of listeners.
// Both sides are compared in canonical order, so the verdict does not depend
// on the order records were produced in.
func (s Snapshot) Equal(other Snapshot) bool {
	a := Normalize(s)
	b := Normalize(other)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Ports returns the distinct ports present in the snapshot.
func (s Snapshot) Ports() map[uint16]struct{} {
	out := make(map[uint16]struct{}, len(s))
	for _, rec := range s {
		out[rec.Port] = struct{}{}
	}
	return out
}

// Range is an inclusive TCP port interval. A single port is represented as
// Low == High.
type Range struct {
	Low  uint16
	High uint16
}

// Contains reports whether the port falls inside the range.
func (r Range) Contains(port uint16) bool {
	return port >= r.Low && port <= r.High
}

func (r Range) String() string {
	if r.Low == r.High {
		return strconv.Itoa(int(r.Low))
	}
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// ParseRange parses "3000" or "3000-3010" into a Range.
func ParseRange(spec string) (Range, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Range{}, fmt.Errorf("empty port range")
	}
	low, high, found := strings.Cut(spec, "-")
	lo, err := parsePort(low)
	if err != nil {
		return Range{}, fmt.Errorf("parse port range %q: %w", spec, err)
	}
	hi := lo
	if found {
		hi, err = parsePort(high)
		if err != nil {
			return Range{}, fmt.Errorf("parse port range %q: %w", spec, err)
		}
	}
	if lo > hi {
		return Range{}, fmt.Errorf("invalid port range %q: start exceeds end", spec)
	}
	return Range{Low: lo, High: hi}, nil
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return uint16(n), nil
}

// InRanges reports whether the port falls in at least one of the ranges.
// Ranges may overlap; callers rely on Normalize for deduplication.
func InRanges(port uint16, ranges []Range) bool {
	for _, r := range ranges {
		if r.Contains(port) {
			return true
		}
	}
	return false
}

// FallbackCommand is the synthetic label used when a pid's command name
// cannot be resolved.
func FallbackCommand(pid int32) string {
	return fmt.Sprintf("pid %d", pid)
}

// Scanner enumerates listening TCP sockets within the supplied port ranges.
// Implementations may spawn OS tooling or walk kernel tables, so Scan must
// only be invoked from a background goroutine. Any returned error is
// transient: the caller is expected to retry on its next cycle.
type Scanner interface {
	Scan(ranges []Range) (Snapshot, error)
}

// New returns the scanner for the current platform.
func New() Scanner {
	return platformScanner()
}

// PidHasListener reports whether the pid currently holds any TCP socket in
// the LISTEN state. It is the narrow re-verification used to shrink the
// time-of-check-to-time-of-use window before signalling a pid; a pid recycled
// for an unrelated, non-listening process fails this probe. The window is
// reduced, not eliminated.
func PidHasListener(pid int32) bool {
	return platformPidHasListener(pid)
}
