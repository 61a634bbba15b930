//go:build darwin

package ports

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type lsofScanner struct{}

func platformScanner() Scanner {
	return &lsofScanner{}
}

// Scan sweeps every LISTEN socket in one lsof invocation and filters by
// range in-process; lsof has no native range filter.
func (s *lsofScanner) Scan(ranges []Range) (Snapshot, error) {
	cmd := exec.Command("lsof", "-nP", "-iTCP", "-sTCP:LISTEN", "-FpcnPT")
	out, err := cmd.Output()
	if err != nil {
		// lsof exits non-zero when nothing matches; without output that
		// simply means no listeners.
		if ee, ok := err.(*exec.ExitError); ok {
			if len(out) == 0 && len(ee.Stderr) == 0 {
				return Snapshot{}, nil
			}
			return nil, fmt.Errorf("lsof sweep failed: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("execute lsof sweep: %w", err)
	}
	return parseLsofOutput(string(out), ranges), nil
}

func platformPidHasListener(pid int32) bool {
	cmd := exec.Command("lsof", "-nP", "-p", strconv.Itoa(int(pid)), "-iTCP", "-sTCP:LISTEN", "-Fn")
	out, err := cmd.Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "n") {
			return true
		}
	}
	return false
}
