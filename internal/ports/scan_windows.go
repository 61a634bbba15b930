//go:build windows

package ports

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

type netstatScanner struct{}

func platformScanner() Scanner {
	return &netstatScanner{}
}

func (s *netstatScanner) Scan(ranges []Range) (Snapshot, error) {
	cmd := exec.Command("netstat", "-ano", "-p", "TCP")
	// Suppress the console window netstat would otherwise flash up.
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("netstat failed: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("execute netstat: %w", err)
	}

	names := make(map[int32]string)
	var records []Record
	for _, l := range parseNetstatOutput(string(out), ranges) {
		name, ok := names[l.pid]
		if !ok {
			name = processImageName(l.pid)
			names[l.pid] = name
		}
		records = append(records, Record{Port: l.port, Pid: l.pid, Command: name})
	}
	return Normalize(records), nil
}

// processImageName resolves the executable base name for a pid, falling back
// to the synthetic "pid N" label when the process cannot be opened.
func processImageName(pid int32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return FallbackCommand(pid)
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return FallbackCommand(pid)
	}
	path := windows.UTF16ToString(buf[:size])
	if idx := strings.LastIndexAny(path, `\/`); idx >= 0 {
		path = path[idx+1:]
	}
	if path == "" {
		return FallbackCommand(pid)
	}
	return path
}

func platformPidHasListener(pid int32) bool {
	cmd := exec.Command("netstat", "-ano", "-p", "TCP")
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	out, err := cmd.Output()
	if err != nil {
		return false
	}
	for _, l := range parseNetstatOutput(string(out), nil) {
		if l.pid == pid {
			return true
		}
	}
	return false
}
