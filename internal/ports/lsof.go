package ports

import (
	"strconv"
	"strings"
)

// parseLsofOutput decodes `lsof -FpcnPT` field output into listener records.
// Field lines carry a one-letter tag: p (pid, starts a process section),
// c (command) and n (socket name such as "*:3000" or "[::1]:8000").
func parseLsofOutput(out string, ranges []Range) Snapshot {
	var (
		records []Record
		pid     int32
		pidOK   bool
		command string
	)
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		tag, val := line[:1], strings.TrimSpace(line[1:])
		switch tag {
		case "p":
			n, err := strconv.ParseInt(val, 10, 32)
			pid, pidOK = int32(n), err == nil
			command = ""
		case "c":
			command = val
		case "n":
			if !pidOK {
				continue
			}
			port, ok := parseLsofPort(val)
			if !ok || !InRanges(port, ranges) {
				continue
			}
			cmd := command
			if cmd == "" {
				cmd = FallbackCommand(pid)
			}
			records = append(records, Record{Port: port, Pid: pid, Command: cmd})
		}
	}
	return Normalize(records)
}

// parseLsofPort extracts the port from an lsof name field, accepting
// "*:3000", "127.0.0.1:5173" and "[::1]:8000". Established-connection
// entries containing "->" are rejected.
func parseLsofPort(name string) (uint16, bool) {
	if strings.Contains(name, "->") {
		return 0, false
	}
	idx := strings.LastIndexByte(name, ':')
	if idx < 0 || idx == len(name)-1 {
		return 0, false
	}
	n, err := strconv.ParseUint(name[idx+1:], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}
