package ports

import (
	"strconv"
	"strings"
)

// netstatListener is one LISTENING row from `netstat -ano -p TCP` output,
// before the process name has been resolved.
type netstatListener struct {
	port uint16
	pid  int32
}

// parseNetstatOutput extracts in-range LISTENING rows. Lines look like
//
//	TCP    0.0.0.0:3000    0.0.0.0:0    LISTENING    1234
//	TCP    [::]:3000       [::]:0       LISTENING    1234
//
// Pid 0 (the system idle process) is skipped. A nil ranges slice matches
// every port.
func parseNetstatOutput(out string, ranges []Range) []netstatListener {
	var listeners []netstatListener
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "TCP" || fields[3] != "LISTENING" {
			continue
		}
		port, ok := parseAddressPort(fields[1])
		if !ok || (ranges != nil && !InRanges(port, ranges)) {
			continue
		}
		pid, err := strconv.ParseInt(fields[4], 10, 32)
		if err != nil || pid == 0 {
			continue
		}
		listeners = append(listeners, netstatListener{port: port, pid: int32(pid)})
	}
	return listeners
}

// parseAddressPort extracts the port from "0.0.0.0:3000" or "[::]:3000".
func parseAddressPort(addr string) (uint16, bool) {
	idx := strings.LastIndexByte(addr, ':')
	if idx < 0 || idx == len(addr)-1 {
		return 0, false
	}
	n, err := strconv.ParseUint(addr[idx+1:], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}
