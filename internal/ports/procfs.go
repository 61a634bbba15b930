package ports

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// tcpStateListen is the hex state code for LISTEN in /proc/net/tcp{,6}.
const tcpStateListen = "0A"

// procfsListener is one LISTEN row from a /proc/net/tcp table, keyed back to
// its owning process by socket inode.
type procfsListener struct {
	port  uint16
	inode string
}

// parseProcNetTCP extracts LISTEN sockets from a /proc/net/tcp or tcp6
// table. Malformed rows are skipped rather than failing the whole scan.
func parseProcNetTCP(r io.Reader) []procfsListener {
	var out []procfsListener
	scanner := bufio.NewScanner(r)
	scanner.Scan() // header
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}
		if fields[3] != tcpStateListen {
			continue
		}
		port, ok := parseProcfsPort(fields[1])
		if !ok {
			continue
		}
		out = append(out, procfsListener{port: port, inode: fields[9]})
	}
	return out
}

// parseProcfsPort pulls the port out of a local_address field such as
// "0100007F:0BB8" or "00000000000000000000000001000000:1F90".
func parseProcfsPort(local string) (uint16, bool) {
	_, portHex, found := strings.Cut(local, ":")
	if !found {
		return 0, false
	}
	n, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}
