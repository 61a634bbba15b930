//go:build linux

package ports

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type procfsScanner struct {
	root string
}

func platformScanner() Scanner {
	return &procfsScanner{root: "/proc"}
}

// Scan walks the kernel TCP tables for LISTEN sockets in range, then maps
// the owning socket inodes back to pids via each process's fd directory.
func (s *procfsScanner) Scan(ranges []Range) (Snapshot, error) {
	inodes, err := s.listenInodes(ranges)
	if err != nil {
		return nil, err
	}
	if len(inodes) == 0 {
		return Snapshot{}, nil
	}

	var records []Record
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.ParseInt(entry.Name(), 10, 32)
		if err != nil {
			continue
		}
		held := s.socketInodes(int32(pid))
		if len(held) == 0 {
			continue
		}
		var command string
		for inode, port := range inodes {
			if _, ok := held[inode]; !ok {
				continue
			}
			if command == "" {
				command = s.commandName(int32(pid))
			}
			records = append(records, Record{Port: port, Pid: int32(pid), Command: command})
		}
	}
	return Normalize(records), nil
}

// listenInodes returns socket inode -> port for every LISTEN socket whose
// port falls inside the ranges. A nil ranges slice matches every port.
func (s *procfsScanner) listenInodes(ranges []Range) (map[string]uint16, error) {
	tables := []string{
		s.root + "/net/tcp",
		s.root + "/net/tcp6",
	}
	inodes := make(map[string]uint16)
	opened := false
	for _, table := range tables {
		f, err := os.Open(table)
		if err != nil {
			continue
		}
		opened = true
		for _, l := range parseProcNetTCP(f) {
			if ranges != nil && !InRanges(l.port, ranges) {
				continue
			}
			inodes[l.inode] = l.port
		}
		f.Close()
	}
	if !opened {
		return nil, fmt.Errorf("no readable TCP table under %s/net", s.root)
	}
	return inodes, nil
}

// socketInodes returns the set of socket inodes held open by the pid.
// Processes owned by other users are unreadable and yield an empty set.
func (s *procfsScanner) socketInodes(pid int32) map[string]struct{} {
	fdDir := fmt.Sprintf("%s/%d/fd", s.root, pid)
	fds, err := os.ReadDir(fdDir)
	if err != nil {
		return nil
	}
	held := make(map[string]struct{})
	for _, fd := range fds {
		link, err := os.Readlink(fdDir + "/" + fd.Name())
		if err != nil {
			continue
		}
		inode, ok := strings.CutPrefix(link, "socket:[")
		if !ok {
			continue
		}
		held[strings.TrimSuffix(inode, "]")] = struct{}{}
	}
	return held
}

func (s *procfsScanner) commandName(pid int32) string {
	comm, err := os.ReadFile(fmt.Sprintf("%s/%d/comm", s.root, pid))
	if err != nil {
		return FallbackCommand(pid)
	}
	name := strings.TrimSpace(string(comm))
	if name == "" {
		return FallbackCommand(pid)
	}
	return name
}

func platformPidHasListener(pid int32) bool {
	s := &procfsScanner{root: "/proc"}
	inodes, err := s.listenInodes(nil)
	if err != nil {
		return false
	}
	for inode := range s.socketInodes(pid) {
		if _, ok := inodes[inode]; ok {
			return true
		}
	}
	return false
}
