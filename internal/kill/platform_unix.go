//go:build !windows

package kill

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/Paintersrp/portpatrol/internal/ports"
)

type unixPlatform struct{}

// NewPlatform returns the signal-based primitives for unix-like systems.
func NewPlatform() Platform {
	return unixPlatform{}
}

// Exists probes the pid with the null signal.
func (unixPlatform) Exists(pid int32) (bool, error) {
	err := unix.Kill(int(pid), 0)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.ESRCH):
		return false, nil
	default:
		return false, fmt.Errorf("probe pid %d: %w", pid, err)
	}
}

func (unixPlatform) StillListening(pid int32) bool {
	return ports.PidHasListener(pid)
}

// SignalGraceful sends SIGTERM to the pid itself, not its process group.
// Targets here are arbitrary foreign processes, not children this program
// spawned, so group delivery would hit unrelated siblings.
func (unixPlatform) SignalGraceful(pid int32) error {
	return translateKillError(unix.Kill(int(pid), unix.SIGTERM))
}

func (unixPlatform) SignalForceful(pid int32) error {
	return translateKillError(unix.Kill(int(pid), unix.SIGKILL))
}

func translateKillError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return ErrProcessGone
	case errors.Is(err, unix.EPERM):
		return ErrPermissionDenied
	default:
		return err
	}
}
