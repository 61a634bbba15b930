//go:build windows

package kill

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/Paintersrp/portpatrol/internal/ports"
)

const (
	errorAccessDenied     = windows.Errno(5)
	errorInvalidParameter = windows.Errno(87)
	errorNotFound         = windows.Errno(1168)
)

type windowsPlatform struct{}

// NewPlatform returns the handle-based primitives for Windows.
func NewPlatform() Platform {
	return windowsPlatform{}
}

func (windowsPlatform) Exists(pid int32) (bool, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err == nil {
		// A handle can still be opened on a terminated process; check the
		// exit state before concluding the pid is alive.
		defer windows.CloseHandle(h)
		var code uint32
		if err := windows.GetExitCodeProcess(h, &code); err != nil {
			return false, fmt.Errorf("probe pid %d: %w", pid, err)
		}
		const stillActive = 259 // STILL_ACTIVE
		return code == stillActive, nil
	}
	if errors.Is(err, errorInvalidParameter) || errors.Is(err, errorNotFound) {
		return false, nil
	}
	if errors.Is(err, errorAccessDenied) {
		// The process exists but is out of reach.
		return true, nil
	}
	return false, fmt.Errorf("probe pid %d: %w", pid, err)
}

func (windowsPlatform) StillListening(pid int32) bool {
	return ports.PidHasListener(pid)
}

// SignalGraceful is a no-op on Windows. Arbitrary foreign processes expose no
// counterpart to SIGTERM, so the graceful phase degrades to the engine's wait
// before the forceful terminate, matching the reference behavior.
func (windowsPlatform) SignalGraceful(pid int32) error {
	exists, err := (windowsPlatform{}).Exists(pid)
	if err != nil {
		return err
	}
	if !exists {
		return ErrProcessGone
	}
	return nil
}

func (windowsPlatform) SignalForceful(pid int32) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return translateWindowsError(err)
	}
	defer windows.CloseHandle(h)
	if err := windows.TerminateProcess(h, 1); err != nil {
		return translateWindowsError(err)
	}
	return nil
}

func translateWindowsError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errorInvalidParameter), errors.Is(err, errorNotFound):
		return ErrProcessGone
	case errors.Is(err, errorAccessDenied):
		return ErrPermissionDenied
	default:
		return err
	}
}
