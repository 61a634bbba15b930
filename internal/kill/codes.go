package kill

import (
	"errors"
	"syscall"
)

// platformErrorCode digs the raw OS error code out of a wrapped error so the
// batch aggregation stays platform-agnostic. -1 marks errors that carried no
// numeric code.
func platformErrorCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return -1
}
