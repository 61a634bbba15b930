package kill

import "fmt"

// Verdict classifies how a termination attempt resolved. Every attempt ends
// in exactly one verdict.
type Verdict int

const (
	// Success means the process exited after signalling.
	Success Verdict = iota
	// AlreadyExited means the process was gone before any signal was sent,
	// or vanished concurrently with the graceful signal.
	AlreadyExited
	// PermissionDenied means the process survived both grace periods and at
	// least one signal along the way was refused with a permission error.
	PermissionDenied
	// TimedOut means the process survived both grace periods with no
	// permission error recorded.
	TimedOut
	// Failed means an unexpected platform error interrupted the attempt;
	// Outcome.Code carries the raw platform error code.
	Failed
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case AlreadyExited:
		return "already-exited"
	case PermissionDenied:
		return "permission-denied"
	case TimedOut:
		return "timed-out"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Outcome is the terminal result of one termination attempt.
type Outcome struct {
	Verdict Verdict
	// Code is the raw platform error code, set only when Verdict is Failed.
	Code int
}

func (o Outcome) String() string {
	if o.Verdict == Failed {
		return fmt.Sprintf("failed(code %d)", o.Code)
	}
	return o.Verdict.String()
}

// Severity grades feedback surfaced to the user. It is always derived from
// outcomes, never chosen by callers directly.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Feedback is a user-facing message about a termination or service action.
type Feedback struct {
	Message  string
	Severity Severity
}

// Infof builds informational feedback.
func Infof(format string, args ...any) Feedback {
	return Feedback{Message: fmt.Sprintf(format, args...), Severity: SeverityInfo}
}

// Warningf builds warning feedback.
func Warningf(format string, args ...any) Feedback {
	return Feedback{Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// Errorf builds error feedback.
func Errorf(format string, args ...any) Feedback {
	return Feedback{Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}
