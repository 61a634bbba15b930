package kill

import (
	"fmt"
	"strings"
)

// batchTally accumulates per-verdict counts across one batch run.
type batchTally struct {
	success  int
	already  int
	denied   int
	timedOut int
	failed   int
}

// RunBatch terminates every target sequentially in input order and folds the
// outcomes into one report. The first target that resolves to a non-happy
// verdict (denied, timed out or failed) is retained for the detail clause;
// "first" means first by execution order, not by severity.
func (e *Engine) RunBatch(targets []Target) Feedback {
	if len(targets) == 0 {
		return Infof("No listeners to terminate; no action taken.")
	}

	var (
		tally        batchTally
		firstFailure *Target
		firstOutcome Outcome
	)
	for i := range targets {
		target := targets[i]
		outcome := e.Terminate(target.Pid)
		switch outcome.Verdict {
		case Success:
			tally.success++
		case AlreadyExited:
			tally.already++
		case PermissionDenied:
			tally.denied++
		case TimedOut:
			tally.timedOut++
		case Failed:
			tally.failed++
		}
		if firstFailure == nil && isFailureVerdict(outcome.Verdict) {
			firstFailure = &target
			firstOutcome = outcome
		}
	}

	return Feedback{
		Message:  batchMessage(tally, firstFailure, firstOutcome),
		Severity: batchSeverity(tally),
	}
}

func isFailureVerdict(v Verdict) bool {
	return v == PermissionDenied || v == TimedOut || v == Failed
}

// batchSeverity derives the aggregate severity: Info when something was
// terminated and nothing went wrong, Error when nothing was terminated,
// Warning for the mixed cases in between. Already-exited targets count as
// neither success nor failure.
func batchSeverity(t batchTally) Severity {
	if t.success == 0 {
		return SeverityError
	}
	if t.denied == 0 && t.timedOut == 0 && t.failed == 0 {
		return SeverityInfo
	}
	return SeverityWarning
}

func batchMessage(t batchTally, firstFailure *Target, firstOutcome Outcome) string {
	var parts []string
	if t.success > 0 {
		parts = append(parts, fmt.Sprintf("terminated %d", t.success))
	}
	if t.already > 0 {
		parts = append(parts, fmt.Sprintf("%d already stopped", t.already))
	}
	if t.denied > 0 {
		parts = append(parts, fmt.Sprintf("%d permission denied", t.denied))
	}
	if t.timedOut > 0 {
		parts = append(parts, fmt.Sprintf("%d timed out", t.timedOut))
	}
	if t.failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", t.failed))
	}
	if len(parts) == 0 {
		parts = append(parts, "no action taken")
	}

	msg := "Kill all: " + strings.Join(parts, ", ") + "."
	if firstFailure != nil {
		msg += fmt.Sprintf(" First failure: %s (PID %d)", firstFailure.Label, firstFailure.Pid)
		if firstOutcome.Verdict == Failed {
			msg += fmt.Sprintf(", code %d", firstOutcome.Code)
		}
		msg += "."
	}
	return msg
}

// SingleFeedback renders the user-facing feedback for a one-target kill.
func SingleFeedback(target Target, outcome Outcome) Feedback {
	switch outcome.Verdict {
	case Success:
		return Infof("Terminated %s (PID %d).", target.Label, target.Pid)
	case AlreadyExited:
		return Warningf("%s (PID %d) was already stopped.", target.Label, target.Pid)
	case PermissionDenied:
		return Errorf("Permission denied terminating %s (PID %d).", target.Label, target.Pid)
	case TimedOut:
		return Errorf("Timed out terminating %s (PID %d).", target.Label, target.Pid)
	default:
		return Errorf("Failed to terminate %s (PID %d): code %d.", target.Label, target.Pid, outcome.Code)
	}
}
