package kill

import (
	"errors"
	"time"
)

// Grace periods and the liveness poll cadence. The worst case latency of one
// attempt is bounded by gracefulGrace + forcefulGrace plus probe overhead.
const (
	defaultGracefulGrace = 2 * time.Second
	defaultForcefulGrace = time.Second
	defaultPollStep      = 200 * time.Millisecond
)

// Sentinel results platform primitives translate their native errors into.
// Anything else coming out of a primitive is an unexpected platform error and
// resolves the attempt as Failed with the raw code attached.
var (
	// ErrProcessGone reports that the target pid no longer exists.
	ErrProcessGone = errors.New("process already exited")
	// ErrPermissionDenied reports that the caller may not signal the target.
	ErrPermissionDenied = errors.New("permission denied")
)

// Platform supplies the per-OS process primitives the engine escalates over.
// Implementations translate their native failure modes into ErrProcessGone
// and ErrPermissionDenied where applicable.
type Platform interface {
	// Exists probes whether the pid currently exists without signalling it.
	Exists(pid int32) (bool, error)

	// StillListening reports whether the pid still holds a TCP socket in
	// the LISTEN state. This narrows the window in which a recycled pid
	// could be signalled by mistake; it cannot close that window entirely.
	StillListening(pid int32) bool

	// SignalGraceful requests an orderly shutdown (SIGTERM on unix).
	SignalGraceful(pid int32) error

	// SignalForceful demands termination (SIGKILL on unix).
	SignalForceful(pid int32) error
}

// Engine drives a single pid through the graceful-then-forceful termination
// ladder. It is stateless between calls and safe for reuse; re-invoking it on
// an already-gone pid resolves cheaply at the existence probe.
type Engine struct {
	platform Platform

	gracefulGrace time.Duration
	forcefulGrace time.Duration
	pollStep      time.Duration

	sleep func(time.Duration)

	// Observer, when set, sees every terminal outcome. Used for metrics.
	Observer func(Outcome)
}

// NewEngine constructs an engine over the given platform primitives with the
// default grace periods.
func NewEngine(platform Platform) *Engine {
	return &Engine{
		platform:      platform,
		gracefulGrace: defaultGracefulGrace,
		forcefulGrace: defaultForcefulGrace,
		pollStep:      defaultPollStep,
		sleep:         time.Sleep,
	}
}

// Terminate escalates termination signals against the pid until it exits or
// the grace budget runs out. It always returns a terminal outcome; it never
// blocks longer than the two grace periods plus probe overhead. Terminate
// performs blocking waits and must not be called from an event-loop handler.
func (e *Engine) Terminate(pid int32) Outcome {
	outcome := e.terminate(pid)
	if e.Observer != nil {
		e.Observer(outcome)
	}
	return outcome
}

func (e *Engine) terminate(pid int32) Outcome {
	exists, err := e.platform.Exists(pid)
	if err != nil {
		return Outcome{Verdict: Failed, Code: platformErrorCode(err)}
	}
	if !exists {
		return Outcome{Verdict: AlreadyExited}
	}

	// Re-verify the pid is still a listener immediately before signalling.
	// Between the scan that produced this kill request and now, the pid may
	// have been recycled for an unrelated process.
	if !e.platform.StillListening(pid) {
		return Outcome{Verdict: AlreadyExited}
	}

	// Some platforms report permission errors eagerly even though the
	// process may still honour the signal, so a denial is recorded and the
	// wait still runs.
	denied := false

	switch err := e.platform.SignalGraceful(pid); {
	case err == nil:
	case errors.Is(err, ErrProcessGone):
		return Outcome{Verdict: AlreadyExited}
	case errors.Is(err, ErrPermissionDenied):
		denied = true
	default:
		return Outcome{Verdict: Failed, Code: platformErrorCode(err)}
	}

	exited, err := e.waitForExit(pid, e.gracefulGrace)
	if err != nil {
		return Outcome{Verdict: Failed, Code: platformErrorCode(err)}
	}
	if exited {
		return Outcome{Verdict: Success}
	}

	switch err := e.platform.SignalForceful(pid); {
	case err == nil:
	case errors.Is(err, ErrProcessGone):
		return Outcome{Verdict: Success}
	case errors.Is(err, ErrPermissionDenied):
		denied = true
	default:
		return Outcome{Verdict: Failed, Code: platformErrorCode(err)}
	}

	exited, err = e.waitForExit(pid, e.forcefulGrace)
	if err != nil {
		return Outcome{Verdict: Failed, Code: platformErrorCode(err)}
	}
	if exited {
		return Outcome{Verdict: Success}
	}
	if denied {
		return Outcome{Verdict: PermissionDenied}
	}
	return Outcome{Verdict: TimedOut}
}

// waitForExit polls process liveness every pollStep until the pid is gone or
// the grace period elapses.
func (e *Engine) waitForExit(pid int32, grace time.Duration) (bool, error) {
	deadline := time.Now().Add(grace)
	for {
		exists, err := e.platform.Exists(pid)
		if err != nil {
			return false, err
		}
		if !exists {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		e.sleep(e.pollStep)
	}
}
