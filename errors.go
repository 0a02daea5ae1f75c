package warmup

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Attempt failure classification
// ---------------------------------------------------------------------------

type (
	// Error identifies errors produced by the initializer itself, as opposed
	// to errors returned by an [Engine].
	//nolint:iface // exported for consumer error classification.
	Error interface {
		error
		// IsWarmup reports whether this error originates from the
		// initializer.
		IsWarmup() bool
	}

	// Stage names the step of an attempt that failed.
	Stage int

	// AttemptError records which step of which attempt failed. Inside the
	// retry loop every AttemptError is treated the same; the stage only
	// matters to hooks and logs.
	AttemptError struct {
		Err     error
		Stage   Stage
		Attempt int
	}

	// warmupError is the concrete type backing all sentinel errors.
	warmupError string
)

const (
	// StageBootstrap is the engine bootstrap step.
	StageBootstrap Stage = iota
	// StageConstruct is the instance construction step.
	StageConstruct
	// StageVerify is the check that the constructed instance is not empty.
	StageVerify
)

// Sentinel initializer errors.
var (
	// ErrEmptyInstance is recorded when construction succeeds but yields an
	// empty instance.
	ErrEmptyInstance error = warmupError("empty instance")
	// ErrAttemptTimeout is recorded when an attempt exceeds its deadline.
	ErrAttemptTimeout error = warmupError("attempt timeout")
	// ErrAttemptsExhausted is returned by [Init] when every attempt failed.
	ErrAttemptsExhausted error = warmupError("attempts exhausted")
	// ErrDeactivated is returned when an activation stops before reaching a
	// terminal phase.
	ErrDeactivated error = warmupError("deactivated")
	// ErrEnginePanic is recorded when a bootstrap or construct call panics.
	ErrEnginePanic error = warmupError("engine panic")
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageBootstrap:
		return "bootstrap"
	case StageConstruct:
		return "construct"
	case StageVerify:
		return "verify"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

func (e warmupError) Error() string { return string(e) }

// IsWarmup reports whether the error is an initializer error.
func (warmupError) IsWarmup() bool { return true }

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d: %s: %v", e.Attempt, e.Stage, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, if err wraps an [AttemptError].
func StageOf(err error) (Stage, bool) {
	var ae *AttemptError
	if !errors.As(err, &ae) {
		return 0, false
	}

	return ae.Stage, true
}
