package phases

import (
	"errors"
	"fmt"
)

// Sentinel errors for state machine misuse and dependency gates.
var (
	// ErrNoDraft means the requested transition needs a draft that does
	// not exist.
	ErrNoDraft = errors.New("no draft available")
	// ErrNotEditing means an edit transition was requested outside an edit.
	ErrNotEditing = errors.New("not editing")
	// ErrGateNotSatisfied means a phase's dependency gate rejected
	// generation.
	ErrGateNotSatisfied = errors.New("phase dependency not satisfied")
	// ErrUnknownCandidate means a result references a candidate name that
	// the interview phase never established.
	ErrUnknownCandidate = errors.New("unknown candidate name")
	// ErrStaleGeneration means a generation result arrived after a newer
	// approval and was discarded.
	ErrStaleGeneration = errors.New("generation result is stale")
)

// GateError explains which gate rejected a generation request.
type GateError struct {
	Phase  string
	Reason string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("cannot generate %s: %s", e.Phase, e.Reason)
}

func (e *GateError) Unwrap() error {
	return ErrGateNotSatisfied
}
