// Package phases implements the ordered-phase state machine: five pipeline
// stages whose AI-generated drafts must pass explicit human approval before
// becoming canonical state consumed by later stages.
package phases

import (
	"encoding/json"
	"fmt"
)

// Status is the approval state of one phase slot.
type Status string

// Slot statuses
const (
	StatusEmpty    Status = "empty"
	StatusDrafted  Status = "drafted"
	StatusEditing  Status = "editing"
	StatusApproved Status = "approved"
)

// Token tags one generation request so a slow in-flight result can be
// recognized as stale once a newer approval has landed.
type Token struct {
	gen      uint64
	approval uint64
}

// Slot holds the canonical result, the unapproved draft and the in-progress
// edit copy for one phase. A slot belongs to a single project session and is
// not safe for concurrent mutation.
type Slot[T any] struct {
	status    Status
	canonical *T
	draft     *T
	working   *T

	genSeq      uint64
	approvalSeq uint64
}

// Status returns the current slot status.
func (s *Slot[T]) Status() Status {
	if s.status == "" {
		return StatusEmpty
	}
	return s.status
}

// Canonical returns a copy of the approved result, or nil when the phase has
// never been approved. The canonical value stays authoritative while a newer
// draft awaits approval.
func (s *Slot[T]) Canonical() *T {
	return clonePtr(s.canonical)
}

// Draft returns a copy of the unapproved draft, or nil.
func (s *Slot[T]) Draft() *T {
	return clonePtr(s.draft)
}

// Working returns a copy of the edit working copy, or nil when not editing.
func (s *Slot[T]) Working() *T {
	return clonePtr(s.working)
}

// Begin issues a token for a new generation request.
func (s *Slot[T]) Begin() Token {
	s.genSeq++
	return Token{gen: s.genSeq, approval: s.approvalSeq}
}

// Complete installs a generation result as the new draft. It reports false
// and discards the result when it is stale: an approval landed after the
// request started, a newer request was issued, or the slot is mid-edit.
// Discarding never corrupts state; the canonical value is untouched either
// way.
func (s *Slot[T]) Complete(tok Token, result T) bool {
	if tok.approval != s.approvalSeq || tok.gen != s.genSeq {
		return false
	}
	if s.status == StatusEditing {
		return false
	}

	copied, err := cloneValue(result)
	if err != nil {
		return false
	}
	s.draft = &copied
	s.status = StatusDrafted
	return true
}

// BeginEdit transitions drafted → editing: a deep copy of the draft becomes
// the working copy, the original draft stays untouched.
func (s *Slot[T]) BeginEdit() (*T, error) {
	if s.status != StatusDrafted {
		return nil, fmt.Errorf("%w: cannot edit in status %q", ErrNoDraft, s.Status())
	}
	copied, err := cloneValue(*s.draft)
	if err != nil {
		return nil, err
	}
	s.working = &copied
	s.status = StatusEditing
	return clonePtr(s.working), nil
}

// UpdateWorking replaces the working copy with the caller's edited value.
func (s *Slot[T]) UpdateWorking(value T) error {
	if s.status != StatusEditing {
		return fmt.Errorf("%w: slot is %q", ErrNotEditing, s.Status())
	}
	copied, err := cloneValue(value)
	if err != nil {
		return err
	}
	s.working = &copied
	return nil
}

// CancelEdit discards the working copy and returns to drafted.
func (s *Slot[T]) CancelEdit() error {
	if s.status != StatusEditing {
		return fmt.Errorf("%w: slot is %q", ErrNotEditing, s.Status())
	}
	s.working = nil
	s.status = StatusDrafted
	return nil
}

// Approve commits the working copy (when editing) or the draft as canonical.
// This is the only transition that makes a result visible to later phases.
// In-flight generation results become stale once it succeeds.
func (s *Slot[T]) Approve() (T, error) {
	var zero T

	var chosen *T
	switch s.status {
	case StatusEditing:
		chosen = s.working
	case StatusDrafted:
		chosen = s.draft
	default:
		return zero, fmt.Errorf("%w: slot is %q", ErrNoDraft, s.Status())
	}

	copied, err := cloneValue(*chosen)
	if err != nil {
		return zero, err
	}

	s.canonical = &copied
	s.draft = nil
	s.working = nil
	s.status = StatusApproved
	s.approvalSeq++

	return copied, nil
}

// RestoreDraft installs a previously saved unapproved draft, e.g. when a
// session scratchpad is reloaded. It never disturbs the canonical value and
// invalidates any in-flight generation token.
func (s *Slot[T]) RestoreDraft(value T) {
	copied, err := cloneValue(value)
	if err != nil {
		return
	}
	s.genSeq++
	s.draft = &copied
	s.working = nil
	s.status = StatusDrafted
}

// restore installs a previously persisted canonical value, e.g. on session
// start.
func (s *Slot[T]) restore(value T) {
	copied, err := cloneValue(value)
	if err != nil {
		return
	}
	s.canonical = &copied
	s.status = StatusApproved
}

// cloneValue deep-copies v through JSON, matching the serialized shape.
func cloneValue[T any](v T) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("failed to copy phase result: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to copy phase result: %w", err)
	}
	return out, nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	copied, err := cloneValue(*p)
	if err != nil {
		return nil
	}
	return &copied
}
