package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rbarbosa/talentflow/internal/phases"
	"github.com/rbarbosa/talentflow/internal/types"
)

// draftCollection holds per-project unapproved drafts. Drafts live outside
// the canonical project document so the approved state shape stays clean;
// losing this collection loses nothing that was ever approved.
const draftCollection = "drafts"

// scratch is the serialized draft set for one project.
type scratch struct {
	Alignment   *types.AlignmentResult                `json:"alignment,omitempty"`
	Evaluations map[string]*types.CandidateEvaluation `json:"evaluations,omitempty"`
	Shortlist   *types.Shortlist                      `json:"shortlist,omitempty"`
	Decision    *types.DecisionResult                 `json:"decision,omitempty"`
	References  *types.ReferenceReport                `json:"references,omitempty"`
	Assessments map[string]types.AssessmentDocs       `json:"assessments,omitempty"`
}

// SyncScratch replaces the stored draft set with the pipeline's current
// drafts. Call after generating, editing or approving so a later CLI
// invocation picks up where this one left off. Approved results drop out of
// the scratchpad automatically because their slots no longer hold drafts.
func (s *Session) SyncScratch(ctx context.Context) error {
	if s.machine == nil {
		return fmt.Errorf("no open project")
	}
	pipe := s.machine.Pipeline()

	sc := scratch{
		Alignment:  pendingOf(pipe.Alignment()),
		Shortlist:  pendingOf(pipe.Shortlist()),
		Decision:   pendingOf(pipe.Decision()),
		References: pendingOf(pipe.References()),
	}
	for _, c := range pipe.Candidates() {
		if draft := pendingOf(pipe.Evaluation(c.Name)); draft != nil {
			if sc.Evaluations == nil {
				sc.Evaluations = make(map[string]*types.CandidateEvaluation)
			}
			sc.Evaluations[c.Name] = draft
		}
	}
	if docs := pipe.Assessments(); len(docs) > 0 {
		sc.Assessments = docs
	}

	raw, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to serialize drafts: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("failed to serialize drafts: %w", err)
	}
	if err := s.store.Set(ctx, draftCollection, s.project.ID, fields, false); err != nil {
		return fmt.Errorf("failed to save drafts: %w", err)
	}
	return nil
}

// loadScratch restores saved drafts into the open project's slots.
func (s *Session) loadScratch(ctx context.Context) error {
	data, err := s.store.Get(ctx, draftCollection, s.project.ID)
	if err != nil {
		return fmt.Errorf("failed to load drafts: %w", err)
	}
	if data == nil {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to decode drafts: %w", err)
	}
	var sc scratch
	if err := json.Unmarshal(raw, &sc); err != nil {
		return fmt.Errorf("failed to decode drafts: %w", err)
	}

	pipe := s.machine.Pipeline()
	if sc.Alignment != nil {
		pipe.Alignment().RestoreDraft(*sc.Alignment)
	}
	for name, draft := range sc.Evaluations {
		if draft != nil {
			pipe.Evaluation(name).RestoreDraft(*draft)
		}
	}
	if sc.Shortlist != nil {
		pipe.Shortlist().RestoreDraft(*sc.Shortlist)
	}
	if sc.Decision != nil {
		pipe.Decision().RestoreDraft(*sc.Decision)
	}
	if sc.References != nil {
		pipe.References().RestoreDraft(*sc.References)
	}
	for name, docs := range sc.Assessments {
		pipe.SetAssessmentDocs(name, docs)
	}
	return nil
}

// pendingOf returns the working copy when mid-edit, otherwise the draft.
func pendingOf[T any](slot *phases.Slot[T]) *T {
	if w := slot.Working(); w != nil {
		return w
	}
	return slot.Draft()
}
