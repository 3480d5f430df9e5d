package phases

import (
	"time"

	"github.com/rbarbosa/talentflow/internal/types"
)

// Pipeline is the in-memory phase state for one project session. It owns the
// five phase slots, the candidate roster established by the interview phase
// and the raw inputs later phases consume.
type Pipeline struct {
	Project *types.Project

	alignment  Slot[types.AlignmentResult]
	candidates []*candidateState
	shortlist  Slot[types.Shortlist]
	decision   Slot[types.DecisionResult]
	references Slot[types.ReferenceReport]

	// ReferenceNotes holds the raw reference-call notes for the reference
	// phase.
	ReferenceNotes string

	// ChatHistory is stored and round-tripped opaquely.
	ChatHistory []types.ChatMessage

	assessments map[string]*types.AssessmentDocs
}

// candidateState pairs the accumulated candidate record with its
// per-candidate evaluation slot.
type candidateState struct {
	candidate types.Candidate
	eval      Slot[types.CandidateEvaluation]
}

// NewPipeline creates an empty pipeline for project.
func NewPipeline(project *types.Project) *Pipeline {
	return &Pipeline{
		Project:     project,
		assessments: make(map[string]*types.AssessmentDocs),
	}
}

// Alignment exposes the alignment slot for edit and inspection.
func (p *Pipeline) Alignment() *Slot[types.AlignmentResult] { return &p.alignment }

// Shortlist exposes the shortlist slot.
func (p *Pipeline) Shortlist() *Slot[types.Shortlist] { return &p.shortlist }

// Decision exposes the decision slot.
func (p *Pipeline) Decision() *Slot[types.DecisionResult] { return &p.decision }

// References exposes the reference slot.
func (p *Pipeline) References() *Slot[types.ReferenceReport] { return &p.references }

// Evaluation returns the evaluation slot for a candidate name, creating the
// underlying entry on first use. Candidate order is first-seen and stable.
func (p *Pipeline) Evaluation(name string) *Slot[types.CandidateEvaluation] {
	return &p.ensureCandidate(name).eval
}

// Candidates returns copies of the candidate records in first-seen order.
func (p *Pipeline) Candidates() []types.Candidate {
	out := make([]types.Candidate, 0, len(p.candidates))
	for _, cs := range p.candidates {
		out = append(out, cs.candidate)
	}
	return out
}

// EvaluatedNames returns the names of candidates with an approved
// evaluation, in first-seen order.
func (p *Pipeline) EvaluatedNames() []string {
	var names []string
	for _, cs := range p.candidates {
		if cs.candidate.Evaluation != nil {
			names = append(names, cs.candidate.Name)
		}
	}
	return names
}

// SetCandidateDocs upserts the raw document texts for a candidate by name.
func (p *Pipeline) SetCandidateDocs(name, cvText, interviewReport string) {
	cs := p.ensureCandidate(name)
	if cvText != "" {
		cs.candidate.CVText = cvText
	}
	if interviewReport != "" {
		cs.candidate.InterviewReport = interviewReport
	}
}

// SetAssessmentDocs stores the three decision-phase assessment documents for
// a candidate.
func (p *Pipeline) SetAssessmentDocs(name string, docs types.AssessmentDocs) {
	p.assessments[name] = &docs
}

// AssessmentDocs returns the stored assessment documents for a candidate, or
// nil.
func (p *Pipeline) AssessmentDocs(name string) *types.AssessmentDocs {
	return p.assessments[name]
}

// Assessments returns a copy of all stored assessment documents by candidate
// name.
func (p *Pipeline) Assessments() map[string]types.AssessmentDocs {
	out := make(map[string]types.AssessmentDocs, len(p.assessments))
	for name, docs := range p.assessments {
		if docs != nil {
			out[name] = *docs
		}
	}
	return out
}

func (p *Pipeline) ensureCandidate(name string) *candidateState {
	if cs := p.findCandidate(name); cs != nil {
		return cs
	}
	cs := &candidateState{candidate: types.Candidate{Name: name}}
	p.candidates = append(p.candidates, cs)
	return cs
}

func (p *Pipeline) findCandidate(name string) *candidateState {
	for _, cs := range p.candidates {
		if cs.candidate.Name == name {
			return cs
		}
	}
	return nil
}

// knowsName reports whether name belongs to the candidate roster.
func (p *Pipeline) knowsName(name string) bool {
	return p.findCandidate(name) != nil
}

// State is the JSON-serializable tree persisted per project. Optional fields
// are omitted entirely rather than written as null.
type State struct {
	Phase1Data   *types.AlignmentResult `json:"phase1Data,omitempty"`
	Candidates   []types.Candidate      `json:"candidates,omitempty"`
	Shortlist    []types.ShortlistEntry `json:"shortlist,omitempty"`
	Phase4Result *types.DecisionResult  `json:"phase4Result,omitempty"`
	Phase5Result *types.ReferenceReport `json:"phase5Result,omitempty"`
	ChatHistory  []types.ChatMessage    `json:"chatHistory,omitempty"`
	UpdatedAt    string                 `json:"updatedAt,omitempty"`
}

// Snapshot captures the approved state of the pipeline. Unapproved drafts
// and working copies are deliberately excluded: only canonical state
// persists.
func (p *Pipeline) Snapshot() *State {
	state := &State{
		Phase1Data:   p.alignment.Canonical(),
		Candidates:   p.Candidates(),
		Phase4Result: p.decision.Canonical(),
		Phase5Result: p.references.Canonical(),
		ChatHistory:  p.ChatHistory,
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if sl := p.shortlist.Canonical(); sl != nil {
		state.Shortlist = sl.Entries
	}
	return state
}

// Restore loads previously persisted canonical state into the pipeline,
// typically on session start.
func (p *Pipeline) Restore(state *State) {
	if state == nil {
		return
	}
	if state.Phase1Data != nil {
		p.alignment.restore(*state.Phase1Data)
	}
	for _, c := range state.Candidates {
		cs := p.ensureCandidate(c.Name)
		cs.candidate = c
		if c.Evaluation != nil {
			cs.eval.restore(*c.Evaluation)
		}
	}
	if len(state.Shortlist) > 0 {
		p.shortlist.restore(types.Shortlist{Entries: state.Shortlist})
	}
	if state.Phase4Result != nil {
		p.decision.restore(*state.Phase4Result)
	}
	if state.Phase5Result != nil {
		p.references.restore(*state.Phase5Result)
	}
	p.ChatHistory = state.ChatHistory
}
