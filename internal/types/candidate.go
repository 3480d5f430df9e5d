package types

// CandidateEvaluation is the canonical interview-phase output for a single
// candidate.
type CandidateEvaluation struct {
	CandidateName    string   `json:"candidate_name" validate:"required"`
	Summary          string   `json:"summary" validate:"required"`
	Strengths        []string `json:"strengths,omitempty"`
	Risks            []string `json:"risks,omitempty"`
	CompetencyNotes  string   `json:"competency_notes,omitempty"`
	LeadershipNotes  string   `json:"leadership_notes,omitempty"`
	PersonalityNotes string   `json:"personality_notes,omitempty"`
	Recommendation   string   `json:"recommendation,omitempty"`
}

// Candidate accumulates per-candidate state across the pipeline. The name is
// the natural key within a project: two spellings of the same person are two
// different candidates.
type Candidate struct {
	Name            string               `json:"name"`
	CVText          string               `json:"cvText,omitempty"`
	InterviewReport string               `json:"interviewReport,omitempty"`
	Evaluation      *CandidateEvaluation `json:"phase2Data,omitempty"`
}
