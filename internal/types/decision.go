package types

// AssessmentDocs holds the three assessment documents collected for a
// shortlisted candidate ahead of the decision phase.
type AssessmentDocs struct {
	Personality string `json:"personality,omitempty"`
	Competency  string `json:"competency,omitempty"`
	Leadership  string `json:"leadership,omitempty"`
}

// DecisionRow is the decision-phase comparison for one candidate.
type DecisionRow struct {
	CandidateName      string `json:"candidate_name" validate:"required"`
	CompetencySummary  string `json:"competency_summary,omitempty"`
	LeadershipSummary  string `json:"leadership_summary,omitempty"`
	PersonalitySummary string `json:"personality_summary,omitempty"`
	Verdict            string `json:"verdict,omitempty"`
}

// DecisionResult is the canonical output of the decision phase: a
// candidate-by-candidate comparison plus an overall recommendation.
type DecisionResult struct {
	Rows           []DecisionRow `json:"rows" validate:"required,min=1,dive"`
	Recommendation string        `json:"recommendation" validate:"required"`
}
