package types

// ReferenceCheck captures one reference conversation in the reference phase
// report.
type ReferenceCheck struct {
	RefereeName     string   `json:"referee_name,omitempty"`
	Relationship    string   `json:"relationship,omitempty"`
	KeyObservations []string `json:"key_observations,omitempty"`
}

// ReferenceReport is the canonical output of the reference phase for the
// selected candidate.
type ReferenceReport struct {
	CandidateName string           `json:"candidate_name" validate:"required"`
	Summary       string           `json:"summary" validate:"required"`
	Checks        []ReferenceCheck `json:"checks,omitempty"`
	Risks         []string         `json:"risks,omitempty"`
	Verdict       string           `json:"verdict,omitempty"`
}
