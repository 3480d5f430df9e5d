package types

// ShortlistEntry ranks one evaluated candidate for presentation to the
// hiring company. Entries key off candidate names established by the
// interview phase.
type ShortlistEntry struct {
	CandidateName string   `json:"candidate_name" validate:"required"`
	Rank          int      `json:"rank"`
	Rationale     string   `json:"rationale" validate:"required"`
	Highlights    []string `json:"highlights,omitempty"`
	Concerns      []string `json:"concerns,omitempty"`
}

// Shortlist is the canonical output of the shortlist phase.
type Shortlist struct {
	Entries []ShortlistEntry `json:"entries" validate:"required,min=1,dive"`
	Summary string           `json:"summary,omitempty"`
}

// Names returns the candidate names present in the shortlist, in rank order.
func (s *Shortlist) Names() []string {
	names := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		names = append(names, e.CandidateName)
	}
	return names
}
