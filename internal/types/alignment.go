package types

// AlignmentResult is the canonical output of the alignment phase: a
// structured understanding of the role agreed with the hiring company.
type AlignmentResult struct {
	CompanyOverview  string   `json:"company_overview,omitempty"`
	RoleSummary      string   `json:"role_summary" validate:"required"`
	Responsibilities []string `json:"responsibilities" validate:"required,min=1"`
	HardRequirements []string `json:"hard_requirements" validate:"required,min=1"`
	NiceToHaves      []string `json:"nice_to_haves,omitempty"`
	SearchKeywords   []string `json:"search_keywords,omitempty"`
	CultureNotes     string   `json:"culture_notes,omitempty"`
}
