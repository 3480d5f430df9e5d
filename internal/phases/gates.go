package phases

import "strings"

// Dependency gates, checked before a generation call is issued.

// canGenerateEvaluation gates the interview phase: it needs a candidate name
// and document text. Alignment data is optional context, not a dependency.
func (p *Pipeline) canGenerateEvaluation(name, docText string) error {
	if strings.TrimSpace(name) == "" {
		return &GateError{Phase: "evaluation", Reason: "candidate name is required"}
	}
	if strings.TrimSpace(docText) == "" {
		return &GateError{Phase: "evaluation", Reason: "document text is required"}
	}
	return nil
}

// canGenerateShortlist gates the shortlist phase on at least one approved
// evaluation.
func (p *Pipeline) canGenerateShortlist() error {
	if len(p.EvaluatedNames()) == 0 {
		return &GateError{Phase: "shortlist", Reason: "no approved candidate evaluations"}
	}
	return nil
}

// canGenerateDecision gates the decision phase on a non-empty approved
// shortlist.
func (p *Pipeline) canGenerateDecision() error {
	sl := p.shortlist.Canonical()
	if sl == nil || len(sl.Entries) == 0 {
		return &GateError{Phase: "decision", Reason: "shortlist is empty"}
	}
	return nil
}

// canGenerateReferences gates the reference phase: the selected candidate
// must come from the union of evaluated and shortlisted names, and raw notes
// must be present.
func (p *Pipeline) canGenerateReferences(name, notes string) error {
	if strings.TrimSpace(notes) == "" {
		return &GateError{Phase: "references", Reason: "reference notes are empty"}
	}
	for _, known := range p.referenceEligibleNames() {
		if known == name {
			return nil
		}
	}
	return &GateError{Phase: "references", Reason: "candidate was never evaluated or shortlisted"}
}

// referenceEligibleNames returns the union of evaluated and shortlisted
// candidate names, preserving first-seen order.
func (p *Pipeline) referenceEligibleNames() []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	for _, name := range p.EvaluatedNames() {
		add(name)
	}
	if sl := p.shortlist.Canonical(); sl != nil {
		for _, name := range sl.Names() {
			add(name)
		}
	}
	return names
}
