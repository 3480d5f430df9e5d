// Package observability provides formatted output utilities for reviewing
// phase results in the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/rbarbosa/talentflow/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for phase review
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func writeList(sb *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", truncate(items[i], 50)))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintAlignment outputs a human-readable summary of the alignment result.
func (p *Printer) PrintAlignment(result *types.AlignmentResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Summary:  %s\n\n", truncate(result.RoleSummary, 50)))
	writeList(&sb, "Responsibilities", result.Responsibilities, maxItemsToShow)
	writeList(&sb, "Hard Requirements", result.HardRequirements, maxItemsToShow)
	writeList(&sb, "Nice-to-haves", result.NiceToHaves, 3)

	p.printBox("ROLE ALIGNMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvaluation outputs a human-readable summary of one candidate
// evaluation.
func (p *Printer) PrintEvaluation(eval *types.CandidateEvaluation) {
	if eval == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", eval.CandidateName))
	if eval.Recommendation != "" {
		sb.WriteString(fmt.Sprintf("Recommendation: %s\n", eval.Recommendation))
	}
	sb.WriteString(fmt.Sprintf("\n%s\n\n", truncate(eval.Summary, 160)))
	writeList(&sb, "Strengths", eval.Strengths, maxItemsToShow)
	writeList(&sb, "Risks", eval.Risks, maxItemsToShow)

	p.printBox("CANDIDATE EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintShortlist outputs the ranked shortlist entries.
func (p *Printer) PrintShortlist(shortlist *types.Shortlist) {
	if shortlist == nil || len(shortlist.Entries) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Shortlisted %d candidate(s):\n\n", len(shortlist.Entries)))

	count := min(len(shortlist.Entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		entry := shortlist.Entries[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", entry.Rank, entry.CandidateName))
		sb.WriteString(fmt.Sprintf("    %s\n", truncate(entry.Rationale, 48)))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(shortlist.Entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(shortlist.Entries)-maxItemsToShow))
	}

	p.printBox("SHORTLIST", sb.String())
}

// PrintDecision outputs the decision comparison rows and recommendation.
func (p *Printer) PrintDecision(decision *types.DecisionResult) {
	if decision == nil || len(decision.Rows) == 0 {
		return
	}

	var sb strings.Builder
	for i, row := range decision.Rows {
		sb.WriteString(fmt.Sprintf("%s", row.CandidateName))
		if row.Verdict != "" {
			sb.WriteString(fmt.Sprintf("  [%s]", row.Verdict))
		}
		sb.WriteString("\n")
		if row.CompetencySummary != "" {
			sb.WriteString(fmt.Sprintf("  Competency:  %s\n", truncate(row.CompetencySummary, 40)))
		}
		if row.LeadershipSummary != "" {
			sb.WriteString(fmt.Sprintf("  Leadership:  %s\n", truncate(row.LeadershipSummary, 40)))
		}
		if row.PersonalitySummary != "" {
			sb.WriteString(fmt.Sprintf("  Personality: %s\n", truncate(row.PersonalitySummary, 40)))
		}
		if i < len(decision.Rows)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\nRecommendation: %s", truncate(decision.Recommendation, 160)))

	p.printBox("DECISION COMPARISON", sb.String())
}

// PrintReferences outputs the reference report summary.
func (p *Printer) PrintReferences(report *types.ReferenceReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", report.CandidateName))
	if report.Verdict != "" {
		sb.WriteString(fmt.Sprintf("Verdict:   %s\n", report.Verdict))
	}
	sb.WriteString(fmt.Sprintf("\n%s\n", truncate(report.Summary, 160)))

	if len(report.Checks) > 0 {
		sb.WriteString("\nReferences heard:\n")
		count := min(len(report.Checks), maxItemsToShow)
		for i := 0; i < count; i++ {
			check := report.Checks[i]
			sb.WriteString(fmt.Sprintf("  • %s", check.RefereeName))
			if check.Relationship != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", check.Relationship))
			}
			sb.WriteString("\n")
		}
	}
	writeList(&sb, "Risks", report.Risks, maxItemsToShow)

	p.printBox("REFERENCE REPORT", strings.TrimSuffix(sb.String(), "\n"))
}
