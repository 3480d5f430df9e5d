package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/talentflow/internal/extraction"
	"github.com/rbarbosa/talentflow/internal/matching"
	"github.com/rbarbosa/talentflow/internal/phases"
	"github.com/rbarbosa/talentflow/internal/session"
	"github.com/rbarbosa/talentflow/internal/types"
)

var assessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Attach assessment documents to candidates",
	Long:  "Assessment files are classified (personality, competency, leadership) and matched to candidates by filename. Files that cannot be matched are reported for manual assignment via 'assessment assign'.",
}

var assessmentIngestCmd = &cobra.Command{
	Use:   "ingest <files...>",
	Short: "Auto-match assessment files to candidates by filename",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAssessmentIngest,
}

var assessmentAssignCmd = &cobra.Command{
	Use:   "assign <file>",
	Short: "Manually assign one assessment file to a candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssessmentAssign,
}

var (
	assessmentProjectID string
	assessmentCandidate string
	assessmentType      string
)

func init() {
	for _, cmd := range []*cobra.Command{assessmentIngestCmd, assessmentAssignCmd} {
		cmd.Flags().StringVar(&assessmentProjectID, "project", "", "Project ID (required)")
		mustMarkRequired(cmd, "project")
	}
	assessmentAssignCmd.Flags().StringVar(&assessmentCandidate, "candidate", "", "Candidate name (required)")
	assessmentAssignCmd.Flags().StringVar(&assessmentType, "type", "", "Document type: personality, competency or leadership (required)")
	mustMarkRequired(assessmentAssignCmd, "candidate", "type")

	assessmentCmd.AddCommand(assessmentIngestCmd, assessmentAssignCmd)
	rootCmd.AddCommand(assessmentCmd)
}

func runAssessmentIngest(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		if _, err := s.OpenProject(ctx, assessmentProjectID); err != nil {
			return err
		}
		pipe := s.Machine().Pipeline()

		var roster []string
		for _, c := range pipe.Candidates() {
			roster = append(roster, c.Name)
		}
		if len(roster) == 0 {
			return fmt.Errorf("project has no candidates yet")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		for _, res := range extraction.ExtractAll(ctx, extraction.NewPlain(cfg.MaxFileBytes), args, 4) {
			if res.Err != nil {
				fmt.Printf("skipped %s: %v\n", res.Filename, res.Err)
				continue
			}
			match, ok := matching.Match(res.Filename, roster)
			if !ok {
				fmt.Printf("unmatched %s: assign manually with 'assessment assign'\n", res.Filename)
				continue
			}
			setAssessment(pipe, match.Candidate, match.Type, res.Text)
			fmt.Printf("attached  %s -> %s (%s)\n", res.Filename, match.Candidate, match.Type)
		}
		return s.SyncScratch(ctx)
	})
}

func runAssessmentAssign(_ *cobra.Command, args []string) error {
	docType := matching.DocType(assessmentType)
	switch docType {
	case matching.DocPersonality, matching.DocCompetency, matching.DocLeadership:
	default:
		return fmt.Errorf("unknown assessment type %q", assessmentType)
	}

	return withSession(func(ctx context.Context, s *session.Session) error {
		if _, err := s.OpenProject(ctx, assessmentProjectID); err != nil {
			return err
		}
		pipe := s.Machine().Pipeline()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		text, err := extraction.NewPlain(cfg.MaxFileBytes).ExtractText(ctx, args[0])
		if err != nil {
			return err
		}

		setAssessment(pipe, assessmentCandidate, docType, text)
		fmt.Printf("attached %s assessment to %s\n", docType, assessmentCandidate)
		return s.SyncScratch(ctx)
	})
}

// setAssessment merges one document into the candidate's assessment set.
func setAssessment(pipe *phases.Pipeline, name string, docType matching.DocType, text string) {
	var docs types.AssessmentDocs
	if existing := pipe.AssessmentDocs(name); existing != nil {
		docs = *existing
	}
	switch docType {
	case matching.DocPersonality:
		docs.Personality = text
	case matching.DocCompetency:
		docs.Competency = text
	case matching.DocLeadership:
		docs.Leadership = text
	}
	pipe.SetAssessmentDocs(name, docs)
}
