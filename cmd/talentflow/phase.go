package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/talentflow/internal/observability"
	"github.com/rbarbosa/talentflow/internal/phases"
	"github.com/rbarbosa/talentflow/internal/schemas"
	"github.com/rbarbosa/talentflow/internal/session"
	"github.com/rbarbosa/talentflow/internal/types"
)

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Generate, review and approve phase results",
}

var phaseGenerateCmd = &cobra.Command{
	Use:       "generate <phase>",
	Short:     "Generate a draft result for a phase",
	Long:      "Phases: alignment, evaluation, shortlist, decision, references. The draft is not visible to later phases until approved.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{schemas.Alignment, schemas.Evaluation, schemas.Shortlist, schemas.Decision, schemas.References},
	RunE:      runPhaseGenerate,
}

var phaseShowCmd = &cobra.Command{
	Use:   "show <phase>",
	Short: "Print a phase's draft and approved results",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhaseShow,
}

var phaseEditCmd = &cobra.Command{
	Use:   "edit <phase>",
	Short: "Replace a phase draft with an edited JSON file",
	Long:  "Starts an edit on the current draft and applies the JSON file as the working copy. The original draft is kept until approval.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhaseEdit,
}

var phaseApproveCmd = &cobra.Command{
	Use:   "approve <phase>",
	Short: "Approve a phase result, making it canonical",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhaseApprove,
}

var (
	phaseProjectID     string
	phaseCandidate     string
	phaseIntakeFile    string
	phaseCVFile        string
	phaseInterviewFile string
	phaseNotesFile     string
	phaseEditFile      string
	phaseShowJSON      bool
)

func init() {
	for _, cmd := range []*cobra.Command{phaseGenerateCmd, phaseShowCmd, phaseEditCmd, phaseApproveCmd} {
		cmd.Flags().StringVar(&phaseProjectID, "project", "", "Project ID (required)")
		mustMarkRequired(cmd, "project")
	}

	phaseGenerateCmd.Flags().StringVar(&phaseCandidate, "candidate", "", "Candidate name (evaluation and references)")
	phaseGenerateCmd.Flags().StringVar(&phaseIntakeFile, "intake-file", "", "Intake notes file (alignment)")
	phaseGenerateCmd.Flags().StringVar(&phaseCVFile, "cv-file", "", "Candidate CV text file (evaluation)")
	phaseGenerateCmd.Flags().StringVar(&phaseInterviewFile, "interview-file", "", "Interview transcript file (evaluation)")
	phaseGenerateCmd.Flags().StringVar(&phaseNotesFile, "notes-file", "", "Reference call notes file (references)")

	phaseShowCmd.Flags().StringVar(&phaseCandidate, "candidate", "", "Candidate name (evaluation)")
	phaseShowCmd.Flags().BoolVar(&phaseShowJSON, "json", false, "Print raw JSON instead of the formatted summary")
	phaseEditCmd.Flags().StringVar(&phaseCandidate, "candidate", "", "Candidate name (evaluation)")
	phaseEditCmd.Flags().StringVar(&phaseEditFile, "file", "", "Edited JSON file (required)")
	mustMarkRequired(phaseEditCmd, "file")
	phaseApproveCmd.Flags().StringVar(&phaseCandidate, "candidate", "", "Candidate name (evaluation)")

	phaseCmd.AddCommand(phaseGenerateCmd, phaseShowCmd, phaseEditCmd, phaseApproveCmd)
	rootCmd.AddCommand(phaseCmd)
}

func readTextFlag(path, what string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%s is required for this phase", what)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", what, err)
	}
	return string(data), nil
}

func withMachine(fn func(ctx context.Context, m *phases.Machine) error) error {
	return withProject(func(ctx context.Context, _ *session.Session, m *phases.Machine) error {
		return fn(ctx, m)
	})
}

func withProject(fn func(ctx context.Context, s *session.Session, m *phases.Machine) error) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		if _, err := s.OpenProject(ctx, phaseProjectID); err != nil {
			return err
		}
		return fn(ctx, s, s.Machine())
	})
}

func runPhaseGenerate(_ *cobra.Command, args []string) error {
	phase := args[0]
	return withProject(func(ctx context.Context, s *session.Session, m *phases.Machine) error {
		switch phase {
		case schemas.Alignment:
			intake, err := readTextFlag(phaseIntakeFile, "--intake-file")
			if err != nil {
				return err
			}
			if err := m.GenerateAlignment(ctx, intake); err != nil {
				return err
			}
		case schemas.Evaluation:
			if phaseCandidate == "" {
				return fmt.Errorf("--candidate is required for evaluation")
			}
			cv, err := readTextFlag(phaseCVFile, "--cv-file")
			if err != nil {
				return err
			}
			var interview string
			if phaseInterviewFile != "" {
				if interview, err = readTextFlag(phaseInterviewFile, "--interview-file"); err != nil {
					return err
				}
			}
			if err := m.GenerateEvaluation(ctx, phaseCandidate, cv, interview); err != nil {
				return err
			}
		case schemas.Shortlist:
			if err := m.GenerateShortlist(ctx); err != nil {
				return err
			}
		case schemas.Decision:
			if err := m.GenerateDecision(ctx); err != nil {
				return err
			}
		case schemas.References:
			if phaseCandidate == "" {
				return fmt.Errorf("--candidate is required for references")
			}
			notes, err := readTextFlag(phaseNotesFile, "--notes-file")
			if err != nil {
				return err
			}
			if err := m.GenerateReferences(ctx, phaseCandidate, notes); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown phase %q", phase)
		}
		if err := s.SyncScratch(ctx); err != nil {
			return err
		}
		fmt.Printf("Drafted %s. Review with 'phase show %s', then 'phase approve %s'.\n", phase, phase, phase)
		return nil
	})
}

func runPhaseShow(_ *cobra.Command, args []string) error {
	phase := args[0]
	return withMachine(func(_ context.Context, m *phases.Machine) error {
		pipe := m.Pipeline()
		printer := observability.NewPrinter(os.Stdout)
		switch phase {
		case schemas.Alignment:
			return printSlot(pipe.Alignment(), printer.PrintAlignment)
		case schemas.Evaluation:
			if phaseCandidate == "" {
				return fmt.Errorf("--candidate is required for evaluation")
			}
			return printSlot(pipe.Evaluation(phaseCandidate), printer.PrintEvaluation)
		case schemas.Shortlist:
			return printSlot(pipe.Shortlist(), printer.PrintShortlist)
		case schemas.Decision:
			return printSlot(pipe.Decision(), printer.PrintDecision)
		case schemas.References:
			return printSlot(pipe.References(), printer.PrintReferences)
		}
		return fmt.Errorf("unknown phase %q", phase)
	})
}

func printSlot[T any](slot *phases.Slot[T], pretty func(*T)) error {
	fmt.Printf("Status: %s\n", slot.Status())
	render := pretty
	if phaseShowJSON {
		render = func(v *T) { printJSON(v) }
	}
	if c := slot.Canonical(); c != nil {
		fmt.Println("Approved:")
		render(c)
	}
	if w := slot.Working(); w != nil {
		fmt.Println("Working copy:")
		render(w)
		return nil
	}
	if d := slot.Draft(); d != nil {
		fmt.Println("Draft:")
		render(d)
	}
	return nil
}

func printJSON(v any) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("  <unprintable: %v>\n", err)
		return
	}
	fmt.Println(string(raw))
}

func runPhaseEdit(_ *cobra.Command, args []string) error {
	phase := args[0]
	return withProject(func(ctx context.Context, s *session.Session, m *phases.Machine) error {
		raw, err := os.ReadFile(phaseEditFile)
		if err != nil {
			return fmt.Errorf("failed to read edited file: %w", err)
		}
		if err := schemas.ValidatePhase(phase, string(raw)); err != nil {
			return err
		}

		pipe := m.Pipeline()
		switch phase {
		case schemas.Alignment:
			err = applyEdit[types.AlignmentResult](pipe.Alignment(), raw)
		case schemas.Evaluation:
			if phaseCandidate == "" {
				return fmt.Errorf("--candidate is required for evaluation")
			}
			err = applyEdit[types.CandidateEvaluation](pipe.Evaluation(phaseCandidate), raw)
		case schemas.Shortlist:
			err = applyEdit[types.Shortlist](pipe.Shortlist(), raw)
		case schemas.Decision:
			err = applyEdit[types.DecisionResult](pipe.Decision(), raw)
		case schemas.References:
			err = applyEdit[types.ReferenceReport](pipe.References(), raw)
		default:
			return fmt.Errorf("unknown phase %q", phase)
		}
		if err != nil {
			return err
		}
		return s.SyncScratch(ctx)
	})
}

func applyEdit[T any](slot *phases.Slot[T], raw []byte) error {
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("failed to parse edited file: %w", err)
	}
	if slot.Status() != phases.StatusEditing {
		if _, err := slot.BeginEdit(); err != nil {
			return err
		}
	}
	if err := slot.UpdateWorking(value); err != nil {
		return err
	}
	fmt.Println("Working copy updated. Approve to commit, or the edit stays pending.")
	return nil
}

func runPhaseApprove(_ *cobra.Command, args []string) error {
	phase := args[0]
	return withProject(func(ctx context.Context, s *session.Session, m *phases.Machine) error {
		var err error
		switch phase {
		case schemas.Alignment:
			_, err = m.ApproveAlignment(ctx)
		case schemas.Evaluation:
			if phaseCandidate == "" {
				return fmt.Errorf("--candidate is required for evaluation")
			}
			_, err = m.ApproveEvaluation(ctx, phaseCandidate)
		case schemas.Shortlist:
			_, err = m.ApproveShortlist(ctx)
		case schemas.Decision:
			_, err = m.ApproveDecision(ctx)
		case schemas.References:
			_, err = m.ApproveReferences(ctx)
		default:
			return fmt.Errorf("unknown phase %q", phase)
		}
		if err != nil {
			return err
		}
		if err := s.SyncScratch(ctx); err != nil {
			return err
		}
		fmt.Printf("Approved %s.\n", phase)
		return nil
	})
}
