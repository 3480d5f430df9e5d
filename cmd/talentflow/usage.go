package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/talentflow/internal/session"
	"github.com/rbarbosa/talentflow/internal/usage"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect AI usage and cost",
}

var usageReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print usage records and estimated cost for a project",
	RunE:  runUsageReport,
}

var usageProjectID string

func init() {
	usageReportCmd.Flags().StringVar(&usageProjectID, "project", "", "Project ID (required)")
	mustMarkRequired(usageReportCmd, "project")

	usageCmd.AddCommand(usageReportCmd)
	rootCmd.AddCommand(usageCmd)
}

func runUsageReport(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		records, err := s.UsageRecords(ctx, usageProjectID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No usage recorded for this project.")
			return nil
		}

		for _, rec := range records {
			candidate := rec.Context.CandidateName
			if candidate == "" {
				candidate = "-"
			}
			fmt.Printf("%s  %-24s  %-12s  %-20s  %6d tok  $%.4f\n",
				rec.Timestamp, rec.ModelID, rec.Context.Phase, candidate,
				rec.TotalTokenCount, rec.EstimatedCost)
		}
		fmt.Printf("\nTotal: %d call(s), $%.4f estimated\n", len(records), usage.TotalCost(records))
		return nil
	})
}
