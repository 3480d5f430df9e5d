package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/talentflow/internal/extraction"
	"github.com/rbarbosa/talentflow/internal/queue"
	"github.com/rbarbosa/talentflow/internal/session"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch-ingest candidate files",
	Long:  "Groups uploaded files by the candidate name in the filename, drafts one evaluation per candidate and leaves each draft for review. Approve drafts individually with 'phase approve evaluation --candidate <name>'.",
}

var batchIngestCmd = &cobra.Command{
	Use:   "ingest <files...>",
	Short: "Ingest files and draft evaluations for each grouped candidate",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatchIngest,
}

var (
	batchProjectID   string
	batchConcurrency int
)

func init() {
	batchIngestCmd.Flags().StringVar(&batchProjectID, "project", "", "Project ID (required)")
	batchIngestCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "Parallel file extraction limit")
	mustMarkRequired(batchIngestCmd, "project")

	batchCmd.AddCommand(batchIngestCmd)
	rootCmd.AddCommand(batchCmd)
}

func runBatchIngest(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		if _, err := s.OpenProject(ctx, batchProjectID); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		extractor := extraction.NewPlain(cfg.MaxFileBytes)

		var files []queue.File
		for _, res := range extraction.ExtractAll(ctx, extractor, args, batchConcurrency) {
			if res.Err != nil {
				fmt.Printf("skipped %s: %v\n", res.Filename, res.Err)
				continue
			}
			files = append(files, queue.File{Filename: res.Filename, Text: res.Text})
		}
		if len(files) == 0 {
			return fmt.Errorf("no readable files to ingest")
		}

		q := s.Queue()
		added, unmatched := q.Enqueue(files)
		for _, f := range unmatched {
			fmt.Printf("skipped %s: no candidate name in filename\n", f.Filename)
		}
		fmt.Printf("Queued %d candidate(s).\n", len(added))

		if err := q.Drain(ctx); err != nil {
			return err
		}

		for _, item := range q.Items() {
			switch item.Status {
			case queue.StatusSuccess:
				fmt.Printf("  drafted  %s (%d file(s))\n", item.Name, len(item.Files))
			case queue.StatusError:
				fmt.Printf("  failed   %s: %s\n", item.Name, item.Err)
			}
		}
		return s.SyncScratch(ctx)
	})
}
