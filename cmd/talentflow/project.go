package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/talentflow/internal/session"
	"github.com/rbarbosa/talentflow/internal/types"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage recruitment projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new recruitment project",
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List this user's projects",
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a project's metadata and phase progress",
	RunE:  runProjectShow,
}

var projectStatusCmd = &cobra.Command{
	Use:   "set-status",
	Short: "Change a project's lifecycle status",
	Long:  "Valid statuses: active, paused, completed, archived. Transitions are user-driven and never inferred from pipeline progress.",
	RunE:  runProjectStatus,
}

var projectFunnelCmd = &cobra.Command{
	Use:   "set-funnel",
	Short: "Update the mapped/approached funnel counters",
	RunE:  runProjectFunnel,
}

var (
	projectCompany    string
	projectRole       string
	projectID         string
	projectStatus     string
	projectMapped     int
	projectApproached int
)

func init() {
	projectCreateCmd.Flags().StringVar(&projectCompany, "company", "", "Hiring company name (required)")
	projectCreateCmd.Flags().StringVar(&projectRole, "role", "", "Role being hired for (required)")
	mustMarkRequired(projectCreateCmd, "company", "role")

	projectShowCmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	mustMarkRequired(projectShowCmd, "project")

	projectStatusCmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	projectStatusCmd.Flags().StringVar(&projectStatus, "status", "", "New status (required)")
	mustMarkRequired(projectStatusCmd, "project", "status")

	projectFunnelCmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	projectFunnelCmd.Flags().IntVar(&projectMapped, "mapped", 0, "Candidates mapped")
	projectFunnelCmd.Flags().IntVar(&projectApproached, "approached", 0, "Candidates approached")
	mustMarkRequired(projectFunnelCmd, "project")

	projectCmd.AddCommand(projectCreateCmd, projectListCmd, projectShowCmd, projectStatusCmd, projectFunnelCmd)
	rootCmd.AddCommand(projectCmd)
}

func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
}

// withSession builds a session, runs fn and tears everything down.
func withSession(fn func(ctx context.Context, s *session.Session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	s, err := session.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}

func runProjectCreate(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		project, err := s.CreateProject(ctx, projectCompany, projectRole)
		if err != nil {
			return err
		}
		fmt.Printf("Created project %s (%s — %s)\n", project.ID, project.CompanyName, project.RoleName)
		return nil
	})
}

func runProjectList(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		projects, err := s.ListProjects(ctx)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects.")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("%s  %-10s  %s — %s  (mapped %d, approached %d)\n",
				p.ID, p.Status, p.CompanyName, p.RoleName, p.Mapped, p.Approached)
		}
		return nil
	})
}

func runProjectShow(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		project, err := s.OpenProject(ctx, projectID)
		if err != nil {
			return err
		}

		fmt.Printf("%s — %s\n", project.CompanyName, project.RoleName)
		fmt.Printf("ID:        %s\n", project.ID)
		fmt.Printf("Status:    %s\n", project.Status)
		fmt.Printf("Funnel:    mapped %d, approached %d\n", project.Mapped, project.Approached)
		fmt.Printf("Updated:   %s\n\n", project.UpdatedAt.Format("2006-01-02 15:04"))

		pipe := s.Machine().Pipeline()
		fmt.Printf("alignment:  %s\n", pipe.Alignment().Status())
		for _, c := range pipe.Candidates() {
			fmt.Printf("evaluation: %-24s %s\n", c.Name, pipe.Evaluation(c.Name).Status())
		}
		fmt.Printf("shortlist:  %s\n", pipe.Shortlist().Status())
		fmt.Printf("decision:   %s\n", pipe.Decision().Status())
		fmt.Printf("references: %s\n", pipe.References().Status())
		return nil
	})
}

func runProjectStatus(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		project, err := s.SetProjectStatus(ctx, projectID, types.ProjectStatus(projectStatus))
		if err != nil {
			return err
		}
		fmt.Printf("Project %s is now %s\n", project.ID, project.Status)
		return nil
	})
}

func runProjectFunnel(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		project, err := s.SetFunnel(ctx, projectID, projectMapped, projectApproached)
		if err != nil {
			return err
		}
		fmt.Printf("Project %s funnel: mapped %d, approached %d\n",
			project.ID, project.Mapped, project.Approached)
		return nil
	})
}
