package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarbosa/talentflow/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Append to or show a project's chat history",
}

var chatAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a message to the chat history",
	RunE:  runChatAdd,
}

var chatShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the chat history",
	RunE:  runChatShow,
}

var (
	chatProjectID string
	chatRole      string
	chatMessage   string
)

func init() {
	for _, cmd := range []*cobra.Command{chatAddCmd, chatShowCmd} {
		cmd.Flags().StringVar(&chatProjectID, "project", "", "Project ID (required)")
		mustMarkRequired(cmd, "project")
	}
	chatAddCmd.Flags().StringVar(&chatRole, "role", "user", "Message role")
	chatAddCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Message content (required)")
	mustMarkRequired(chatAddCmd, "message")

	chatCmd.AddCommand(chatAddCmd, chatShowCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatAdd(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		if _, err := s.OpenProject(ctx, chatProjectID); err != nil {
			return err
		}
		return s.AppendChat(ctx, chatRole, chatMessage)
	})
}

func runChatShow(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, s *session.Session) error {
		if _, err := s.OpenProject(ctx, chatProjectID); err != nil {
			return err
		}
		history := s.Machine().Pipeline().ChatHistory
		if len(history) == 0 {
			fmt.Println("No chat history.")
			return nil
		}
		for _, msg := range history {
			fmt.Printf("[%s] %s: %s\n", msg.SentAt, msg.Role, msg.Content)
		}
		return nil
	})
}
