// Package main provides the talentflow CLI: a multi-phase recruitment
// pipeline where every AI-generated result passes human approval.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rbarbosa/talentflow/internal/config"
	"github.com/rbarbosa/talentflow/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "talentflow",
	Short: "Human-in-the-loop recruitment pipeline",
	Long:  "talentflow runs executive-search projects through five phases (alignment, interviews, shortlist, decision, references); every AI draft requires explicit approval before later phases can build on it.",
}

var (
	flagConfig  string
	flagUserID  string
	flagAPIKey  string
	flagDBURL   string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVarP(&flagUserID, "user-id", "u", "", "User ID owning the projects")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagDBURL, "db-url", "", "Database URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed debug information")
}

// loadConfig merges flags, an optional config file and environment fallbacks
// into the effective configuration. Flags win over the file, the file wins
// over the environment.
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{
		UserID:      flagUserID,
		APIKey:      flagAPIKey,
		DatabaseURL: flagDBURL,
		Verbose:     flagVerbose,
	}

	if flagConfig != "" {
		fileCfg, err := config.LoadConfig(flagConfig)
		if err != nil {
			return nil, err
		}
		merged := cfg.MergeWithDefaults(*fileCfg)
		merged.Verbose = cfg.Verbose || fileCfg.Verbose
		cfg = &merged
	}

	env := cfg.MergeWithDefaults(config.Config{
		UserID:      os.Getenv("TALENTFLOW_USER_ID"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	})
	cfg = &env

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("user id not set (use --user-id or TALENTFLOW_USER_ID)")
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Verbose)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
