package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"issue-lifecycle/internal/config"
	"issue-lifecycle/internal/jira"
	"issue-lifecycle/internal/lifecycle"
	"issue-lifecycle/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose   bool
	inputPath string
	cfg       *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "issue-lifecycle",
	Short: "Lifecycle analytics for closed Jira issues",
	Long: `Reads a Jira issue export with changelogs and reports how long issues stayed open,
how long they spent in each status, created/closed volume over time, and how issues
distribute across users and priorities.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if inputPath != "" {
			cfg.IssuesFile = inputPath
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("issue-lifecycle starting")
		return nil
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "Jira export file (search JSON, JSON array or JSON Lines); overrides ISSUES_FILE")
	rootCmd.AddCommand(reportCmd, serveCmd)
}

// loadRecords ingests the configured export. Issues that cannot be mapped
// are returned as exclusions; only an unreadable file is an error.
func loadRecords() ([]lifecycle.IssueRecord, []lifecycle.Exclusion, error) {
	if cfg.IssuesFile == "" {
		return nil, nil, fmt.Errorf("no issues file: pass --input or set ISSUES_FILE")
	}
	return jira.LoadFile(cfg.IssuesFile)
}
