// ABOUTME: Root Cobra command for pulse CLI.
// ABOUTME: Handles config load and database lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/config"
	"github.com/harperreed/pulse/internal/storage"
)

var (
	cfg    *config.Config
	store  *storage.DB
	logger *log.Logger

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Daily physiological metrics collector",
	Long: `Pulse collects daily physiological metrics from a wearable ring and a
smart scale into a local SQLite database, one row per calendar date.

WHAT IT COLLECTS:

  sleep      score, deep sleep, total hours, latency, efficiency,
             resting heart rate, HRV, SpO2, bedtime
  cardio     vascular age
  activity   total calories burned
  body       weight, body fat, blood pressure (smart scale)

QUICK START:

  $ pulse collect                       # Scheduled run: activity for
                                        # yesterday, everything else today
  $ pulse collect --date 2025-06-01     # Backfill one date
  $ pulse collect --group sleep         # Just one metric group
  $ pulse show 2025-06-01               # View a day's record
  $ pulse list                          # Recent records
  $ pulse export json -o backup.json    # Back up everything

CREDENTIALS (ENVIRONMENT):

  OURA_ACCESS_TOKEN      ready-made ring API token, or
  OURA_CLIENT_ID         + OURA_CLIENT_SECRET + OURA_REFRESH_TOKEN
  WITHINGS_CLIENT_ID     + WITHINGS_CLIENT_SECRET + WITHINGS_REFRESH_TOKEN

  Vendors rotate refresh tokens on use; pulse persists the rotated token
  locally so the next run keeps working.

MCP INTEGRATION:

  Run 'pulse mcp' to start the Model Context Protocol server for use with
  MCP-compatible AI assistants:

  {
    "mcpServers": {
      "pulse": { "command": "pulse", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Records live in SQLite at ~/.local/share/pulse/pulse.db. Rotated tokens
  and raw payload snapshots live in a staging cache alongside it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
