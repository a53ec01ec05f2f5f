// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/collector"
	"github.com/harperreed/pulse/internal/config"
	"github.com/harperreed/pulse/internal/mcp"
	"github.com/harperreed/pulse/internal/staging"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant
integration. The server communicates via stdin/stdout.

AVAILABLE TOOLS:

  get_daily_record      Get the record for a date
  list_daily_records    List recent records
  get_body_composition  Get scale data for a date
  collect_date          Fetch and merge vendor data for a date

AVAILABLE RESOURCES:

  pulse://recent   Last 14 days of records
  pulse://latest   Most recent record of each kind

The collect_date tool needs vendor credentials in the environment; the
read-only tools work without them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var col *collector.Collector
		creds, err := config.LoadCredentials()
		if err != nil {
			return err
		}
		if creds.HasOura() || creds.HasWithings() {
			cache, err := staging.Open(cfg.StagingDir())
			if err != nil {
				logger.Warn("staging cache unavailable", "err", err)
				cache = nil
			} else {
				defer cache.Close()
			}
			col = buildCollector(creds, cache)
		}

		server, err := mcp.NewServer(store, col)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
