// ABOUTME: CLI command for running a collection pass.
// ABOUTME: Wires vendor clients from credentials and prints a per-group report.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/collector"
	"github.com/harperreed/pulse/internal/config"
	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/oura"
	"github.com/harperreed/pulse/internal/staging"
	"github.com/harperreed/pulse/internal/withings"
)

var (
	collectDate   string
	collectGroups []string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch vendor data and merge it into the store",
	Long: `Fetch metrics from the configured vendors and merge them into the
local database.

Without --date this is a scheduled run: activity is collected for
yesterday (the day that just finished) and sleep, cardio, and body for
today (the night that just ended). With --date every requested group
targets that date.

Each (date, group) pair is reported as one of:

  written   new values were merged into the row for that date
  skipped   the vendor had no data for that date (not an error)
  failed    a fetch or store error; other groups still run

A value already in the database is never overwritten by an absent one:
re-collecting a date only ever fills in or updates fields the vendor
actually returned.

EXAMPLES:

  pulse collect                            # Scheduled daily run
  pulse collect --date 2025-06-01          # Backfill one date
  pulse collect --date 2025-06-01 -g sleep # One group for one date
  pulse collect -g body                    # Just the scale, today`,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.LoadCredentials()
		if err != nil {
			return err
		}
		if !creds.HasOura() && !creds.HasWithings() {
			return errors.New("no vendor credentials set (see 'pulse --help')")
		}

		var groups []collector.MetricGroup
		for _, name := range collectGroups {
			g, err := collector.ParseGroup(name)
			if err != nil {
				return err
			}
			groups = append(groups, g)
		}

		cache, err := staging.Open(cfg.StagingDir())
		if err != nil {
			logger.Warn("staging cache unavailable, token rotation will not persist", "err", err)
			cache = nil
		} else {
			defer cache.Close()
		}

		col := buildCollector(creds, cache)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// --date wins; TARGET_DATE covers cron-style invocations that
		// cannot pass flags.
		dateArg := collectDate
		if dateArg == "" {
			dateArg = os.Getenv("TARGET_DATE")
		}

		var report collector.RunReport
		if dateArg == "" && len(groups) == 0 {
			report = col.CollectScheduled(ctx)
		} else {
			target := models.DateKeyOf(time.Now())
			if dateArg != "" {
				target, err = models.ParseDateKey(dateArg)
				if err != nil {
					return err
				}
			}
			report = col.CollectDate(ctx, target, groups)
		}

		printReport(report)
		if report.Failed() {
			return errors.New("collection finished with failures")
		}
		return nil
	},
}

// buildCollector assembles vendor clients from credentials. A rotated
// refresh token staged by an earlier run takes precedence over the one in
// the environment, which may already be stale.
func buildCollector(creds *config.Credentials, cache *staging.Cache) *collector.Collector {
	var ouraClient *oura.Client
	if creds.HasOura() {
		var tokens oura.TokenSource
		if creds.OuraAccessToken != "" {
			tokens = oura.StaticToken(creds.OuraAccessToken)
		} else {
			src := oura.NewRefreshTokenSource("", creds.OuraClientID, creds.OuraClientSecret,
				refreshToken(cache, "oura", creds.OuraRefreshToken))
			src.OnRotate = stashToken(cache, "oura")
			tokens = src
		}
		ouraClient = oura.NewClient(cfg.OuraBaseURL, tokens)
	}

	var withingsClient *withings.Client
	if creds.HasWithings() {
		src := withings.NewRefreshTokenSource("", creds.WithingsClientID, creds.WithingsClientSecret,
			refreshToken(cache, "withings", creds.WithingsRefreshToken))
		src.OnRotate = stashToken(cache, "withings")
		withingsClient = withings.NewClient(cfg.WithingsBaseURL, src)
	}

	return collector.New(ouraClient, withingsClient, store, cache, logger)
}

func refreshToken(cache *staging.Cache, vendor, fromEnv string) string {
	if cache == nil {
		return fromEnv
	}
	if staged, err := cache.RefreshToken(vendor); err == nil && staged != "" {
		return staged
	}
	return fromEnv
}

func stashToken(cache *staging.Cache, vendor string) func(string) {
	return func(token string) {
		if cache == nil {
			return
		}
		if err := cache.SetRefreshToken(vendor, token); err != nil {
			logger.Warn("failed to persist rotated refresh token", "vendor", vendor, "err", err)
		}
	}
}

func printReport(report collector.RunReport) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	for _, g := range report.Groups {
		label := fmt.Sprintf("%-10s %s", g.Group, g.Date)
		switch g.Outcome {
		case collector.OutcomeWritten:
			green.Printf("✓ %s written\n", label)
		case collector.OutcomeSkipped:
			faint.Printf("- %s no data\n", label)
		case collector.OutcomeFailed:
			red.Printf("✗ %s failed: %v\n", label, g.Err)
		}
		for _, w := range g.Warnings {
			yellow.Printf("  ! partial: %v\n", w)
		}
	}
}

func init() {
	collectCmd.Flags().StringVarP(&collectDate, "date", "d", "", "target date (YYYY-MM-DD, default: scheduled run)")
	collectCmd.Flags().StringSliceVarP(&collectGroups, "group", "g", nil, "metric groups to collect (sleep, cardio, activity, body)")
	rootCmd.AddCommand(collectCmd)
}
