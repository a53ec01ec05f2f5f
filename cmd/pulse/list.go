// ABOUTME: CLI command for listing recent daily records.
// ABOUTME: One line per date with the headline metrics.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List recent daily records",
	Long: `List recent daily records, newest first.

Each line shows: DATE  SLEEP SCORE  TOTAL SLEEP  RESTING HR  CALORIES
Absent values render as a dash.

EXAMPLES:

  pulse list           # Last 14 days
  pulse list -n 30     # Last 30 days`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := store.ListDailyRecords(listLimit)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, rec := range records {
			fmt.Printf("%s  score %s  sleep %s  hr %s  kcal %s\n",
				faint.Sprint(rec.Date),
				fmtInt(rec.SleepScore),
				fmtFloat(rec.TotalSleepHours),
				fmtInt(rec.RestingHeartRate),
				fmtInt(rec.TotalCalories))
		}
		return nil
	},
}

func fmtInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 14, "max number of results")
	rootCmd.AddCommand(listCmd)
}
