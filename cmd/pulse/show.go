// ABOUTME: CLI command for showing one day's records.
// ABOUTME: Prints daily metrics and body composition for a date.
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show records for a date",
	Long: `Show the daily metrics record and body composition for a date.
Defaults to today when no date is given.

EXAMPLES:

  pulse show                  # Today's record
  pulse show 2025-06-01       # A specific date`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := models.DateKeyOf(time.Now())
		if len(args) == 1 {
			var err error
			date, err = models.ParseDateKey(args[0])
			if err != nil {
				return err
			}
		}

		rec, err := store.GetDailyRecord(date)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to get daily record: %w", err)
		}
		body, berr := store.GetBodyComposition(date)
		if berr != nil && !errors.Is(berr, storage.ErrNotFound) {
			return fmt.Errorf("failed to get body composition: %w", berr)
		}

		if rec == nil && body == nil {
			fmt.Printf("No records for %s.\n", date)
			return nil
		}

		bold := color.New(color.Bold)
		bold.Printf("%s\n", date)
		if rec != nil {
			printDailyRecord(rec)
		}
		if body != nil {
			printBody(body)
		}
		return nil
	},
}

func printDailyRecord(rec *models.DailyRecord) {
	faint := color.New(color.Faint)

	printInt("sleep score", rec.SleepScore, "")
	printFloat("total sleep", rec.TotalSleepHours, "h")
	printInt("deep sleep", rec.DeepSleepMinutes, "min")
	printInt("latency", rec.LatencyMinutes, "min")
	printInt("efficiency", rec.Efficiency, "%")
	printInt("resting HR", rec.RestingHeartRate, "bpm")
	printFloat("avg HRV", rec.AverageHRV, "ms")
	printFloat("SpO2", rec.SpO2Avg, "%")
	printFloat("cardio age", rec.CardioAge, "y")
	printInt("calories", rec.TotalCalories, "kcal")
	if rec.BedtimeStartDate != nil && rec.BedtimeStartTime != nil {
		fmt.Printf("  %-14s %s %s\n", "bedtime", *rec.BedtimeStartDate, *rec.BedtimeStartTime)
	}
	faint.Printf("  collected %s\n", rec.CollectedAt.Local().Format("2006-01-02 15:04"))
}

func printBody(body *models.BodyComposition) {
	printInt("weight", body.WeightLbs, "lbs")
	printFloat("body fat", body.FatRatio, "%")
	if body.SystolicBP != nil && body.DiastolicBP != nil {
		fmt.Printf("  %-14s %d/%d mmHg\n", "blood pressure", *body.SystolicBP, *body.DiastolicBP)
	}
}

func printInt(label string, v *int64, unit string) {
	if v == nil {
		return
	}
	fmt.Printf("  %-14s %d %s\n", label, *v, unit)
}

func printFloat(label string, v *float64, unit string) {
	if v == nil {
		return
	}
	fmt.Printf("  %-14s %.1f %s\n", label, *v, unit)
}

func init() {
	rootCmd.AddCommand(showCmd)
}
