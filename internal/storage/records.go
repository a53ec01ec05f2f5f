// ABOUTME: Date-keyed reads and merge-upserts for daily_metrics.
// ABOUTME: Upserts touch only the non-null column subset; values are always bound.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

// ErrNotFound is returned when no record exists for a date.
var ErrNotFound = errors.New("record not found")

// UpsertOutcome distinguishes a real write from a deliberate no-op.
type UpsertOutcome int

const (
	// OutcomeSkipped means the record carried no values and nothing was
	// written. An all-null row must never reach the store.
	OutcomeSkipped UpsertOutcome = iota
	// OutcomeWritten means the row was inserted or its columns updated.
	OutcomeWritten
)

func (o UpsertOutcome) String() string {
	if o == OutcomeWritten {
		return "written"
	}
	return "skipped"
}

// UpsertDailyRecord inserts or updates the row for the record's date.
// Only columns with non-null values are written; on conflict the update is
// restricted to that same subset, so a column another run filled in stays
// intact even when this record doesn't carry it. This mirrors the in-memory
// merge policy on the store side: two process invocations minutes apart
// share no memory, and the conflict clause is what keeps them from
// clobbering each other.
func (d *DB) UpsertDailyRecord(rec models.DailyRecord) (UpsertOutcome, error) {
	if rec.IsEmpty() {
		return OutcomeSkipped, nil
	}

	cols := []string{"collected_at"}
	args := []any{rec.CollectedAt.UTC().Format(time.RFC3339)}
	add := func(name string, v any) {
		cols = append(cols, name)
		args = append(args, v)
	}
	if rec.DeepSleepMinutes != nil {
		add("deep_sleep_minutes", *rec.DeepSleepMinutes)
	}
	if rec.SleepScore != nil {
		add("sleep_score", *rec.SleepScore)
	}
	if rec.BedtimeStartDate != nil {
		add("bedtime_start_date", *rec.BedtimeStartDate)
	}
	if rec.BedtimeStartTime != nil {
		add("bedtime_start_time", *rec.BedtimeStartTime)
	}
	if rec.TotalSleepHours != nil {
		add("total_sleep_hours", *rec.TotalSleepHours)
	}
	if rec.LatencyMinutes != nil {
		add("latency_minutes", *rec.LatencyMinutes)
	}
	if rec.Efficiency != nil {
		add("efficiency", *rec.Efficiency)
	}
	if rec.RestingHeartRate != nil {
		add("resting_heart_rate", *rec.RestingHeartRate)
	}
	if rec.AverageHRV != nil {
		add("average_hrv", *rec.AverageHRV)
	}
	if rec.SpO2Avg != nil {
		add("spo2_avg", *rec.SpO2Avg)
	}
	if rec.CardioAge != nil {
		add("cardio_age", *rec.CardioAge)
	}
	if rec.TotalCalories != nil {
		add("total_calories", *rec.TotalCalories)
	}

	if err := d.upsert("daily_metrics", rec.Date, cols, args); err != nil {
		return OutcomeSkipped, err
	}
	return OutcomeWritten, nil
}

// upsert issues the parameterized insert-or-update for one date-keyed row.
// Column names come from fixed lists above, never from input; every value
// travels as a bound parameter.
func (d *DB) upsert(table string, date models.DateKey, cols []string, args []any) error {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (date")
	for _, c := range cols {
		b.WriteString(", ")
		b.WriteString(c)
	}
	b.WriteString(") VALUES (?")
	b.WriteString(strings.Repeat(", ?", len(cols)))
	b.WriteString(") ON CONFLICT(date) DO UPDATE SET ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
		b.WriteString(" = excluded.")
		b.WriteString(c)
	}

	params := append([]any{date.String()}, args...)
	if _, err := d.db.Exec(b.String(), params...); err != nil {
		return fmt.Errorf("upsert %s for %s: %w", table, date, err)
	}
	return nil
}

const dailyColumns = `date, collected_at, deep_sleep_minutes, sleep_score,
	bedtime_start_date, bedtime_start_time, total_sleep_hours,
	latency_minutes, efficiency, resting_heart_rate, average_hrv,
	spo2_avg, cardio_age, total_calories`

// GetDailyRecord retrieves the record for a date, or ErrNotFound.
func (d *DB) GetDailyRecord(date models.DateKey) (*models.DailyRecord, error) {
	row := d.db.QueryRow(
		"SELECT "+dailyColumns+" FROM daily_metrics WHERE date = ?", date.String())
	rec, err := scanDailyRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get daily record: %w", err)
	}
	return rec, nil
}

// ListDailyRecords retrieves the most recent records by date, newest first.
func (d *DB) ListDailyRecords(limit int) ([]*models.DailyRecord, error) {
	rows, err := d.db.Query(
		"SELECT "+dailyColumns+" FROM daily_metrics ORDER BY date DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list daily records: %w", err)
	}
	defer rows.Close()

	var records []*models.DailyRecord
	for rows.Next() {
		rec, err := scanDailyRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan daily record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanDailyRecord(scan func(...any) error) (*models.DailyRecord, error) {
	var (
		date, collectedAt string
		deepSleep         sql.NullInt64
		score             sql.NullInt64
		bedDate, bedTime  sql.NullString
		totalHours        sql.NullFloat64
		latency           sql.NullInt64
		efficiency        sql.NullInt64
		restingHR         sql.NullInt64
		hrv               sql.NullFloat64
		spo2              sql.NullFloat64
		cardioAge         sql.NullFloat64
		calories          sql.NullInt64
	)

	if err := scan(&date, &collectedAt, &deepSleep, &score, &bedDate, &bedTime,
		&totalHours, &latency, &efficiency, &restingHR, &hrv, &spo2,
		&cardioAge, &calories); err != nil {
		return nil, err
	}

	rec := &models.DailyRecord{Date: models.DateKey(date)}
	t, err := time.Parse(time.RFC3339, collectedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid collected_at timestamp: %w", err)
	}
	rec.CollectedAt = t

	rec.DeepSleepMinutes = nullInt(deepSleep)
	rec.SleepScore = nullInt(score)
	rec.BedtimeStartDate = nullString(bedDate)
	rec.BedtimeStartTime = nullString(bedTime)
	rec.TotalSleepHours = nullFloat(totalHours)
	rec.LatencyMinutes = nullInt(latency)
	rec.Efficiency = nullInt(efficiency)
	rec.RestingHeartRate = nullInt(restingHR)
	rec.AverageHRV = nullFloat(hrv)
	rec.SpO2Avg = nullFloat(spo2)
	rec.CardioAge = nullFloat(cardioAge)
	rec.TotalCalories = nullInt(calories)
	return rec, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
