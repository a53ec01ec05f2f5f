// ABOUTME: Reads and merge-upserts for the body_composition table.
// ABOUTME: Same non-null-subset upsert contract as daily_metrics.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

// UpsertBodyComposition inserts or updates the scale row for the record's
// date, restricted to non-null columns. An empty record is skipped.
func (d *DB) UpsertBodyComposition(rec models.BodyComposition) (UpsertOutcome, error) {
	if rec.IsEmpty() {
		return OutcomeSkipped, nil
	}

	cols := []string{"collected_at"}
	args := []any{rec.CollectedAt.UTC().Format(time.RFC3339)}
	add := func(name string, v any) {
		cols = append(cols, name)
		args = append(args, v)
	}
	if rec.WeightLbs != nil {
		add("weight_lbs", *rec.WeightLbs)
	}
	if rec.FatRatio != nil {
		add("fat_ratio", *rec.FatRatio)
	}
	if rec.SystolicBP != nil {
		add("systolic_bp", *rec.SystolicBP)
	}
	if rec.DiastolicBP != nil {
		add("diastolic_bp", *rec.DiastolicBP)
	}

	if err := d.upsert("body_composition", rec.Date, cols, args); err != nil {
		return OutcomeSkipped, err
	}
	return OutcomeWritten, nil
}

const bodyColumns = `date, collected_at, weight_lbs, fat_ratio, systolic_bp, diastolic_bp`

// GetBodyComposition retrieves the scale record for a date, or ErrNotFound.
func (d *DB) GetBodyComposition(date models.DateKey) (*models.BodyComposition, error) {
	row := d.db.QueryRow(
		"SELECT "+bodyColumns+" FROM body_composition WHERE date = ?", date.String())
	rec, err := scanBodyComposition(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get body composition: %w", err)
	}
	return rec, nil
}

// ListBodyCompositions retrieves recent scale records, newest first.
func (d *DB) ListBodyCompositions(limit int) ([]*models.BodyComposition, error) {
	rows, err := d.db.Query(
		"SELECT "+bodyColumns+" FROM body_composition ORDER BY date DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list body compositions: %w", err)
	}
	defer rows.Close()

	var records []*models.BodyComposition
	for rows.Next() {
		rec, err := scanBodyComposition(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan body composition: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanBodyComposition(scan func(...any) error) (*models.BodyComposition, error) {
	var (
		date, collectedAt string
		weight            sql.NullInt64
		fatRatio          sql.NullFloat64
		systolic          sql.NullInt64
		diastolic         sql.NullInt64
	)

	if err := scan(&date, &collectedAt, &weight, &fatRatio, &systolic, &diastolic); err != nil {
		return nil, err
	}

	rec := &models.BodyComposition{Date: models.DateKey(date)}
	t, err := time.Parse(time.RFC3339, collectedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid collected_at timestamp: %w", err)
	}
	rec.CollectedAt = t

	rec.WeightLbs = nullInt(weight)
	rec.FatRatio = nullFloat(fatRatio)
	rec.SystolicBP = nullInt(systolic)
	rec.DiastolicBP = nullInt(diastolic)
	return rec, nil
}
