// ABOUTME: BodyComposition model for smart-scale measurements.
// ABOUTME: Date-keyed like DailyRecord, persisted to its own table.
package models

import "time"

// BodyComposition is the canonical merged scale record for one calendar date.
type BodyComposition struct {
	Date        DateKey   `json:"date" yaml:"date"`
	CollectedAt time.Time `json:"collected_at" yaml:"collected_at"`

	// WeightLbs is whole pounds, matching the scale export convention.
	WeightLbs   *int64   `json:"weight_lbs,omitempty" yaml:"weight_lbs,omitempty"`
	FatRatio    *float64 `json:"fat_ratio,omitempty" yaml:"fat_ratio,omitempty"`
	SystolicBP  *int64   `json:"systolic_bp,omitempty" yaml:"systolic_bp,omitempty"`
	DiastolicBP *int64   `json:"diastolic_bp,omitempty" yaml:"diastolic_bp,omitempty"`
}

// IsEmpty reports whether the record carries no measurements.
func (b BodyComposition) IsEmpty() bool {
	return b.WeightLbs == nil &&
		b.FatRatio == nil &&
		b.SystolicBP == nil &&
		b.DiastolicBP == nil
}
