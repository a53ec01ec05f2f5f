// ABOUTME: DailyRecord model and DateKey identity for collected vitals.
// ABOUTME: All metric fields are pointer-typed; nil means "not observed".
package models

import (
	"fmt"
	"time"
)

// DateKeyLayout is the calendar-date format used as record identity.
const DateKeyLayout = "2006-01-02"

// DateKey identifies one canonical daily record by calendar date.
// It carries no time component and no timezone.
type DateKey string

// ParseDateKey validates and normalizes a YYYY-MM-DD string.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateKey(t.Format(DateKeyLayout)), nil
}

// DateKeyOf truncates an instant to its calendar date in the instant's location.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(DateKeyLayout))
}

// Time returns midnight UTC of the key's date.
func (d DateKey) Time() time.Time {
	t, _ := time.Parse(DateKeyLayout, string(d))
	return t
}

// AddDays returns the key shifted by n calendar days.
func (d DateKey) AddDays(n int) DateKey {
	return DateKeyOf(d.Time().AddDate(0, 0, n))
}

func (d DateKey) String() string {
	return string(d)
}

// DailyRecord is the canonical merged record for one calendar date.
// Every metric field is independently optional; a nil field means the
// value has never been observed, which is distinct from zero.
type DailyRecord struct {
	Date        DateKey   `json:"date" yaml:"date"`
	CollectedAt time.Time `json:"collected_at" yaml:"collected_at"`

	// Sleep architecture
	DeepSleepMinutes *int64   `json:"deep_sleep_minutes,omitempty" yaml:"deep_sleep_minutes,omitempty"`
	SleepScore       *int64   `json:"sleep_score,omitempty" yaml:"sleep_score,omitempty"`
	BedtimeStartDate *string  `json:"bedtime_start_date,omitempty" yaml:"bedtime_start_date,omitempty"`
	BedtimeStartTime *string  `json:"bedtime_start_time,omitempty" yaml:"bedtime_start_time,omitempty"`
	TotalSleepHours  *float64 `json:"total_sleep_hours,omitempty" yaml:"total_sleep_hours,omitempty"`
	LatencyMinutes   *int64   `json:"latency_minutes,omitempty" yaml:"latency_minutes,omitempty"`
	Efficiency       *int64   `json:"efficiency,omitempty" yaml:"efficiency,omitempty"`

	// Vitals
	RestingHeartRate *int64   `json:"resting_heart_rate,omitempty" yaml:"resting_heart_rate,omitempty"`
	AverageHRV       *float64 `json:"average_hrv,omitempty" yaml:"average_hrv,omitempty"`
	SpO2Avg          *float64 `json:"spo2_avg,omitempty" yaml:"spo2_avg,omitempty"`
	CardioAge        *float64 `json:"cardio_age,omitempty" yaml:"cardio_age,omitempty"`

	// Activity
	TotalCalories *int64 `json:"total_calories,omitempty" yaml:"total_calories,omitempty"`
}

// IsEmpty reports whether the record carries no metric values at all.
// CollectedAt is bookkeeping, not data, and is ignored.
func (r DailyRecord) IsEmpty() bool {
	return r.DeepSleepMinutes == nil &&
		r.SleepScore == nil &&
		r.BedtimeStartDate == nil &&
		r.BedtimeStartTime == nil &&
		r.TotalSleepHours == nil &&
		r.LatencyMinutes == nil &&
		r.Efficiency == nil &&
		r.RestingHeartRate == nil &&
		r.AverageHRV == nil &&
		r.SpO2Avg == nil &&
		r.CardioAge == nil &&
		r.TotalCalories == nil
}

// Ptr returns a pointer to v, for building records with literal values.
func Ptr[T any](v T) *T {
	return &v
}
