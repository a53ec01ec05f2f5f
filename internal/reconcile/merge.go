// ABOUTME: Null-preserving field merge for canonical daily records.
// ABOUTME: Non-null incoming wins; null incoming never erases a known value.
package reconcile

import (
	"time"

	"github.com/harperreed/pulse/internal/models"
)

// Merge combines an existing record with freshly fetched fields for the
// same date. Per field: a non-null incoming value replaces the existing
// one; a null incoming value leaves the existing one untouched. The system
// issues several independent merges per date over time (sleep, activity,
// vitals), each carrying only the fields it fetched, so anything outside a
// call's scope must survive it. CollectedAt is always stamped with the
// merge instant.
//
// Values must arrive already normalized (seconds converted to minutes or
// hours, bedtime split into date and time); Merge only copies.
func Merge(existing *models.DailyRecord, incoming models.DailyRecord, at time.Time) models.DailyRecord {
	out := incoming
	if existing != nil {
		out.DeepSleepMinutes = pick(incoming.DeepSleepMinutes, existing.DeepSleepMinutes)
		out.SleepScore = pick(incoming.SleepScore, existing.SleepScore)
		out.BedtimeStartDate = pick(incoming.BedtimeStartDate, existing.BedtimeStartDate)
		out.BedtimeStartTime = pick(incoming.BedtimeStartTime, existing.BedtimeStartTime)
		out.TotalSleepHours = pick(incoming.TotalSleepHours, existing.TotalSleepHours)
		out.LatencyMinutes = pick(incoming.LatencyMinutes, existing.LatencyMinutes)
		out.Efficiency = pick(incoming.Efficiency, existing.Efficiency)
		out.RestingHeartRate = pick(incoming.RestingHeartRate, existing.RestingHeartRate)
		out.AverageHRV = pick(incoming.AverageHRV, existing.AverageHRV)
		out.SpO2Avg = pick(incoming.SpO2Avg, existing.SpO2Avg)
		out.CardioAge = pick(incoming.CardioAge, existing.CardioAge)
		out.TotalCalories = pick(incoming.TotalCalories, existing.TotalCalories)
	}
	out.CollectedAt = at
	return out
}

// MergeBody applies the same policy to scale records.
func MergeBody(existing *models.BodyComposition, incoming models.BodyComposition, at time.Time) models.BodyComposition {
	out := incoming
	if existing != nil {
		out.WeightLbs = pick(incoming.WeightLbs, existing.WeightLbs)
		out.FatRatio = pick(incoming.FatRatio, existing.FatRatio)
		out.SystolicBP = pick(incoming.SystolicBP, existing.SystolicBP)
		out.DiastolicBP = pick(incoming.DiastolicBP, existing.DiastolicBP)
	}
	out.CollectedAt = at
	return out
}

func pick[T any](incoming, existing *T) *T {
	if incoming != nil {
		return incoming
	}
	return existing
}
