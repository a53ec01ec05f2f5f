// ABOUTME: Wire types for the Oura v2 usercollection API.
// ABOUTME: Optional measurement fields decode to nil rather than zero.
package oura

import (
	"time"
)

// envelope is the common {"data": [...]} response shape.
type envelope[T any] struct {
	Data []T `json:"data"`
}

// DailySleep is one daily_sleep summary record.
type DailySleep struct {
	Day   string `json:"day"`
	Score *int64 `json:"score"`
}

// SleepSession is one record from the sleep endpoint: a contiguous
// bedtime-to-wake interval. Durations are seconds. A night can produce
// several sessions, possibly overlapping, possibly spanning midnight.
type SleepSession struct {
	Day                string   `json:"day"`
	BedtimeStart       string   `json:"bedtime_start"`
	BedtimeEnd         string   `json:"bedtime_end"`
	TotalSleepDuration int64    `json:"total_sleep_duration"`
	DeepSleepDuration  int64    `json:"deep_sleep_duration"`
	Latency            *int64   `json:"latency"`
	LowestHeartRate    *int64   `json:"lowest_heart_rate"`
	AverageHRV         *float64 `json:"average_hrv"`
	Efficiency         *int64   `json:"efficiency"`
}

// BedtimeStartTime parses the session start instant. The vendor emits
// RFC 3339 with offset; a bare Z suffix also appears in older exports.
func (s SleepSession) BedtimeStartTime() (time.Time, bool) {
	return parseInstant(s.BedtimeStart)
}

// BedtimeEndTime parses the session end instant.
func (s SleepSession) BedtimeEndTime() (time.Time, bool) {
	return parseInstant(s.BedtimeEnd)
}

func parseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DailySpO2 is one daily_spo2 record. The average lives one level down.
type DailySpO2 struct {
	Day            string `json:"day"`
	SpO2Percentage *struct {
		Average *float64 `json:"average"`
	} `json:"spo2_percentage"`
}

// Average returns the nested average, nil when the vendor omitted it.
func (d DailySpO2) Average() *float64 {
	if d.SpO2Percentage == nil {
		return nil
	}
	return d.SpO2Percentage.Average
}

// DailyActivity is one daily_activity record.
type DailyActivity struct {
	Day           string `json:"day"`
	TotalCalories *int64 `json:"total_calories"`
}

// DailyCardioAge is one daily_cardiovascular_age record.
type DailyCardioAge struct {
	Day         string   `json:"day"`
	VascularAge *float64 `json:"vascular_age"`
}
