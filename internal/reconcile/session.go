// ABOUTME: Canonical sleep-session selection for a target date.
// ABOUTME: Two-tier match (vendor day label, then end date) with fixed tie-breaks.
package reconcile

import (
	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/oura"
)

// SelectSession picks the one canonical sleep session for the target date,
// or nil when no session belongs to it. Nil is a valid "no sleep data"
// outcome, not an error.
//
// Tier 1 matches the vendor's day label against the target. Tier 2 falls
// back to sessions whose end instant lands on the target's calendar date,
// because vendors label midnight-spanning sessions inconsistently. Within
// a tier the winner is the session with the longest total sleep; ties go
// to the later bedtime end, then to the earliest original position, so
// identical input always yields the identical selection.
func SelectSession(sessions []oura.SleepSession, target models.DateKey) *oura.SleepSession {
	if s := pickLongest(sessions, func(s oura.SleepSession) bool {
		return s.Day == target.String()
	}); s != nil {
		return s
	}

	return pickLongest(sessions, func(s oura.SleepSession) bool {
		end, ok := s.BedtimeEndTime()
		return ok && models.DateKeyOf(end) == target
	})
}

func pickLongest(sessions []oura.SleepSession, match func(oura.SleepSession) bool) *oura.SleepSession {
	var best *oura.SleepSession
	for i := range sessions {
		s := &sessions[i]
		if !match(*s) {
			continue
		}
		if best == nil || longerThan(*s, *best) {
			best = s
		}
	}
	return best
}

// longerThan orders candidate over incumbent. Strict comparisons keep the
// earliest-index session when everything ties.
func longerThan(candidate, incumbent oura.SleepSession) bool {
	if candidate.TotalSleepDuration != incumbent.TotalSleepDuration {
		return candidate.TotalSleepDuration > incumbent.TotalSleepDuration
	}
	cEnd, cOK := candidate.BedtimeEndTime()
	iEnd, iOK := incumbent.BedtimeEndTime()
	if cOK && iOK {
		return cEnd.After(iEnd)
	}
	return false
}
