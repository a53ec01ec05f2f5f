// ABOUTME: Metric groups and per-run reporting types.
// ABOUTME: Every (date, group) pair resolves to written, skipped, or failed.
package collector

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/harperreed/pulse/internal/models"
)

// MetricGroup names one independently fetched and upserted family of
// metrics. A failure in one group never blocks the others.
type MetricGroup string

const (
	// GroupSleep covers sleep architecture, SpO2, and nightly vitals,
	// keyed by the date the night ends.
	GroupSleep MetricGroup = "sleep"
	// GroupActivity covers calorie totals, keyed by the date the
	// activity occurred.
	GroupActivity MetricGroup = "activity"
	// GroupCardio covers vascular age, keyed like sleep.
	GroupCardio MetricGroup = "cardio"
	// GroupBody covers smart-scale measurements.
	GroupBody MetricGroup = "body"
)

// AllGroups returns every metric group in collection order.
func AllGroups() []MetricGroup {
	return []MetricGroup{GroupSleep, GroupCardio, GroupActivity, GroupBody}
}

// ParseGroup validates a group name from user input.
func ParseGroup(s string) (MetricGroup, error) {
	for _, g := range AllGroups() {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown metric group: %s (valid: sleep, cardio, activity, body)", s)
}

// Outcome is the user-visible result for one (date, group) pair.
type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// GroupReport is the result of collecting one metric group for one date.
// Warnings carry endpoint errors that did not sink the group, such as one
// sleep endpoint failing while another returned data.
type GroupReport struct {
	Group    MetricGroup
	Date     models.DateKey
	Outcome  Outcome
	Err      error
	Warnings []error
}

// RunReport aggregates every group attempted in one run. Failures are
// collected here rather than aborting the run.
type RunReport struct {
	RunID  uuid.UUID
	Groups []GroupReport
}

// Failed reports whether any group in the run failed.
func (r RunReport) Failed() bool {
	for _, g := range r.Groups {
		if g.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}
