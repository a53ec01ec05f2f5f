// ABOUTME: Fetch-window resolution for date-keyed vendor queries.
// ABOUTME: One day of margin on each side keeps midnight-spanning sessions visible.
package reconcile

import "github.com/harperreed/pulse/internal/models"

// SourceWindow is the inclusive [Start, End] date range sent to a vendor
// query for one target date.
type SourceWindow struct {
	Start models.DateKey
	End   models.DateKey
}

// Window returns the query window for a target date. Vendors disagree on
// whether a session that crosses midnight is labeled by its start day or
// its end day, so the window extends one day on each side of the target;
// narrowing either margin has historically dropped whole nights of data.
func Window(target models.DateKey) SourceWindow {
	return SourceWindow{
		Start: target.AddDays(-1),
		End:   target.AddDays(1),
	}
}
