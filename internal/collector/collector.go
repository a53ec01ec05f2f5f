// ABOUTME: Orchestrates vendor fetches, reconciliation, and upserts per run.
// ABOUTME: Groups fail independently; merges for one date run sequentially.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/oura"
	"github.com/harperreed/pulse/internal/reconcile"
	"github.com/harperreed/pulse/internal/staging"
	"github.com/harperreed/pulse/internal/storage"
	"github.com/harperreed/pulse/internal/withings"
)

// Collector runs the fetch-reconcile-upsert pipeline. All merges happen on
// the calling goroutine, so two merges for the same date can never race
// within a run; across runs the store's conflict clause is the arbiter.
type Collector struct {
	oura     *oura.Client
	withings *withings.Client
	store    *storage.DB
	cache    *staging.Cache
	log      *log.Logger
	now      func() time.Time
}

// New creates a Collector. cache may be nil to disable payload snapshots;
// withings may be nil when scale credentials are not configured.
func New(ouraClient *oura.Client, withingsClient *withings.Client, store *storage.DB, cache *staging.Cache, logger *log.Logger) *Collector {
	return &Collector{
		oura:     ouraClient,
		withings: withingsClient,
		store:    store,
		cache:    cache,
		log:      logger,
		now:      time.Now,
	}
}

// CollectScheduled runs the default daily collection: sleep, cardio, and
// body for today (the night that just ended), activity for yesterday (the
// day that just finished).
func (c *Collector) CollectScheduled(ctx context.Context) RunReport {
	today := models.DateKeyOf(c.now())
	yesterday := today.AddDays(-1)

	report := RunReport{RunID: uuid.New()}
	logger := c.log.With("run", shortID(report.RunID))

	for _, task := range []struct {
		group MetricGroup
		date  models.DateKey
	}{
		{GroupActivity, yesterday},
		{GroupSleep, today},
		{GroupCardio, today},
		{GroupBody, today},
	} {
		report.Groups = append(report.Groups, c.collect(ctx, logger, task.group, task.date))
	}
	return report
}

// CollectDate collects the given groups (all when empty) for one date.
func (c *Collector) CollectDate(ctx context.Context, date models.DateKey, groups []MetricGroup) RunReport {
	if len(groups) == 0 {
		groups = AllGroups()
	}

	report := RunReport{RunID: uuid.New()}
	logger := c.log.With("run", shortID(report.RunID))
	for _, g := range groups {
		report.Groups = append(report.Groups, c.collect(ctx, logger, g, date))
	}
	return report
}

func (c *Collector) collect(ctx context.Context, logger *log.Logger, group MetricGroup, date models.DateKey) GroupReport {
	logger = logger.With("group", string(group), "date", date.String())

	if group == GroupBody {
		return c.collectBody(ctx, logger, date)
	}

	if c.oura == nil {
		logger.Info("ring not configured, skipping")
		return GroupReport{Group: group, Date: date, Outcome: OutcomeSkipped}
	}

	var res reconcile.Result[models.DailyRecord]
	var warnings []error
	switch group {
	case GroupSleep:
		res, warnings = c.fetchSleep(ctx, logger, date)
	case GroupActivity:
		res = c.fetchActivity(ctx, date)
	case GroupCardio:
		res = c.fetchCardio(ctx, date)
	default:
		res = reconcile.Failed[models.DailyRecord](fmt.Errorf("unknown group %q", group))
	}

	switch res.Status {
	case reconcile.StatusError:
		logger.Warn("fetch failed", "err", res.Err)
		return GroupReport{Group: group, Date: date, Outcome: OutcomeFailed, Err: res.Err}
	case reconcile.StatusMissing:
		logger.Info("no data for date")
		return GroupReport{Group: group, Date: date, Outcome: OutcomeSkipped}
	}

	c.stash(logger, group, date, res.Value)

	existing, err := c.store.GetDailyRecord(date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("read existing record failed", "err", err)
		return GroupReport{Group: group, Date: date, Outcome: OutcomeFailed, Err: err}
	}

	merged := reconcile.Merge(existing, res.Value, c.now())
	outcome, err := c.store.UpsertDailyRecord(merged)
	if err != nil {
		logger.Warn("upsert failed", "err", err)
		return GroupReport{Group: group, Date: date, Outcome: OutcomeFailed, Err: err}
	}

	logger.Info("collected", "outcome", outcome.String())
	return GroupReport{Group: group, Date: date, Outcome: toOutcome(outcome), Warnings: warnings}
}

func (c *Collector) collectBody(ctx context.Context, logger *log.Logger, date models.DateKey) GroupReport {
	if c.withings == nil {
		logger.Info("scale not configured, skipping")
		return GroupReport{Group: GroupBody, Date: date, Outcome: OutcomeSkipped}
	}

	fetched, err := c.withings.BodyComposition(ctx, date)
	if err != nil {
		logger.Warn("fetch failed", "err", err)
		return GroupReport{Group: GroupBody, Date: date, Outcome: OutcomeFailed, Err: err}
	}
	if fetched.IsEmpty() {
		logger.Info("no data for date")
		return GroupReport{Group: GroupBody, Date: date, Outcome: OutcomeSkipped}
	}

	c.stash(logger, GroupBody, date, fetched)

	existing, err := c.store.GetBodyComposition(date)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("read existing record failed", "err", err)
		return GroupReport{Group: GroupBody, Date: date, Outcome: OutcomeFailed, Err: err}
	}

	merged := reconcile.MergeBody(existing, fetched, c.now())
	outcome, err := c.store.UpsertBodyComposition(merged)
	if err != nil {
		logger.Warn("upsert failed", "err", err)
		return GroupReport{Group: GroupBody, Date: date, Outcome: OutcomeFailed, Err: err}
	}

	logger.Info("collected", "outcome", outcome.String())
	return GroupReport{Group: GroupBody, Date: date, Outcome: toOutcome(outcome)}
}

// fetchSleep assembles the sleep group from three endpoints. Each endpoint
// fails independently; the group as a whole fails only when nothing at all
// came back and at least one endpoint errored. Endpoint errors that left
// partial data are returned as warnings so the report can show them.
func (c *Collector) fetchSleep(ctx context.Context, logger *log.Logger, date models.DateKey) (reconcile.Result[models.DailyRecord], []error) {
	rec := models.DailyRecord{Date: date}
	var errs []error

	// Daily summaries are labeled by day, so an exact-date query suffices.
	daily, err := c.oura.DailySleep(ctx, date, date)
	if err != nil {
		errs = append(errs, fmt.Errorf("daily_sleep: %w", err))
	} else {
		for _, d := range daily {
			if d.Day == date.String() && d.Score != nil {
				rec.SleepScore = d.Score
			}
		}
	}

	// Sessions need the widened window to catch midnight spans.
	w := reconcile.Window(date)
	sessions, err := c.oura.SleepSessions(ctx, w.Start, w.End)
	if err != nil {
		errs = append(errs, fmt.Errorf("sleep sessions: %w", err))
	} else if s := reconcile.SelectSession(sessions, date); s != nil {
		applySession(&rec, s)
	}

	spo2, err := c.oura.DailySpO2(ctx, date, date)
	if err != nil {
		errs = append(errs, fmt.Errorf("daily_spo2: %w", err))
	} else {
		for _, d := range spo2 {
			if d.Day == date.String() {
				rec.SpO2Avg = d.Average()
			}
		}
	}

	if rec.IsEmpty() {
		if len(errs) > 0 {
			return reconcile.Failed[models.DailyRecord](errors.Join(errs...)), nil
		}
		return reconcile.Missing[models.DailyRecord](), nil
	}
	for _, err := range errs {
		logger.Warn("partial sleep fetch", "err", err)
	}
	return reconcile.OK(rec), errs
}

// applySession normalizes session fields into canonical units at the
// boundary: seconds to minutes or hours, bedtime split into date and time.
func applySession(rec *models.DailyRecord, s *oura.SleepSession) {
	rec.DeepSleepMinutes = models.Ptr(s.DeepSleepDuration / 60)
	rec.TotalSleepHours = models.Ptr(float64(s.TotalSleepDuration) / 3600)
	if s.Latency != nil {
		rec.LatencyMinutes = models.Ptr(*s.Latency / 60)
	}
	rec.RestingHeartRate = s.LowestHeartRate
	rec.AverageHRV = s.AverageHRV
	rec.Efficiency = s.Efficiency
	if t, ok := s.BedtimeStartTime(); ok {
		rec.BedtimeStartDate = models.Ptr(t.Format("2006-01-02"))
		rec.BedtimeStartTime = models.Ptr(t.Format("15:04:05"))
	}
}

func (c *Collector) fetchActivity(ctx context.Context, date models.DateKey) reconcile.Result[models.DailyRecord] {
	// Activity summaries show up adjacent to either day boundary depending
	// on the account timezone; query the window and match the label.
	w := reconcile.Window(date)
	activity, err := c.oura.DailyActivity(ctx, w.Start, w.End)
	if err != nil {
		return reconcile.Failed[models.DailyRecord](fmt.Errorf("daily_activity: %w", err))
	}

	rec := models.DailyRecord{Date: date}
	for _, a := range activity {
		if a.Day == date.String() {
			rec.TotalCalories = a.TotalCalories
		}
	}
	if rec.IsEmpty() {
		return reconcile.Missing[models.DailyRecord]()
	}
	return reconcile.OK(rec)
}

func (c *Collector) fetchCardio(ctx context.Context, date models.DateKey) reconcile.Result[models.DailyRecord] {
	ages, err := c.oura.DailyCardioAge(ctx, date, date)
	if err != nil {
		return reconcile.Failed[models.DailyRecord](fmt.Errorf("daily_cardiovascular_age: %w", err))
	}

	rec := models.DailyRecord{Date: date}
	for _, a := range ages {
		if a.Day == date.String() {
			rec.CardioAge = a.VascularAge
		}
	}
	if rec.IsEmpty() {
		return reconcile.Missing[models.DailyRecord]()
	}
	return reconcile.OK(rec)
}

// stash snapshots fetched fields to the staging cache, best effort.
func (c *Collector) stash(logger *log.Logger, group MetricGroup, date models.DateKey, v any) {
	if c.cache == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.StashPayload(string(group), date, payload); err != nil {
		logger.Debug("stash payload failed", "err", err)
	}
}

func toOutcome(o storage.UpsertOutcome) Outcome {
	if o == storage.OutcomeWritten {
		return OutcomeWritten
	}
	return OutcomeSkipped
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
