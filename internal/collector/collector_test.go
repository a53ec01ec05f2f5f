// ABOUTME: End-to-end collector tests against fake vendor servers.
// ABOUTME: Covers unit normalization, reruns, merges, and failure isolation.
package collector

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/oura"
	"github.com/harperreed/pulse/internal/storage"
	"github.com/harperreed/pulse/internal/withings"
)

// fakeOura serves canned JSON per usercollection endpoint. Endpoints with
// no entry return an empty data array, which the real API also does for
// dates with nothing recorded.
func fakeOura(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := filepath.Base(r.URL.Path)
		body, ok := responses[endpoint]
		if !ok {
			body = `{"data": []}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fakeWithings(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupCollector(t *testing.T, ouraSrv, withingsSrv *httptest.Server) (*Collector, *storage.DB) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var ouraClient *oura.Client
	if ouraSrv != nil {
		ouraClient = oura.NewClient(ouraSrv.URL, oura.StaticToken("test"))
	}
	var withingsClient *withings.Client
	if withingsSrv != nil {
		withingsClient = withings.NewClient(withingsSrv.URL, withings.StaticToken("test"))
	}

	c := New(ouraClient, withingsClient, store, nil, log.New(io.Discard))
	c.now = func() time.Time {
		return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	}
	return c, store
}

func TestCollectSleepNormalizesUnits(t *testing.T) {
	srv := fakeOura(t, map[string]string{
		"daily_sleep": `{"data": [{"day": "2025-06-01", "score": 82}]}`,
		"sleep": `{"data": [{
			"day": "2025-06-01",
			"bedtime_start": "2025-05-31T23:45:00-05:00",
			"bedtime_end": "2025-06-01T07:30:00-05:00",
			"total_sleep_duration": 25200,
			"deep_sleep_duration": 5400,
			"lowest_heart_rate": 54
		}]}`,
	})
	c, store := setupCollector(t, srv, nil)

	report := c.CollectDate(context.Background(), "2025-06-01", []MetricGroup{GroupSleep})
	if len(report.Groups) != 1 || report.Groups[0].Outcome != OutcomeWritten {
		t.Fatalf("report = %+v", report.Groups)
	}

	rec, err := store.GetDailyRecord("2025-06-01")
	if err != nil {
		t.Fatalf("GetDailyRecord failed: %v", err)
	}
	if rec.DeepSleepMinutes == nil || *rec.DeepSleepMinutes != 90 {
		t.Errorf("deep sleep minutes = %v, want 90", rec.DeepSleepMinutes)
	}
	if rec.TotalSleepHours == nil || *rec.TotalSleepHours != 7.0 {
		t.Errorf("total sleep hours = %v, want 7.0", rec.TotalSleepHours)
	}
	if rec.SleepScore == nil || *rec.SleepScore != 82 {
		t.Errorf("sleep score = %v, want 82", rec.SleepScore)
	}
	if rec.RestingHeartRate == nil || *rec.RestingHeartRate != 54 {
		t.Errorf("resting heart rate = %v, want 54", rec.RestingHeartRate)
	}
	if rec.BedtimeStartDate == nil || *rec.BedtimeStartDate != "2025-05-31" {
		t.Errorf("bedtime start date = %v", rec.BedtimeStartDate)
	}
	if rec.BedtimeStartTime == nil || *rec.BedtimeStartTime != "23:45:00" {
		t.Errorf("bedtime start time = %v", rec.BedtimeStartTime)
	}
	if rec.CollectedAt.IsZero() {
		t.Error("collected_at not stamped")
	}

	// Endpoints that returned nothing must stay null.
	if rec.SpO2Avg != nil {
		t.Errorf("spo2 = %v, want nil", rec.SpO2Avg)
	}
	if rec.LatencyMinutes != nil {
		t.Errorf("latency = %v, want nil", rec.LatencyMinutes)
	}
	if rec.TotalCalories != nil {
		t.Errorf("calories = %v, want nil", rec.TotalCalories)
	}
}

func TestRerunIsIdempotent(t *testing.T) {
	srv := fakeOura(t, map[string]string{
		"daily_sleep": `{"data": [{"day": "2025-06-01", "score": 82}]}`,
	})
	c, store := setupCollector(t, srv, nil)

	for i := 0; i < 3; i++ {
		report := c.CollectDate(context.Background(), "2025-06-01", []MetricGroup{GroupSleep})
		if report.Groups[0].Outcome != OutcomeWritten {
			t.Fatalf("run %d outcome = %s", i, report.Groups[0].Outcome)
		}
	}

	records, err := store.ListDailyRecords(10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 row after reruns, got %d", len(records))
	}
	if *records[0].SleepScore != 82 {
		t.Errorf("sleep score = %d", *records[0].SleepScore)
	}
}

func TestGroupsMergeIntoOneRow(t *testing.T) {
	srv := fakeOura(t, map[string]string{
		"daily_sleep":    `{"data": [{"day": "2025-06-01", "score": 82}]}`,
		"daily_activity": `{"data": [{"day": "2025-06-01", "total_calories": 2450}]}`,
	})
	c, store := setupCollector(t, srv, nil)
	ctx := context.Background()

	c.CollectDate(ctx, "2025-06-01", []MetricGroup{GroupSleep})
	c.CollectDate(ctx, "2025-06-01", []MetricGroup{GroupActivity})

	rec, err := store.GetDailyRecord("2025-06-01")
	if err != nil {
		t.Fatalf("GetDailyRecord failed: %v", err)
	}
	if rec.SleepScore == nil || *rec.SleepScore != 82 {
		t.Errorf("sleep score lost after activity merge: %v", rec.SleepScore)
	}
	if rec.TotalCalories == nil || *rec.TotalCalories != 2450 {
		t.Errorf("calories = %v", rec.TotalCalories)
	}
}

func TestGroupFailureIsIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Base(r.URL.Path) == "daily_cardiovascular_age" {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if filepath.Base(r.URL.Path) == "daily_sleep" {
			_, _ = io.WriteString(w, `{"data": [{"day": "2025-06-01", "score": 82}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"data": []}`)
	}))
	defer srv.Close()
	c, store := setupCollector(t, srv, nil)

	report := c.CollectDate(context.Background(), "2025-06-01",
		[]MetricGroup{GroupSleep, GroupCardio})

	outcomes := map[MetricGroup]Outcome{}
	for _, g := range report.Groups {
		outcomes[g.Group] = g.Outcome
	}
	if outcomes[GroupSleep] != OutcomeWritten {
		t.Errorf("sleep outcome = %s, want written", outcomes[GroupSleep])
	}
	if outcomes[GroupCardio] != OutcomeFailed {
		t.Errorf("cardio outcome = %s, want failed", outcomes[GroupCardio])
	}
	if !report.Failed() {
		t.Error("report.Failed() = false with a failed group")
	}

	// The sleep write landed despite the cardio failure.
	if _, err := store.GetDailyRecord("2025-06-01"); err != nil {
		t.Errorf("sleep record missing after isolated failure: %v", err)
	}
}

func TestMissingDataSkipsWithoutWriting(t *testing.T) {
	srv := fakeOura(t, nil)
	c, store := setupCollector(t, srv, nil)

	report := c.CollectDate(context.Background(), "2025-06-01", []MetricGroup{GroupSleep})
	if report.Groups[0].Outcome != OutcomeSkipped {
		t.Errorf("outcome = %s, want skipped", report.Groups[0].Outcome)
	}
	if report.Failed() {
		t.Error("missing data must not count as failure")
	}
	if _, err := store.GetDailyRecord("2025-06-01"); err != storage.ErrNotFound {
		t.Errorf("expected no row, got err = %v", err)
	}
}

func TestSessionMatchedAcrossMidnight(t *testing.T) {
	// Session labeled for the prior day but ending on the target date is
	// still attributed to the target.
	srv := fakeOura(t, map[string]string{
		"sleep": `{"data": [{
			"day": "2025-05-31",
			"bedtime_start": "2025-05-31T22:00:00Z",
			"bedtime_end": "2025-06-01T06:00:00Z",
			"total_sleep_duration": 27000,
			"deep_sleep_duration": 6000
		}]}`,
	})
	c, store := setupCollector(t, srv, nil)

	report := c.CollectDate(context.Background(), "2025-06-01", []MetricGroup{GroupSleep})
	if report.Groups[0].Outcome != OutcomeWritten {
		t.Fatalf("outcome = %s", report.Groups[0].Outcome)
	}
	rec, err := store.GetDailyRecord("2025-06-01")
	if err != nil {
		t.Fatalf("GetDailyRecord failed: %v", err)
	}
	if rec.TotalSleepHours == nil || *rec.TotalSleepHours != 7.5 {
		t.Errorf("total sleep hours = %v, want 7.5", rec.TotalSleepHours)
	}
}

func TestCollectBody(t *testing.T) {
	srv := fakeWithings(t, `{
		"status": 0,
		"body": {"measuregrps": [{"measures": [
			{"value": 82500, "type": 1, "unit": -3},
			{"value": 2015, "type": 6, "unit": -2}
		]}]}
	}`)
	c, store := setupCollector(t, nil, srv)

	report := c.CollectDate(context.Background(), "2025-06-01", []MetricGroup{GroupBody})
	if report.Groups[0].Outcome != OutcomeWritten {
		t.Fatalf("outcome = %s", report.Groups[0].Outcome)
	}

	body, err := store.GetBodyComposition("2025-06-01")
	if err != nil {
		t.Fatalf("GetBodyComposition failed: %v", err)
	}
	if body.WeightLbs == nil || *body.WeightLbs != 181 {
		t.Errorf("weight = %v, want 181", body.WeightLbs)
	}
	if body.FatRatio == nil || *body.FatRatio != 20.2 {
		t.Errorf("fat ratio = %v, want 20.2", body.FatRatio)
	}
}

func TestBodySkippedWhenScaleUnconfigured(t *testing.T) {
	c, _ := setupCollector(t, fakeOura(t, nil), nil)

	report := c.CollectDate(context.Background(), "2025-06-01", []MetricGroup{GroupBody})
	if report.Groups[0].Outcome != OutcomeSkipped {
		t.Errorf("outcome = %s, want skipped", report.Groups[0].Outcome)
	}
}

func TestRingGroupsSkippedWhenRingUnconfigured(t *testing.T) {
	// A scale-only setup still collects: the ring groups are reported
	// skipped rather than crashing or failing the run.
	c, store := setupCollector(t, nil, nil)

	report := c.CollectDate(context.Background(), "2025-06-01",
		[]MetricGroup{GroupSleep, GroupActivity, GroupCardio})

	if len(report.Groups) != 3 {
		t.Fatalf("got %d group reports", len(report.Groups))
	}
	for _, g := range report.Groups {
		if g.Outcome != OutcomeSkipped {
			t.Errorf("%s outcome = %s, want skipped", g.Group, g.Outcome)
		}
	}
	if report.Failed() {
		t.Error("unconfigured ring must not count as failure")
	}
	if _, err := store.GetDailyRecord("2025-06-01"); err != storage.ErrNotFound {
		t.Errorf("expected no row, got err = %v", err)
	}
}

func TestScheduledRunSurvivesRingUnconfigured(t *testing.T) {
	c, _ := setupCollector(t, nil, nil)

	report := c.CollectScheduled(context.Background())
	if len(report.Groups) != 4 {
		t.Fatalf("got %d group reports", len(report.Groups))
	}
	if report.Failed() {
		t.Error("scheduled run with no vendors configured must not fail")
	}
}

func TestPartialSleepFetchCarriesWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch filepath.Base(r.URL.Path) {
		case "daily_sleep":
			_, _ = io.WriteString(w, `{"data": [{"day": "2025-06-01", "score": 82}]}`)
		case "daily_spo2":
			http.Error(w, "server error", http.StatusInternalServerError)
		default:
			_, _ = io.WriteString(w, `{"data": []}`)
		}
	}))
	defer srv.Close()
	c, store := setupCollector(t, srv, nil)

	report := c.CollectDate(context.Background(), "2025-06-01", []MetricGroup{GroupSleep})

	g := report.Groups[0]
	if g.Outcome != OutcomeWritten {
		t.Fatalf("outcome = %s, want written", g.Outcome)
	}
	if len(g.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one for the failed endpoint", g.Warnings)
	}
	if !strings.Contains(g.Warnings[0].Error(), "daily_spo2") {
		t.Errorf("warning should name the endpoint: %v", g.Warnings[0])
	}
	if report.Failed() {
		t.Error("partial fetch with data must not fail the run")
	}

	rec, err := store.GetDailyRecord("2025-06-01")
	if err != nil {
		t.Fatalf("GetDailyRecord failed: %v", err)
	}
	if rec.SleepScore == nil || *rec.SleepScore != 82 {
		t.Errorf("sleep score = %v", rec.SleepScore)
	}
	if rec.SpO2Avg != nil {
		t.Errorf("spo2 = %v, want nil after failed endpoint", rec.SpO2Avg)
	}
}

func TestScheduledRunDates(t *testing.T) {
	srv := fakeOura(t, nil)
	c, _ := setupCollector(t, srv, nil)

	report := c.CollectScheduled(context.Background())

	dates := map[MetricGroup]models.DateKey{}
	for _, g := range report.Groups {
		dates[g.Group] = g.Date
	}
	if dates[GroupActivity] != "2025-06-01" {
		t.Errorf("activity date = %s, want yesterday", dates[GroupActivity])
	}
	for _, g := range []MetricGroup{GroupSleep, GroupCardio, GroupBody} {
		if dates[g] != "2025-06-02" {
			t.Errorf("%s date = %s, want today", g, dates[g])
		}
	}
}

func TestParseGroup(t *testing.T) {
	if g, err := ParseGroup("sleep"); err != nil || g != GroupSleep {
		t.Errorf("ParseGroup(sleep) = %v, %v", g, err)
	}
	if _, err := ParseGroup("steps"); err == nil {
		t.Error("expected error for unknown group")
	}
}
