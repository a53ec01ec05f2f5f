// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One row per calendar date in daily_metrics and body_composition.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_metrics (
		date TEXT PRIMARY KEY,
		collected_at TEXT NOT NULL,
		deep_sleep_minutes INTEGER,
		sleep_score INTEGER,
		bedtime_start_date TEXT,
		bedtime_start_time TEXT,
		total_sleep_hours REAL,
		latency_minutes INTEGER,
		efficiency INTEGER,
		resting_heart_rate INTEGER,
		average_hrv REAL,
		spo2_avg REAL,
		cardio_age REAL,
		total_calories INTEGER
	);

	CREATE TABLE IF NOT EXISTS body_composition (
		date TEXT PRIMARY KEY,
		collected_at TEXT NOT NULL,
		weight_lbs INTEGER,
		fat_ratio REAL,
		systolic_bp INTEGER,
		diastolic_bp INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_daily_metrics_collected ON daily_metrics(collected_at DESC);
	CREATE INDEX IF NOT EXISTS idx_body_composition_collected ON body_composition(collected_at DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
