package store

const Schema = `
CREATE TABLE IF NOT EXISTS moon_ephemeris (
	ts_utc TEXT PRIMARY KEY,
	moon_lon_deg REAL,
	illumination_pct REAL,
	age_days REAL,
	phase_angle_deg REAL,
	distance_km REAL,
	ra_hours REAL,
	dec_deg REAL,
	axis_deg REAL,
	parallactic_deg REAL,
	subsolar_lon_deg REAL,
	subsolar_lat_deg REAL
);

CREATE TABLE IF NOT EXISTS phase_events (
	ts_utc TEXT PRIMARY KEY,
	event_type TEXT,
	phase_name TEXT,
	phase_angle_deg REAL,
	illumination_pct REAL,
	precision_s REAL,
	source TEXT,
	phase_hour TEXT
);

CREATE TABLE IF NOT EXISTS canonical_points (
	ts_utc TEXT PRIMARY KEY,
	moon_lon_deg REAL,
	sun_lon_deg REAL,
	illum_frac REAL,
	distance_km REAL,
	moon_lat_deg REAL,
	elongation_deg REAL,
	speed_deg_per_day REAL
);

-- Redundant with the primary key, kept as a defensive ordering index.
CREATE INDEX IF NOT EXISTS idx_moon_ephemeris_ts ON moon_ephemeris(ts_utc);
CREATE INDEX IF NOT EXISTS idx_phase_events_ts ON phase_events(ts_utc);
CREATE INDEX IF NOT EXISTS idx_canonical_points_ts ON canonical_points(ts_utc);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id TEXT PRIMARY KEY,
	flow TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	fetched INTEGER DEFAULT 0,
	ready BOOLEAN DEFAULT 0,
	error TEXT
);

-- Schema replacement from the pre-rewrite app versions.
DROP TABLE IF EXISTS lune_cache;
DROP TABLE IF EXISTS moon_phase_legacy;
`
