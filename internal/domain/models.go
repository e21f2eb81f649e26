package domain

import (
	"time"

	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

// Window is a closed UTC time range used for coverage checks, fetches and
// pruning. Start and End are second precision.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartKey returns the window start as a SQL-UTC string.
func (w Window) StartKey() string { return timeutil.FormatSQLUTC(w.Start) }

// EndKey returns the window end as a SQL-UTC string.
func (w Window) EndKey() string { return timeutil.FormatSQLUTC(w.End) }

// Contains reports whether t falls inside the window (inclusive).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// EphemerisRow is one hourly ephemeris sample. Numeric fields are pointers:
// absent upstream data is NULL in the store, never zero.
type EphemerisRow struct {
	TsUTC          string   `json:"ts_utc" db:"ts_utc"`
	MoonLonDeg     *float64 `json:"moon_lon_deg" db:"moon_lon_deg"`
	IlluminationPc *float64 `json:"illumination_pct" db:"illumination_pct"`
	AgeDays        *float64 `json:"age_days" db:"age_days"`
	PhaseAngleDeg  *float64 `json:"phase_angle_deg" db:"phase_angle_deg"`
	DistanceKm     *float64 `json:"distance_km" db:"distance_km"`
	RAHours        *float64 `json:"ra_hours" db:"ra_hours"`
	DecDeg         *float64 `json:"dec_deg" db:"dec_deg"`
	AxisDeg        *float64 `json:"axis_deg" db:"axis_deg"`
	ParallacticDeg *float64 `json:"parallactic_deg" db:"parallactic_deg"`
	SubsolarLonDeg *float64 `json:"subsolar_lon_deg" db:"subsolar_lon_deg"`
	SubsolarLatDeg *float64 `json:"subsolar_lat_deg" db:"subsolar_lat_deg"`
}

// PhaseEventRow is one discrete phase event (new moon, full moon, quarters).
type PhaseEventRow struct {
	TsUTC          string   `json:"ts_utc" db:"ts_utc"`
	EventType      *string  `json:"event_type" db:"event_type"`
	PhaseName      *string  `json:"phase_name" db:"phase_name"`
	PhaseAngleDeg  *float64 `json:"phase_angle_deg" db:"phase_angle_deg"`
	IlluminationPc *float64 `json:"illumination_pct" db:"illumination_pct"`
	PrecisionSec   *float64 `json:"precision_s" db:"precision_s"`
	Source         *string  `json:"source" db:"source"`
	PhaseHour      *string  `json:"phase_hour" db:"phase_hour"`
}

// CanonicalRow is one fine-grained sample (~10 minute cadence) carrying the
// ecliptic longitudes used for sub-degree interpolation.
type CanonicalRow struct {
	TsUTC          string   `json:"ts_utc" db:"ts_utc"`
	MoonLonDeg     *float64 `json:"moon_lon_deg" db:"moon_lon_deg"`
	SunLonDeg      *float64 `json:"sun_lon_deg" db:"sun_lon_deg"`
	IllumFrac      *float64 `json:"illum_frac" db:"illum_frac"`
	DistanceKm     *float64 `json:"distance_km" db:"distance_km"`
	MoonLatDeg     *float64 `json:"moon_lat_deg" db:"moon_lat_deg"`
	ElongationDeg  *float64 `json:"elongation_deg" db:"elongation_deg"`
	SpeedDegPerDay *float64 `json:"speed_deg_per_day" db:"speed_deg_per_day"`
}

// Time parses the row key. Rows written by the sync layer always parse; a
// zero time signals a corrupt key.
func (r CanonicalRow) Time() time.Time {
	t, err := timeutil.ParseSQLUTC(r.TsUTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RangeStats summarizes a table's content for coverage checks: extremes and
// row count. Coverage bounds extremes only, it says nothing about density.
type RangeStats struct {
	MinTs string
	MaxTs string
	Count int
}

// Covers reports whether the stored range subsumes w. Empty tables never
// cover anything.
func (s RangeStats) Covers(w Window) bool {
	return s.Count > 0 && s.MinTs <= w.StartKey() && s.MaxTs >= w.EndKey()
}

// Precision says which data backed a derived card.
type Precision string

const (
	PrecisionMinute Precision = "minute" // fine-grained canonical point
	PrecisionDay    Precision = "day"    // coarse daily fallback only
)

// VoCStatusUnavailable is fixed: no void-of-course engine exists upstream,
// the card carries the placeholder so clients can render a stable field.
const VoCStatusUnavailable = "unavailable"

// MoonCard is the composite astrological fact sheet for one instant. It is
// always producible: missing data degrades individual fields to placeholders.
type MoonCard struct {
	TsUTC         string     `json:"ts_utc"`
	LongitudeDeg  *float64   `json:"longitude_deg"`
	SignIndex     int        `json:"sign_index"`
	SignName      string     `json:"sign_name"`
	DegreeInSign  *float64   `json:"degree_in_sign"`
	DegreeDMS     string     `json:"degree_dms"`
	PhaseKey      string     `json:"phase_key"`
	PhaseChangeAt *string    `json:"phase_change_at"`
	IllumFrac     *float64   `json:"illum_frac"`
	IngressAt     *time.Time `json:"ingress_at"`
	EgressAt      *time.Time `json:"egress_at"`
	Precision     Precision  `json:"precision"`
	VoCStatus     string     `json:"voc_status"`
	VoCActive     bool       `json:"voc_active"`
	VoCStartAt    *time.Time `json:"voc_start_at"`
	VoCEndAt      *time.Time `json:"voc_end_at"`
}

// PhaseSnapshot is the reader-level view of the nearest canonical point plus
// the derived phase angle.
type PhaseSnapshot struct {
	TsUTC         string   `json:"ts_utc"`
	MoonLonDeg    *float64 `json:"moon_lon_deg"`
	SunLonDeg     *float64 `json:"sun_lon_deg"`
	PhaseAngleDeg *float64 `json:"phase_angle_deg"`
	IllumFrac     *float64 `json:"illum_frac"`
	DistanceKm    *float64 `json:"distance_km"`
}

// NewMoonWindow brackets an instant with the nearest new-moon events found by
// the bounded heuristic search. Either side may be nil.
type NewMoonWindow struct {
	Before *PhaseEventRow `json:"before"`
	After  *PhaseEventRow `json:"after"`
}

// EphemerisSyncResult reports one run of the ephemeris+events flow.
type EphemerisSyncResult struct {
	Ready            bool `json:"ready"`
	FetchedEphemeris int  `json:"fetched_ephemeris"`
	FetchedEvents    int  `json:"fetched_events"`
}

// CanonicalSyncResult reports one run of the fine-grained flow.
type CanonicalSyncResult struct {
	Skipped bool `json:"skipped"`
	Ready   bool `json:"ready"`
	Fetched int  `json:"fetched"`
}

// SyncFlow identifies which orchestration ran.
type SyncFlow string

const (
	FlowEphemeris SyncFlow = "ephemeris"
	FlowCanonical SyncFlow = "canonical"
)

// SyncRun is one persisted orchestrator execution, kept for diagnostics.
type SyncRun struct {
	ID         string     `json:"id" db:"id"`
	Flow       SyncFlow   `json:"flow" db:"flow"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Fetched    int        `json:"fetched" db:"fetched"`
	Ready      bool       `json:"ready" db:"ready"`
	Error      *string    `json:"error,omitempty" db:"error"`
}
