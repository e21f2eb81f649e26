// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "8080"
	DefaultDBPath       = "lunaris.db"
	DefaultEphemerisURL = "http://127.0.0.1:8000"
	DefaultSyncInterval = 1 * time.Hour
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRetryCount   = 3
	DefaultRetryBase    = 1 * time.Second
	MinRequestInterval  = 250 * time.Millisecond
)

// Sync windows
const (
	// CanonicalWindowDays is the half-width of the fine-grained sync window
	// around today.
	CanonicalWindowDays = 45
	// EphemerisWindowMonthsBack / Forward bound the coarse window: first day
	// of the previous month through last day of the month after next.
	EphemerisWindowMonthsBack    = 1
	EphemerisWindowMonthsForward = 2
)

// Derivation engine
const (
	// BoundaryStep is the walk step used when searching for a sign crossing.
	BoundaryStep = 10 * time.Minute
	// BoundaryMaxSteps bounds each ingress/egress walk.
	BoundaryMaxSteps = 1000
	// NewMoonScanRows bounds the heuristic new-moon search per side.
	NewMoonScanRows = 48
	// CardCacheSize bounds the per-timestamp card memo.
	CardCacheSize = 4096
	// DayInfoCacheSize bounds the per-day phase info memo.
	DayInfoCacheSize = 512
)

// Settings keys
const (
	SettingCanonicalLastSyncDay = "canonical_last_sync_day"
)

// API limits
const (
	MaxSyncRunHistory = 50
)
