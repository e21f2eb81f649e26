package app

import (
	"time"

	"github.com/Roi-salemm/lunaris/internal/constants"
	"github.com/Roi-salemm/lunaris/internal/domain"
	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

// EphemerisWindow is the three-month active window for the coarse tables:
// first day of the previous month through last day of the month after next,
// closed at day boundaries.
func EphemerisWindow(now time.Time) domain.Window {
	u := now.UTC()
	start := time.Date(u.Year(), u.Month()-time.Month(constants.EphemerisWindowMonthsBack), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of month+N+1 is the last day of month+N.
	endDay := time.Date(u.Year(), u.Month()+time.Month(constants.EphemerisWindowMonthsForward)+1, 0, 0, 0, 0, 0, time.UTC)
	end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 0, time.UTC)
	return domain.Window{Start: start, End: end}
}

// CanonicalWindow is the day-aligned ±45-day window around now for the
// fine-grained table.
func CanonicalWindow(now time.Time) domain.Window {
	u := now.UTC()
	return domain.Window{
		Start: timeutil.DayStart(u.AddDate(0, 0, -constants.CanonicalWindowDays)),
		End:   timeutil.DayEnd(u.AddDate(0, 0, constants.CanonicalWindowDays)),
	}
}

// MissingSegments computes the sub-windows of w not present locally, judged
// by the stored extremes only. An empty or fully disjoint table yields the
// whole window; a partial overlap yields up to two segments, before the
// stored minimum and after the stored maximum. Interior gaps are invisible
// to this check — coverage is a bounds approximation, not a density ledger.
func MissingSegments(stats domain.RangeStats, w domain.Window) []domain.Window {
	if stats.Count == 0 {
		return []domain.Window{w}
	}

	min, errMin := timeutil.ParseSQLUTC(stats.MinTs)
	max, errMax := timeutil.ParseSQLUTC(stats.MaxTs)
	if errMin != nil || errMax != nil {
		return []domain.Window{w}
	}

	if max.Before(w.Start) || min.After(w.End) {
		return []domain.Window{w}
	}

	var segments []domain.Window
	if min.After(w.Start) {
		segments = append(segments, domain.Window{Start: w.Start, End: min})
	}
	if max.Before(w.End) {
		segments = append(segments, domain.Window{Start: max, End: w.End})
	}
	return segments
}
