package app

import (
	"time"

	"github.com/Roi-salemm/lunaris/internal/astro"
	"github.com/Roi-salemm/lunaris/internal/constants"
	"github.com/Roi-salemm/lunaris/internal/domain"
	"github.com/Roi-salemm/lunaris/internal/store"
	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

// SnapshotService exposes the nearest-row readers. Every reader is total as
// long as its table holds any rows at all: sparse data degrades to the
// nearest neighbour, never to an error.
type SnapshotService struct {
	Store *store.DB
}

func NewSnapshotService(db *store.DB) *SnapshotService {
	return &SnapshotService{Store: db}
}

// Ephemeris returns the hourly sample nearest t, nil when the table is empty.
func (s *SnapshotService) Ephemeris(t time.Time) (*domain.EphemerisRow, error) {
	return s.Store.NearestEphemeris(timeutil.FormatSQLUTC(t))
}

// PhaseEvent returns the phase event nearest t.
func (s *SnapshotService) PhaseEvent(t time.Time) (*domain.PhaseEventRow, error) {
	return s.Store.NearestPhaseEvent(timeutil.FormatSQLUTC(t))
}

// Canonical returns the fine-grained point nearest t.
func (s *SnapshotService) Canonical(t time.Time) (*domain.CanonicalRow, error) {
	return s.Store.NearestCanonical(timeutil.FormatSQLUTC(t))
}

// Phase builds the phase snapshot from the nearest canonical point. The
// phase angle is derived only when both longitudes are present.
func (s *SnapshotService) Phase(t time.Time) (*domain.PhaseSnapshot, error) {
	row, err := s.Store.NearestCanonical(timeutil.FormatSQLUTC(t))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	snap := &domain.PhaseSnapshot{
		TsUTC:      row.TsUTC,
		MoonLonDeg: row.MoonLonDeg,
		SunLonDeg:  row.SunLonDeg,
		IllumFrac:  row.IllumFrac,
		DistanceKm: row.DistanceKm,
	}
	if row.MoonLonDeg != nil && row.SunLonDeg != nil {
		angle := astro.PhaseAngle(*row.MoonLonDeg, *row.SunLonDeg)
		snap.PhaseAngleDeg = &angle
	}
	return snap, nil
}

// NewMoonWindow scans a bounded batch of events on each side of t and
// returns the first heuristic new-moon match per side. Best effort: a new
// moon beyond the scanned batch is not found.
func (s *SnapshotService) NewMoonWindow(t time.Time) (*domain.NewMoonWindow, error) {
	ts := timeutil.FormatSQLUTC(t)
	result := &domain.NewMoonWindow{}

	before, err := s.Store.EventsBefore(ts, constants.NewMoonScanRows)
	if err != nil {
		return nil, err
	}
	for i := range before {
		row := before[i]
		if astro.LooksLikeNewMoon(row.EventType, row.PhaseName, row.PhaseAngleDeg) {
			result.Before = &row
			break
		}
	}

	after, err := s.Store.EventsAfter(ts, constants.NewMoonScanRows)
	if err != nil {
		return nil, err
	}
	for i := range after {
		row := after[i]
		if astro.LooksLikeNewMoon(row.EventType, row.PhaseName, row.PhaseAngleDeg) {
			result.After = &row
			break
		}
	}

	return result, nil
}
