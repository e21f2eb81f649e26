package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Roi-salemm/lunaris/internal/constants"
	"github.com/Roi-salemm/lunaris/internal/domain"
	"github.com/Roi-salemm/lunaris/internal/logger"
	"github.com/Roi-salemm/lunaris/internal/source"
	"github.com/Roi-salemm/lunaris/internal/store"
	"github.com/Roi-salemm/lunaris/internal/timeutil"
	"github.com/google/uuid"
)

// SyncService reconciles the three local tables against their target
// windows, fetching only what is missing and pruning to keep storage bounded.
type SyncService struct {
	Store    *store.DB
	Settings *store.SettingsRepo
	Provider source.Provider
	Logger   *logger.Logger

	// Now is swappable for tests.
	Now func() time.Time

	// One in-flight sync per flow; concurrent triggers serialize instead of
	// interleaving upsert and prune on the same tables.
	ephMu sync.Mutex
	canMu sync.Mutex
}

func NewSyncService(db *store.DB, settings *store.SettingsRepo, provider source.Provider, log *logger.Logger) *SyncService {
	return &SyncService{
		Store:    db,
		Settings: settings,
		Provider: provider,
		Logger:   log,
		Now:      time.Now,
	}
}

// SyncEphemeris runs the coarse flow: ephemeris and phase-event tables over
// the three-month window. Each table lacking coverage is refetched whole —
// these tables are cheap and change rarely, so no gap segmentation here.
// Cancellation and malformed payloads abort; transient fetch failures leave
// the stale local cache authoritative for that table.
func (s *SyncService) SyncEphemeris(ctx context.Context, force bool) (*domain.EphemerisSyncResult, error) {
	s.ephMu.Lock()
	defer s.ephMu.Unlock()

	w := EphemerisWindow(s.Now())
	result := &domain.EphemerisSyncResult{}

	run := &domain.SyncRun{
		ID:        uuid.New().String(),
		Flow:      domain.FlowEphemeris,
		StartedAt: time.Now().UTC(),
	}
	if err := s.Store.CreateSyncRun(run); err != nil {
		s.Logger.Warn("Failed to record sync run", "error", err)
	}

	err := s.syncEphemerisTables(ctx, s.Logger.WithFlow(string(domain.FlowEphemeris)), w, force, result)
	fetched := result.FetchedEphemeris + result.FetchedEvents
	if finishErr := s.Store.FinishSyncRun(run.ID, fetched, result.Ready, err); finishErr != nil {
		s.Logger.Warn("Failed to finish sync run", "error", finishErr)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SyncService) syncEphemerisTables(ctx context.Context, log *logger.Logger, w domain.Window, force bool, result *domain.EphemerisSyncResult) error {
	ephCovered, err := s.Store.HasCoverage(store.EphemerisTable, w)
	if err != nil {
		return err
	}
	if force || !ephCovered {
		rows, fetchErr := s.Provider.FetchEphemeris(ctx, w)
		switch {
		case fetchErr == nil:
			if err := s.Store.UpsertEphemeris(rows); err != nil {
				return err
			}
			result.FetchedEphemeris = len(rows)
		case isCancellation(fetchErr), errors.Is(fetchErr, source.ErrMalformedPayload):
			return fetchErr
		default:
			log.Warn("Ephemeris fetch failed, keeping stale cache", "error", fetchErr)
		}
	}

	evCovered, err := s.Store.HasCoverage(store.EventsTable, w)
	if err != nil {
		return err
	}
	if force || !evCovered {
		rows, fetchErr := s.Provider.FetchPhaseEvents(ctx, w)
		switch {
		case fetchErr == nil:
			if err := s.Store.UpsertPhaseEvents(rows); err != nil {
				return err
			}
			result.FetchedEvents = len(rows)
		case isCancellation(fetchErr), errors.Is(fetchErr, source.ErrMalformedPayload):
			return fetchErr
		default:
			log.Warn("Phase event fetch failed, keeping stale cache", "error", fetchErr)
		}
	}

	// Prune always runs, after upsert, so the window never transiently
	// holds less than the union of old and new rows.
	if err := s.Store.Prune(store.EphemerisTable, w); err != nil {
		return err
	}
	if err := s.Store.Prune(store.EventsTable, w); err != nil {
		return err
	}

	ephReady, err := s.Store.HasCoverage(store.EphemerisTable, w)
	if err != nil {
		return err
	}
	evReady, err := s.Store.HasCoverage(store.EventsTable, w)
	if err != nil {
		return err
	}
	result.Ready = ephReady && evReady

	log.Info("Ephemeris sync finished",
		"window_start", w.StartKey(), "window_end", w.EndKey(),
		"fetched_ephemeris", result.FetchedEphemeris,
		"fetched_events", result.FetchedEvents,
		"ready", result.Ready)
	return nil
}

// SyncCanonical runs the fine-grained flow over the ±45-day window. It is
// throttled to once per UTC day (independent of per-call coverage checks)
// because the canonical table is the one interpolation hammers, and it does
// genuine gap-filling: only the segments outside the stored extremes are
// fetched. Segment failures are never swallowed.
func (s *SyncService) SyncCanonical(ctx context.Context, force bool) (*domain.CanonicalSyncResult, error) {
	s.canMu.Lock()
	defer s.canMu.Unlock()

	now := s.Now()
	w := CanonicalWindow(now)
	today := timeutil.DayKey(now)

	if !force {
		lastDay, err := s.Settings.Get(constants.SettingCanonicalLastSyncDay)
		if err != nil {
			return nil, fmt.Errorf("failed to read sync bookkeeping: %w", err)
		}
		if lastDay == today {
			covered, err := s.Store.HasCoverage(store.CanonicalTable, w)
			if err != nil {
				return nil, err
			}
			if covered {
				return &domain.CanonicalSyncResult{Skipped: true, Ready: true}, nil
			}
		}
	}

	run := &domain.SyncRun{
		ID:        uuid.New().String(),
		Flow:      domain.FlowCanonical,
		StartedAt: time.Now().UTC(),
	}
	if err := s.Store.CreateSyncRun(run); err != nil {
		s.Logger.Warn("Failed to record sync run", "error", err)
	}

	result := &domain.CanonicalSyncResult{}
	err := s.syncCanonicalWindow(ctx, s.Logger.WithFlow(string(domain.FlowCanonical)), w, today, result)
	if finishErr := s.Store.FinishSyncRun(run.ID, result.Fetched, result.Ready, err); finishErr != nil {
		s.Logger.Warn("Failed to finish sync run", "error", finishErr)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SyncService) syncCanonicalWindow(ctx context.Context, log *logger.Logger, w domain.Window, today string, result *domain.CanonicalSyncResult) error {
	stats, err := s.Store.RangeStats(store.CanonicalTable)
	if err != nil {
		return err
	}

	for _, segment := range MissingSegments(stats, w) {
		rows, fetchErr := s.Provider.FetchCanonical(ctx, segment)
		if fetchErr != nil {
			return fetchErr
		}
		if err := s.Store.UpsertCanonical(rows); err != nil {
			return err
		}
		result.Fetched += len(rows)
	}

	if err := s.Store.Prune(store.CanonicalTable, w); err != nil {
		return err
	}

	// A successful no-op still marks the day as synced.
	if err := s.Settings.Set(constants.SettingCanonicalLastSyncDay, today); err != nil {
		return fmt.Errorf("failed to persist sync bookkeeping: %w", err)
	}

	result.Ready, err = s.Store.HasCoverage(store.CanonicalTable, w)
	if err != nil {
		return err
	}

	log.Info("Canonical sync finished",
		"window_start", w.StartKey(), "window_end", w.EndKey(),
		"fetched", result.Fetched, "ready", result.Ready)
	return nil
}

// ListRuns returns the recent sync executions, newest first.
func (s *SyncService) ListRuns(limit int) ([]domain.SyncRun, error) {
	if limit <= 0 || limit > constants.MaxSyncRunHistory {
		limit = constants.MaxSyncRunHistory
	}
	return s.Store.ListSyncRuns(limit)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
