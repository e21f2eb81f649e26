package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Roi-salemm/lunaris/internal/constants"
	"github.com/Roi-salemm/lunaris/internal/domain"
	"github.com/Roi-salemm/lunaris/internal/logger"
	"github.com/Roi-salemm/lunaris/internal/source"
	"github.com/Roi-salemm/lunaris/internal/store"
	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

func setupTestDB(t *testing.T) (*store.DB, func()) {
	tmpFile := "test_app.db"
	db, err := store.NewSQLiteDB(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	cleanup := func() {
		db.Close()
		os.Remove(tmpFile)
	}
	return db, cleanup
}

var testNow = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func newTestSyncService(db *store.DB, provider source.Provider) *SyncService {
	svc := NewSyncService(db, store.NewSettingsRepo(db), provider, logger.Default())
	svc.Now = func() time.Time { return testNow }
	return svc
}

func TestSyncService_EphemerisFromEmpty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	svc := newTestSyncService(db, mock)

	result, err := svc.SyncEphemeris(context.Background(), false)
	if err != nil {
		t.Fatalf("SyncEphemeris failed: %v", err)
	}
	if !result.Ready {
		t.Error("Expected ready after filling an empty store")
	}
	if result.FetchedEphemeris == 0 || result.FetchedEvents == 0 {
		t.Errorf("Expected rows fetched for both tables, got %+v", result)
	}

	w := EphemerisWindow(testNow)
	for _, table := range []string{store.EphemerisTable, store.EventsTable} {
		covered, err := db.HasCoverage(table, w)
		if err != nil {
			t.Fatalf("HasCoverage failed: %v", err)
		}
		if !covered {
			t.Errorf("Expected %s to cover the active window", table)
		}
	}

	// A reader finds a sample near an arbitrary in-window instant.
	row, err := db.NearestEphemeris("2024-06-20 03:17:00")
	if err != nil {
		t.Fatalf("NearestEphemeris failed: %v", err)
	}
	if row == nil {
		t.Fatal("Expected a nearby sample after sync")
	}
}

func TestSyncService_EphemerisSkipsCoveredTables(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	svc := newTestSyncService(db, mock)

	if _, err := svc.SyncEphemeris(context.Background(), false); err != nil {
		t.Fatalf("First sync failed: %v", err)
	}
	calls := mock.Calls()

	result, err := svc.SyncEphemeris(context.Background(), false)
	if err != nil {
		t.Fatalf("Second sync failed: %v", err)
	}
	if mock.Calls() != calls {
		t.Errorf("Expected no fetches when both tables are covered, got %d extra", mock.Calls()-calls)
	}
	if result.FetchedEphemeris != 0 || result.FetchedEvents != 0 {
		t.Errorf("Expected zero fetched, got %+v", result)
	}
	if !result.Ready {
		t.Error("Expected covered store to stay ready")
	}

	// force bypasses the coverage check.
	if _, err := svc.SyncEphemeris(context.Background(), true); err != nil {
		t.Fatalf("Forced sync failed: %v", err)
	}
	if mock.Calls() != calls+2 {
		t.Errorf("Expected forced refetch of both tables, got %d extra calls", mock.Calls()-calls)
	}
}

func TestSyncService_EphemerisTransientFailure(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	mock.Err = errors.New("connection refused")
	svc := newTestSyncService(db, mock)

	// Transient upstream failure: no error surfaced, stale cache stays.
	result, err := svc.SyncEphemeris(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected transient failure to be absorbed, got %v", err)
	}
	if result.Ready {
		t.Error("Expected not ready when nothing could be fetched")
	}
	if result.FetchedEphemeris != 0 || result.FetchedEvents != 0 {
		t.Errorf("Expected zero fetched, got %+v", result)
	}
}

func TestSyncService_EphemerisHardFailures(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	svc := newTestSyncService(db, mock)

	// Malformed payloads abort the flow.
	mock.Err = fmt.Errorf("decode: %w", source.ErrMalformedPayload)
	if _, err := svc.SyncEphemeris(context.Background(), false); !errors.Is(err, source.ErrMalformedPayload) {
		t.Errorf("Expected malformed payload error, got %v", err)
	}

	// So does cancellation.
	mock.Err = context.Canceled
	if _, err := svc.SyncEphemeris(context.Background(), false); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation error, got %v", err)
	}
}

func TestSyncService_EphemerisPrunesOutsideWindow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// Seed a stale row far outside the active window.
	old := 10.0
	stale := domain.EphemerisRow{TsUTC: "2023-01-01 00:00:00", MoonLonDeg: &old}
	if err := db.UpsertEphemeris([]domain.EphemerisRow{stale}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	svc := newTestSyncService(db, source.NewMockProvider())
	if _, err := svc.SyncEphemeris(context.Background(), false); err != nil {
		t.Fatalf("SyncEphemeris failed: %v", err)
	}

	row, err := db.NearestEphemeris("2023-01-01 00:00:00")
	if err != nil {
		t.Fatalf("NearestEphemeris failed: %v", err)
	}
	if row != nil && row.TsUTC == "2023-01-01 00:00:00" {
		t.Error("Expected stale row to be pruned")
	}
}

func TestSyncService_CanonicalThrottle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	mock.CanonicalStep = time.Hour // keep the test db small
	svc := newTestSyncService(db, mock)

	result, err := svc.SyncCanonical(context.Background(), false)
	if err != nil {
		t.Fatalf("First SyncCanonical failed: %v", err)
	}
	if result.Skipped || !result.Ready || result.Fetched == 0 {
		t.Errorf("Unexpected first run result %+v", result)
	}

	// Same UTC day with coverage intact: throttled, zero provider calls.
	calls := mock.CanonicalCalls
	result, err = svc.SyncCanonical(context.Background(), false)
	if err != nil {
		t.Fatalf("Second SyncCanonical failed: %v", err)
	}
	if !result.Skipped || !result.Ready || result.Fetched != 0 {
		t.Errorf("Expected throttled no-op, got %+v", result)
	}
	if mock.CanonicalCalls != calls {
		t.Errorf("Expected no provider calls when throttled, got %d extra", mock.CanonicalCalls-calls)
	}

	// force ignores the throttle.
	result, err = svc.SyncCanonical(context.Background(), true)
	if err != nil {
		t.Fatalf("Forced SyncCanonical failed: %v", err)
	}
	if result.Skipped {
		t.Error("Expected forced run to not be skipped")
	}
}

func TestSyncService_CanonicalGapFill(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	mock.CanonicalStep = time.Hour
	svc := newTestSyncService(db, mock)

	// Seed an interior slice of the window so both flanks are missing.
	seedStart := testNow.AddDate(0, 0, -10)
	seedEnd := testNow.AddDate(0, 0, 10)
	seed, err := mock.FetchCanonical(context.Background(), domain.Window{Start: seedStart, End: seedEnd})
	if err != nil {
		t.Fatalf("Seed fetch failed: %v", err)
	}
	if err := db.UpsertCanonical(seed); err != nil {
		t.Fatalf("Seed upsert failed: %v", err)
	}
	mock.Windows = nil
	mock.CanonicalCalls = 0

	result, err := svc.SyncCanonical(context.Background(), false)
	if err != nil {
		t.Fatalf("SyncCanonical failed: %v", err)
	}
	if !result.Ready {
		t.Error("Expected ready after gap fill")
	}
	if mock.CanonicalCalls != 2 {
		t.Fatalf("Expected exactly two segment fetches, got %d", mock.CanonicalCalls)
	}

	w := CanonicalWindow(testNow)
	lead, trail := mock.Windows[0], mock.Windows[1]
	if !lead.Start.Equal(w.Start) {
		t.Errorf("Expected leading segment to start at window start, got %v", lead.Start)
	}
	if !lead.End.Equal(seedStart) {
		t.Errorf("Expected leading segment to end at stored minimum, got %v", lead.End)
	}
	if !trail.Start.Equal(seedEnd) {
		t.Errorf("Expected trailing segment to start at stored maximum, got %v", trail.Start)
	}
	if !trail.End.Equal(w.End) {
		t.Errorf("Expected trailing segment to end at window end, got %v", trail.End)
	}
}

func TestSyncService_CanonicalNoOpStillMarksDay(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	mock.CanonicalStep = time.Hour
	settings := store.NewSettingsRepo(db)
	svc := NewSyncService(db, settings, mock, logger.Default())
	svc.Now = func() time.Time { return testNow }

	// Pre-fill the whole window, but leave the day marker on yesterday.
	w := CanonicalWindow(testNow)
	rows, err := mock.FetchCanonical(context.Background(), w)
	if err != nil {
		t.Fatalf("Fill fetch failed: %v", err)
	}
	if err := db.UpsertCanonical(rows); err != nil {
		t.Fatalf("Fill upsert failed: %v", err)
	}
	if err := settings.Set(constants.SettingCanonicalLastSyncDay, "2024-06-14"); err != nil {
		t.Fatalf("Settings seed failed: %v", err)
	}
	mock.CanonicalCalls = 0

	result, err := svc.SyncCanonical(context.Background(), false)
	if err != nil {
		t.Fatalf("SyncCanonical failed: %v", err)
	}
	if result.Skipped || !result.Ready || result.Fetched != 0 {
		t.Errorf("Expected ready no-op, got %+v", result)
	}
	if mock.CanonicalCalls != 0 {
		t.Errorf("Expected zero fetches, got %d", mock.CanonicalCalls)
	}

	day, err := settings.Get(constants.SettingCanonicalLastSyncDay)
	if err != nil {
		t.Fatalf("Settings read failed: %v", err)
	}
	if day != timeutil.DayKey(testNow) {
		t.Errorf("Expected day marker advanced to %s, got %s", timeutil.DayKey(testNow), day)
	}
}

func TestSyncService_CanonicalSegmentFailureSurfaces(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	mock.CanonicalStep = time.Hour
	mock.Err = errors.New("upstream 503")
	settings := store.NewSettingsRepo(db)
	svc := NewSyncService(db, settings, mock, logger.Default())
	svc.Now = func() time.Time { return testNow }

	if _, err := svc.SyncCanonical(context.Background(), false); err == nil {
		t.Fatal("Expected segment failure to surface")
	}

	// A failed run must not mark the day as synced.
	day, err := settings.Get(constants.SettingCanonicalLastSyncDay)
	if err != nil {
		t.Fatalf("Settings read failed: %v", err)
	}
	if day != "" {
		t.Errorf("Expected no day marker after failure, got %q", day)
	}
}

func TestSyncService_RecordsRuns(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	mock := source.NewMockProvider()
	mock.CanonicalStep = time.Hour
	svc := newTestSyncService(db, mock)

	if _, err := svc.SyncEphemeris(context.Background(), false); err != nil {
		t.Fatalf("SyncEphemeris failed: %v", err)
	}
	if _, err := svc.SyncCanonical(context.Background(), false); err != nil {
		t.Fatalf("SyncCanonical failed: %v", err)
	}

	runs, err := svc.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 recorded runs, got %d", len(runs))
	}
	for _, run := range runs {
		if run.FinishedAt == nil {
			t.Errorf("Expected run %s to be finished", run.ID)
		}
		if !run.Ready {
			t.Errorf("Expected run %s to be ready", run.ID)
		}
		if run.Error != nil {
			t.Errorf("Expected run %s to have no error, got %v", run.ID, *run.Error)
		}
	}
}
