package store

import (
	"database/sql"
	"fmt"

	"github.com/Roi-salemm/lunaris/internal/domain"
)

// Table names for the three time-series tables.
const (
	EphemerisTable = "moon_ephemeris"
	EventsTable    = "phase_events"
	CanonicalTable = "canonical_points"
)

// RangeStats returns the stored extremes and row count for a table. An empty
// table yields Count 0 and empty bounds.
func (db *DB) RangeStats(table string) (domain.RangeStats, error) {
	query := fmt.Sprintf(
		"SELECT COALESCE(MIN(ts_utc), ''), COALESCE(MAX(ts_utc), ''), COUNT(*) FROM %s", table)

	var stats domain.RangeStats
	err := db.QueryRow(query).Scan(&stats.MinTs, &stats.MaxTs, &stats.Count)
	if err != nil {
		return domain.RangeStats{}, fmt.Errorf("failed to read range stats for %s: %w", table, err)
	}
	return stats, nil
}

// HasCoverage reports whether the table's stored range subsumes w.
func (db *DB) HasCoverage(table string, w domain.Window) (bool, error) {
	stats, err := db.RangeStats(table)
	if err != nil {
		return false, err
	}
	return stats.Covers(w), nil
}

// Prune deletes rows strictly outside the retention window. Runs after
// upsert so a sync never transiently drops in-window rows.
func (db *DB) Prune(table string, w domain.Window) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE ts_utc < ? OR ts_utc > ?", table)
	_, err := db.Exec(query, w.StartKey(), w.EndKey())
	if err != nil {
		return fmt.Errorf("failed to prune %s: %w", table, err)
	}
	return nil
}

// Clear empties a time-series table.
func (db *DB) Clear(table string) error {
	_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
	return err
}

// nearestRow runs the exact-or-before query, falling back to the first row
// at-or-after. dest must be a struct pointer with db tags.
func (db *DB) nearestRow(table, columns, ts string, dest interface{}) (bool, error) {
	before := fmt.Sprintf(
		"SELECT %s FROM %s WHERE ts_utc <= ? ORDER BY ts_utc DESC LIMIT 1", columns, table)
	err := db.Get(dest, before, ts)
	if err == nil {
		return true, nil
	}
	if err != sql.ErrNoRows {
		return false, err
	}

	after := fmt.Sprintf(
		"SELECT %s FROM %s WHERE ts_utc >= ? ORDER BY ts_utc ASC LIMIT 1", columns, table)
	err = db.Get(dest, after, ts)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
