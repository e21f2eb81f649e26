package store

import (
	"fmt"

	"github.com/Roi-salemm/lunaris/internal/domain"
)

const canonicalColumns = `ts_utc, moon_lon_deg, sun_lon_deg, illum_frac, distance_km,
	moon_lat_deg, elongation_deg, speed_deg_per_day`

// UpsertCanonical writes fine-grained rows atomically, last writer wins.
func (db *DB) UpsertCanonical(rows []domain.CanonicalRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`
		INSERT INTO canonical_points (ts_utc, moon_lon_deg, sun_lon_deg, illum_frac, distance_km,
			moon_lat_deg, elongation_deg, speed_deg_per_day)
		VALUES (:ts_utc, :moon_lon_deg, :sun_lon_deg, :illum_frac, :distance_km,
			:moon_lat_deg, :elongation_deg, :speed_deg_per_day)
		ON CONFLICT(ts_utc) DO UPDATE SET
			moon_lon_deg = excluded.moon_lon_deg,
			sun_lon_deg = excluded.sun_lon_deg,
			illum_frac = excluded.illum_frac,
			distance_km = excluded.distance_km,
			moon_lat_deg = excluded.moon_lat_deg,
			elongation_deg = excluded.elongation_deg,
			speed_deg_per_day = excluded.speed_deg_per_day
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare canonical upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row); err != nil {
			return fmt.Errorf("failed to upsert canonical row %s: %w", row.TsUTC, err)
		}
	}

	return tx.Commit()
}

// NearestCanonical finds the fine-grained point at-or-before ts, else the
// first one after. Nil without error when the table is empty.
func (db *DB) NearestCanonical(ts string) (*domain.CanonicalRow, error) {
	row := &domain.CanonicalRow{}
	found, err := db.nearestRow(CanonicalTable, canonicalColumns, ts, row)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest canonical point: %w", err)
	}
	if !found {
		return nil, nil
	}
	return row, nil
}
