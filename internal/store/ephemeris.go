package store

import (
	"fmt"

	"github.com/Roi-salemm/lunaris/internal/domain"
)

const ephemerisColumns = `ts_utc, moon_lon_deg, illumination_pct, age_days, phase_angle_deg, distance_km,
	ra_hours, dec_deg, axis_deg, parallactic_deg, subsolar_lon_deg, subsolar_lat_deg`

// UpsertEphemeris writes rows atomically: the statement is prepared once and
// executed per row inside one transaction, so a batch is visible all-or-none.
// Last writer wins on an existing timestamp.
func (db *DB) UpsertEphemeris(rows []domain.EphemerisRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`
		INSERT INTO moon_ephemeris (ts_utc, moon_lon_deg, illumination_pct, age_days, phase_angle_deg, distance_km,
			ra_hours, dec_deg, axis_deg, parallactic_deg, subsolar_lon_deg, subsolar_lat_deg)
		VALUES (:ts_utc, :moon_lon_deg, :illumination_pct, :age_days, :phase_angle_deg, :distance_km,
			:ra_hours, :dec_deg, :axis_deg, :parallactic_deg, :subsolar_lon_deg, :subsolar_lat_deg)
		ON CONFLICT(ts_utc) DO UPDATE SET
			moon_lon_deg = excluded.moon_lon_deg,
			illumination_pct = excluded.illumination_pct,
			age_days = excluded.age_days,
			phase_angle_deg = excluded.phase_angle_deg,
			distance_km = excluded.distance_km,
			ra_hours = excluded.ra_hours,
			dec_deg = excluded.dec_deg,
			axis_deg = excluded.axis_deg,
			parallactic_deg = excluded.parallactic_deg,
			subsolar_lon_deg = excluded.subsolar_lon_deg,
			subsolar_lat_deg = excluded.subsolar_lat_deg
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare ephemeris upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row); err != nil {
			return fmt.Errorf("failed to upsert ephemeris row %s: %w", row.TsUTC, err)
		}
	}

	return tx.Commit()
}

// NearestEphemeris finds the row at-or-before ts, else the first row after.
// Returns nil without error when the table is empty.
func (db *DB) NearestEphemeris(ts string) (*domain.EphemerisRow, error) {
	row := &domain.EphemerisRow{}
	found, err := db.nearestRow(EphemerisTable, ephemerisColumns, ts, row)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest ephemeris: %w", err)
	}
	if !found {
		return nil, nil
	}
	return row, nil
}
