package store

import (
	"fmt"
)

// tableColumns lists every column each time-series table must have. Columns
// added after a release are backfilled with ALTER TABLE so existing rows
// survive upgrades.
var tableColumns = map[string]map[string]string{
	"moon_ephemeris": {
		"moon_lon_deg":     "REAL",
		"illumination_pct": "REAL",
		"age_days":         "REAL",
		"phase_angle_deg":  "REAL",
		"distance_km":      "REAL",
		"ra_hours":         "REAL",
		"dec_deg":          "REAL",
		"axis_deg":         "REAL",
		"parallactic_deg":  "REAL",
		"subsolar_lon_deg": "REAL",
		"subsolar_lat_deg": "REAL",
	},
	"phase_events": {
		"event_type":       "TEXT",
		"phase_name":       "TEXT",
		"phase_angle_deg":  "REAL",
		"illumination_pct": "REAL",
		"precision_s":      "REAL",
		"source":           "TEXT",
		"phase_hour":       "TEXT",
	},
	"canonical_points": {
		"moon_lon_deg":      "REAL",
		"sun_lon_deg":       "REAL",
		"illum_frac":        "REAL",
		"distance_km":       "REAL",
		"moon_lat_deg":      "REAL",
		"elongation_deg":    "REAL",
		"speed_deg_per_day": "REAL",
	},
}

// Migrate adds any columns missing from existing tables without data loss.
// The legacy table drops live in Schema and run on every init.
func (db *DB) Migrate() error {
	for table, wanted := range tableColumns {
		existing, err := db.columnNames(table)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", table, err)
		}
		for col, typ := range wanted {
			if existing[col] {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col, typ)
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("failed to add %s.%s: %w", table, col, err)
			}
		}
	}
	return nil
}

func (db *DB) columnNames(table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			typ       string
			notNull   int
			dfltValue interface{}
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
