package store

import (
	"fmt"

	"github.com/Roi-salemm/lunaris/internal/domain"
)

const eventColumns = `ts_utc, event_type, phase_name, phase_angle_deg, illumination_pct,
	precision_s, source, phase_hour`

// UpsertPhaseEvents writes event rows atomically, last writer wins.
func (db *DB) UpsertPhaseEvents(rows []domain.PhaseEventRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`
		INSERT INTO phase_events (ts_utc, event_type, phase_name, phase_angle_deg, illumination_pct,
			precision_s, source, phase_hour)
		VALUES (:ts_utc, :event_type, :phase_name, :phase_angle_deg, :illumination_pct,
			:precision_s, :source, :phase_hour)
		ON CONFLICT(ts_utc) DO UPDATE SET
			event_type = excluded.event_type,
			phase_name = excluded.phase_name,
			phase_angle_deg = excluded.phase_angle_deg,
			illumination_pct = excluded.illumination_pct,
			precision_s = excluded.precision_s,
			source = excluded.source,
			phase_hour = excluded.phase_hour
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row); err != nil {
			return fmt.Errorf("failed to upsert event row %s: %w", row.TsUTC, err)
		}
	}

	return tx.Commit()
}

// NearestPhaseEvent finds the event at-or-before ts, else the first after.
func (db *DB) NearestPhaseEvent(ts string) (*domain.PhaseEventRow, error) {
	row := &domain.PhaseEventRow{}
	found, err := db.nearestRow(EventsTable, eventColumns, ts, row)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest phase event: %w", err)
	}
	if !found {
		return nil, nil
	}
	return row, nil
}

// EventsForDay returns all events whose timestamp falls on the given UTC day
// key (YYYY-MM-DD), in chronological order.
func (db *DB) EventsForDay(dayKey string) ([]domain.PhaseEventRow, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM phase_events WHERE ts_utc LIKE ? ORDER BY ts_utc ASC", eventColumns)

	var rows []domain.PhaseEventRow
	if err := db.Select(&rows, query, dayKey+"%"); err != nil {
		return nil, fmt.Errorf("failed to query events for day %s: %w", dayKey, err)
	}
	return rows, nil
}

// EventsBefore returns up to limit events strictly before ts, nearest first.
func (db *DB) EventsBefore(ts string, limit int) ([]domain.PhaseEventRow, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM phase_events WHERE ts_utc < ? ORDER BY ts_utc DESC LIMIT ?", eventColumns)

	var rows []domain.PhaseEventRow
	if err := db.Select(&rows, query, ts, limit); err != nil {
		return nil, fmt.Errorf("failed to query events before %s: %w", ts, err)
	}
	return rows, nil
}

// EventsAfter returns up to limit events at-or-after ts, nearest first.
func (db *DB) EventsAfter(ts string, limit int) ([]domain.PhaseEventRow, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM phase_events WHERE ts_utc >= ? ORDER BY ts_utc ASC LIMIT ?", eventColumns)

	var rows []domain.PhaseEventRow
	if err := db.Select(&rows, query, ts, limit); err != nil {
		return nil, fmt.Errorf("failed to query events after %s: %w", ts, err)
	}
	return rows, nil
}
