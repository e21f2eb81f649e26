package source

import (
	"fmt"

	"github.com/Roi-salemm/lunaris/internal/domain"
	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

// convertEphemeris maps raw items to typed rows. A row without a usable
// ts_utc key cannot be stored and fails the whole batch: the parse-or-error
// step happens here, before anything reaches the upsert path.
func convertEphemeris(items []map[string]interface{}) ([]domain.EphemerisRow, error) {
	rows := make([]domain.EphemerisRow, 0, len(items))
	for i, item := range items {
		ts, err := rowKey(item, i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.EphemerisRow{
			TsUTC:          ts,
			MoonLonDeg:     timeutil.ToFloat(item["moon_lon_deg"]),
			IlluminationPc: timeutil.ToFloat(item["illumination_pct"]),
			AgeDays:        timeutil.ToFloat(item["age_days"]),
			PhaseAngleDeg:  timeutil.ToFloat(item["phase_angle_deg"]),
			DistanceKm:     timeutil.ToFloat(item["distance_km"]),
			RAHours:        timeutil.ToFloat(item["ra_hours"]),
			DecDeg:         timeutil.ToFloat(item["dec_deg"]),
			AxisDeg:        timeutil.ToFloat(item["axis_deg"]),
			ParallacticDeg: timeutil.ToFloat(item["parallactic_deg"]),
			SubsolarLonDeg: timeutil.ToFloat(item["subsolar_lon_deg"]),
			SubsolarLatDeg: timeutil.ToFloat(item["subsolar_lat_deg"]),
		})
	}
	return rows, nil
}

func convertPhaseEvents(items []map[string]interface{}) ([]domain.PhaseEventRow, error) {
	rows := make([]domain.PhaseEventRow, 0, len(items))
	for i, item := range items {
		ts, err := rowKey(item, i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.PhaseEventRow{
			TsUTC:          ts,
			EventType:      toString(item["event_type"]),
			PhaseName:      toString(item["phase_name"]),
			PhaseAngleDeg:  timeutil.ToFloat(item["phase_angle_deg"]),
			IlluminationPc: timeutil.ToFloat(item["illumination_pct"]),
			PrecisionSec:   timeutil.ToFloat(item["precision_s"]),
			Source:         toString(item["source"]),
			PhaseHour:      toString(item["phase_hour"]),
		})
	}
	return rows, nil
}

func convertCanonical(items []map[string]interface{}) ([]domain.CanonicalRow, error) {
	rows := make([]domain.CanonicalRow, 0, len(items))
	for i, item := range items {
		ts, err := rowKey(item, i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.CanonicalRow{
			TsUTC:          ts,
			MoonLonDeg:     timeutil.ToFloat(item["moon_lon_deg"]),
			SunLonDeg:      timeutil.ToFloat(item["sun_lon_deg"]),
			IllumFrac:      timeutil.ToFloat(item["illum_frac"]),
			DistanceKm:     timeutil.ToFloat(item["distance_km"]),
			MoonLatDeg:     timeutil.ToFloat(item["moon_lat_deg"]),
			ElongationDeg:  timeutil.ToFloat(item["elongation_deg"]),
			SpeedDegPerDay: timeutil.ToFloat(item["speed_deg_per_day"]),
		})
	}
	return rows, nil
}

// rowKey extracts and validates the timestamp key of an item.
func rowKey(item map[string]interface{}, idx int) (string, error) {
	raw, ok := item["ts_utc"].(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("%w: item %d has no ts_utc key", ErrMalformedPayload, idx)
	}
	t, err := timeutil.ParseSQLUTC(raw)
	if err != nil {
		return "", fmt.Errorf("%w: item %d has unparseable ts_utc %q", ErrMalformedPayload, idx, raw)
	}
	return timeutil.FormatSQLUTC(t), nil
}

func toString(v interface{}) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}
