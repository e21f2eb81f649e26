package source

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestConvertEphemeris(t *testing.T) {
	items := []map[string]interface{}{
		{
			"ts_utc":           "2024-06-15 12:00:00",
			"moon_lon_deg":     json.Number("92.5"),
			"illumination_pct": "42.0", // numeric string, tolerated
			"age_days":         nil,
			"distance_km":      json.Number("384400"),
		},
	}

	rows, err := convertEphemeris(items)
	if err != nil {
		t.Fatalf("convertEphemeris failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.TsUTC != "2024-06-15 12:00:00" {
		t.Errorf("Unexpected key %s", row.TsUTC)
	}
	if row.MoonLonDeg == nil || *row.MoonLonDeg != 92.5 {
		t.Errorf("Expected longitude 92.5, got %+v", row.MoonLonDeg)
	}
	if row.IlluminationPc == nil || *row.IlluminationPc != 42.0 {
		t.Errorf("Expected string-coerced illumination 42.0, got %+v", row.IlluminationPc)
	}
	if row.AgeDays != nil {
		t.Errorf("Expected nil age, got %v", *row.AgeDays)
	}
	// Fields absent from the item come back nil, never zero.
	if row.RAHours != nil {
		t.Errorf("Expected nil for absent field, got %v", *row.RAHours)
	}
}

func TestConvertEphemerisBadKey(t *testing.T) {
	cases := []map[string]interface{}{
		{"moon_lon_deg": json.Number("92.5")}, // no key at all
		{"ts_utc": ""},
		{"ts_utc": json.Number("1718452800")}, // wrong type
		{"ts_utc": "15/06/2024 midi"},
		{"ts_utc": "2024-06-15T12:00:00Z"}, // wrong layout for a row key
	}

	for i, item := range cases {
		_, err := convertEphemeris([]map[string]interface{}{item})
		if !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("case %d: expected malformed payload error, got %v", i, err)
		}
	}
}

func TestConvertPhaseEvents(t *testing.T) {
	items := []map[string]interface{}{
		{
			"ts_utc":     "2024-06-06 12:37:00",
			"event_type": "new_moon",
			"phase_name": "New Moon",
			"phase_hour": "12:37",
			"source":     "",
		},
	}

	rows, err := convertPhaseEvents(items)
	if err != nil {
		t.Fatalf("convertPhaseEvents failed: %v", err)
	}
	row := rows[0]
	if row.EventType == nil || *row.EventType != "new_moon" {
		t.Errorf("Unexpected event type %+v", row.EventType)
	}
	if row.PhaseHour == nil || *row.PhaseHour != "12:37" {
		t.Errorf("Unexpected phase hour %+v", row.PhaseHour)
	}
	// Empty strings normalize to nil.
	if row.Source != nil {
		t.Errorf("Expected nil source, got %v", *row.Source)
	}
}

func TestConvertCanonical(t *testing.T) {
	items := []map[string]interface{}{
		{
			"ts_utc":       "2024-06-15 12:00:00",
			"moon_lon_deg": json.Number("92.5"),
			"sun_lon_deg":  json.Number("84.7"),
			"illum_frac":   json.Number("0.42"),
		},
		{
			"ts_utc": "2024-06-15 12:10:00",
		},
	}

	rows, err := convertCanonical(items)
	if err != nil {
		t.Fatalf("convertCanonical failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].IllumFrac == nil || *rows[0].IllumFrac != 0.42 {
		t.Errorf("Unexpected illum fraction %+v", rows[0].IllumFrac)
	}
	if rows[1].MoonLonDeg != nil {
		t.Error("Expected sparse second row to keep nil longitude")
	}
}

func TestConvertEmptyBatch(t *testing.T) {
	rows, err := convertEphemeris([]map[string]interface{}{})
	if err != nil {
		t.Fatalf("Expected empty batch to convert, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}
