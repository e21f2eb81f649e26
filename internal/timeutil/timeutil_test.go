package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatParseRoundTrip(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, want := range times {
		got, err := ParseSQLUTC(FormatSQLUTC(want))
		if err != nil {
			t.Fatalf("ParseSQLUTC failed: %v", err)
		}
		if !got.Equal(want) {
			t.Errorf("Round trip mismatch: want %v, got %v", want, got)
		}
	}
}

func TestFormatSQLUTCNormalizesZone(t *testing.T) {
	loc := time.FixedZone("plus2", 2*3600)
	local := time.Date(2024, 6, 15, 14, 0, 0, 0, loc)

	if got := FormatSQLUTC(local); got != "2024-06-15 12:00:00" {
		t.Errorf("Expected 2024-06-15 12:00:00, got %s", got)
	}
}

func TestLexicalOrderMatchesChronological(t *testing.T) {
	early := FormatSQLUTC(time.Date(2024, 6, 9, 23, 0, 0, 0, time.UTC))
	late := FormatSQLUTC(time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC))

	if !(early < late) {
		t.Errorf("Expected %q < %q", early, late)
	}
}

func TestDayHelpers(t *testing.T) {
	at := time.Date(2024, 6, 15, 18, 30, 12, 0, time.UTC)

	if got := DayKey(at); got != "2024-06-15" {
		t.Errorf("Expected day key 2024-06-15, got %s", got)
	}
	if got := DayStart(at); got != time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Unexpected day start %v", got)
	}
	if got := DayEnd(at); got != time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC) {
		t.Errorf("Unexpected day end %v", got)
	}
}

func TestParseFlexible(t *testing.T) {
	sql, err := ParseFlexible("2024-06-15 12:00:00")
	if err != nil {
		t.Fatalf("SQL form failed: %v", err)
	}
	rfc, err := ParseFlexible("2024-06-15T12:00:00Z")
	if err != nil {
		t.Fatalf("RFC form failed: %v", err)
	}
	if !sql.Equal(rfc) {
		t.Errorf("Expected both forms to parse to the same instant")
	}

	if _, err := ParseFlexible("june 15th"); err == nil {
		t.Error("Expected error for unparseable input")
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want *float64
	}{
		{"nil", nil, nil},
		{"float", 42.5, ptr(42.5)},
		{"int", 7, ptr(7.0)},
		{"numeric string", "3.25", ptr(3.25)},
		{"padded string", "  12 ", ptr(12.0)},
		{"empty string", "", nil},
		{"garbage string", "abc", nil},
		{"json number", json.Number("99.5"), ptr(99.5)},
		{"bad json number", json.Number("x"), nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		got := ToFloat(tt.in)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("%s: nil mismatch, got %v", tt.name, got)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("%s: want %f, got %f", tt.name, *tt.want, *got)
		}
	}
}

func TestToFloatNeverReturnsNonFinite(t *testing.T) {
	inputs := []interface{}{"NaN", "Inf", "-Inf"}
	for _, in := range inputs {
		if got := ToFloat(in); got != nil {
			t.Errorf("Expected nil for %v, got %f", in, *got)
		}
	}
}

func ptr(f float64) *float64 { return &f }
