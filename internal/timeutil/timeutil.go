// Package timeutil holds the UTC timestamp conventions shared by the store,
// the sync layer and the derivation engine. Every persisted timestamp uses the
// SQL-UTC layout so that lexical order on the primary key equals chronological
// order.
package timeutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// SQLUTCLayout is the canonical timestamp format for table keys.
	SQLUTCLayout = "2006-01-02 15:04:05"
	// DayKeyLayout is the UTC day key used for sync bookkeeping.
	DayKeyLayout = "2006-01-02"
)

// FormatSQLUTC renders t as a SQL-UTC timestamp string (second precision).
func FormatSQLUTC(t time.Time) string {
	return t.UTC().Format(SQLUTCLayout)
}

// ParseSQLUTC parses a SQL-UTC timestamp string into a UTC instant.
func ParseSQLUTC(s string) (time.Time, error) {
	return time.ParseInLocation(SQLUTCLayout, s, time.UTC)
}

// DayKey returns t's UTC calendar day as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// DayStart returns 00:00:00 UTC of t's calendar day.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayEnd returns 23:59:59 UTC of t's calendar day.
func DayEnd(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 0, time.UTC)
}

// ParseFlexible accepts either the SQL-UTC layout or RFC 3339. Used at the API
// boundary where mobile clients send both forms.
func ParseFlexible(s string) (time.Time, error) {
	if t, err := ParseSQLUTC(s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ToFloat coerces an upstream JSON value into *float64. Absent values and
// anything non-finite come back as nil; numeric strings are parsed. Callers
// never see NaN.
func ToFloat(v interface{}) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return finite(float64(n))
	case int64:
		return finite(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return finite(f)
	default:
		return nil
	}
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
