package astro

import (
	"regexp"
	"strings"
	"time"

	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

var bareClockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// NormalizePhaseHour turns the upstream phase_hour field into a uniform
// ISO-8601 UTC string. Upstream emits three shapes: a bare clock (HH:MM,
// resolved against day), a full ISO-8601 string, or a SQL-UTC timestamp.
// Returns false when the value fits none of them.
func NormalizePhaseHour(raw string, day time.Time) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := bareClockRe.FindStringSubmatch(s); m != nil {
		hh := atoi2(m[1])
		mm := atoi2(m[2])
		ss := 0
		if m[3] != "" {
			ss = atoi2(m[3])
		}
		if hh > 23 || mm > 59 || ss > 59 {
			return "", false
		}
		d := day.UTC()
		t := time.Date(d.Year(), d.Month(), d.Day(), hh, mm, ss, 0, time.UTC)
		return t.Format(time.RFC3339), true
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339), true
	}
	if t, err := timeutil.ParseSQLUTC(s); err == nil {
		return t.Format(time.RFC3339), true
	}
	return "", false
}

func atoi2(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// LooksLikeNewMoon is the heuristic used by the bounded new-moon search:
// a name/type mentioning "new"/"nouvelle", or a phase angle within a degree
// of conjunction.
func LooksLikeNewMoon(eventType, phaseName *string, phaseAngleDeg *float64) bool {
	for _, s := range []*string{eventType, phaseName} {
		if s == nil {
			continue
		}
		lower := strings.ToLower(*s)
		if strings.Contains(lower, "new") || strings.Contains(lower, "nouvelle") {
			return true
		}
	}
	if phaseAngleDeg != nil {
		a := Normalize360(*phaseAngleDeg)
		if a <= 1 || a >= 359 {
			return true
		}
	}
	return false
}
