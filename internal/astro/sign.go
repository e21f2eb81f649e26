// Package astro contains the pure angular math behind the derivation engine:
// tropical sign decomposition, longitude wraparound handling and crossing
// interpolation. Everything here is deterministic and store-free.
package astro

import (
	"fmt"
	"math"
)

// SignNames are the 12 tropical signs, 0-indexed from Aries.
var SignNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Normalize360 maps any angle into [0, 360).
func Normalize360(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}

// SignIndex returns the tropical sign (0-11) for an ecliptic longitude.
// Each sign spans exactly 30 degrees; 360 wraps back to Aries.
func SignIndex(lonDeg float64) int {
	idx := int(math.Floor(Normalize360(lonDeg) / 30))
	if idx > 11 {
		idx = 0
	}
	return idx
}

// SignName returns the sign name for a longitude.
func SignName(lonDeg float64) string {
	return SignNames[SignIndex(lonDeg)]
}

// DegreeInSign returns the longitude's offset inside its sign, [0, 30).
func DegreeInSign(lonDeg float64) float64 {
	lon := Normalize360(lonDeg)
	return lon - float64(SignIndex(lon))*30
}

// FormatDMS renders a degree offset as D°MM'SS" with sexagesimal carry:
// seconds rounding to 60 roll into minutes, minutes into degrees.
func FormatDMS(deg float64) string {
	d := int(deg)
	rem := (deg - float64(d)) * 60
	m := int(rem)
	s := int(math.Round((rem - float64(m)) * 60))
	if s == 60 {
		s = 0
		m++
	}
	if m == 60 {
		m = 0
		d++
	}
	return fmt.Sprintf("%d°%02d'%02d\"", d, m, s)
}

// SignBoundary returns the longitude of the lower edge of the sign containing
// lon, and the upper edge (entry and exit boundaries for a prograde body).
func SignBoundary(lonDeg float64) (lower, upper float64) {
	idx := SignIndex(lonDeg)
	lower = float64(idx) * 30
	upper = lower + 30
	return
}
