package astro

import (
	"math"
	"time"
)

// degenerate movement threshold for crossing interpolation, in degrees.
const minAngularMovement = 1e-9

// SignedDelta returns the shortest signed angular distance from a to b,
// in [-180, 180]. Used to unwrap longitudes across the 0/360 seam.
func SignedDelta(aDeg, bDeg float64) float64 {
	d := math.Mod(Normalize360(bDeg)-Normalize360(aDeg), 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// CrossingFraction solves for the fraction t in [0,1] at which the longitude
// path from lon0 to lon1 (shortest arc) crosses boundary. The endpoint and
// the boundary are unwrapped relative to lon0 so a 359°→1° step crossing 0°
// interpolates inside the interval instead of extrapolating. Returns false
// when there is no angular movement to interpolate over.
func CrossingFraction(lon0, lon1, boundaryDeg float64) (float64, bool) {
	delta := SignedDelta(lon0, lon1)
	if math.Abs(delta) < minAngularMovement {
		return 0, false
	}

	start := Normalize360(lon0)
	end := start + delta

	// Unwrap the boundary onto the same branch as the travelled arc.
	b := Normalize360(boundaryDeg)
	for b < math.Min(start, end)-180 {
		b += 360
	}
	for b > math.Max(start, end)+180 {
		b -= 360
	}

	t := (b - start) / (end - start)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t, true
}

// CrossingTime linearly interpolates the instant between t0 and t1 at which
// the longitude crosses boundary. ok is false when the samples show no
// movement; the caller then falls back to a raw sample timestamp.
func CrossingTime(t0, t1 time.Time, lon0, lon1, boundaryDeg float64) (time.Time, bool) {
	frac, ok := CrossingFraction(lon0, lon1, boundaryDeg)
	if !ok {
		return time.Time{}, false
	}
	span := t1.Sub(t0)
	return t0.Add(time.Duration(float64(span) * frac)), true
}

// PhaseAngle derives the moon-sun elongation in [0, 360).
func PhaseAngle(moonLonDeg, sunLonDeg float64) float64 {
	return Normalize360(moonLonDeg - sunLonDeg)
}
