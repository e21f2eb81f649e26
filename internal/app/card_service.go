package app

import (
	"strings"
	"time"

	"github.com/Roi-salemm/lunaris/internal/astro"
	"github.com/Roi-salemm/lunaris/internal/cache"
	"github.com/Roi-salemm/lunaris/internal/constants"
	"github.com/Roi-salemm/lunaris/internal/domain"
	"github.com/Roi-salemm/lunaris/internal/logger"
	"github.com/Roi-salemm/lunaris/internal/store"
	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

// placeholder shown for fields no table could back.
const fieldPlaceholder = "..."

// dayPhaseInfo is the per-day slice of the derivation inputs: the phase
// label for the day and the coarse noon longitude used when no fine-grained
// point exists.
type dayPhaseInfo struct {
	PhaseKey      string
	PhaseChangeAt *string
	IllumFrac     *float64
	NoonLonDeg    *float64
}

// CardService derives the composite tropical moon card for an instant. It
// never fails: every missing input degrades to a placeholder field so the
// card is always renderable.
type CardService struct {
	Store  *store.DB
	Logger *logger.Logger

	cards *cache.LRU[domain.MoonCard]
	days  *cache.LRU[dayPhaseInfo]
}

func NewCardService(db *store.DB, log *logger.Logger) *CardService {
	return &CardService{
		Store:  db,
		Logger: log,
		cards:  cache.NewLRU[domain.MoonCard](constants.CardCacheSize),
		days:   cache.NewLRU[dayPhaseInfo](constants.DayInfoCacheSize),
	}
}

// Invalidate drops the memoized cards and day info. Called after a sync
// lands fresh rows.
func (s *CardService) Invalidate() {
	s.cards.Clear()
	s.days.Clear()
}

// Card builds (or returns the memoized) moon card for t, keyed by the exact
// minute.
func (s *CardService) Card(t time.Time) domain.MoonCard {
	key := timeutil.FormatSQLUTC(t.UTC().Truncate(time.Minute))
	if card, ok := s.cards.Get(key); ok {
		return card
	}

	info := s.dayInfo(t)
	card := domain.MoonCard{
		TsUTC:         key,
		SignIndex:     -1,
		SignName:      fieldPlaceholder,
		DegreeDMS:     fieldPlaceholder,
		PhaseKey:      info.PhaseKey,
		PhaseChangeAt: info.PhaseChangeAt,
		IllumFrac:     info.IllumFrac,
		Precision:     domain.PrecisionDay,
		VoCStatus:     domain.VoCStatusUnavailable,
	}

	point, err := s.Store.NearestCanonical(key)
	if err != nil {
		s.Logger.Warn("Canonical lookup failed, degrading card", "ts", key, "error", err)
		point = nil
	}

	var lon *float64
	if point != nil && point.MoonLonDeg != nil && !point.Time().IsZero() {
		lon = point.MoonLonDeg
		card.Precision = domain.PrecisionMinute
		if point.IllumFrac != nil {
			card.IllumFrac = point.IllumFrac
		}
	} else if info.NoonLonDeg != nil {
		lon = info.NoonLonDeg
	}

	if lon != nil {
		n := astro.Normalize360(*lon)
		card.LongitudeDeg = &n
		card.SignIndex = astro.SignIndex(n)
		card.SignName = astro.SignNames[card.SignIndex]
		deg := astro.DegreeInSign(n)
		card.DegreeInSign = &deg
		card.DegreeDMS = astro.FormatDMS(deg)

		if card.Precision == domain.PrecisionMinute {
			card.IngressAt = s.findIngress(point, card.SignIndex)
			card.EgressAt = s.findEgress(point, card.SignIndex)
		} else {
			// Coarse daily fallback: the sign boundary is only known to
			// the day.
			start := timeutil.DayStart(t)
			end := timeutil.DayEnd(t)
			card.IngressAt = &start
			card.EgressAt = &end
		}
	}

	s.cards.Set(key, card)
	return card
}

// dayInfo resolves the per-day phase inputs, memoized by day key.
func (s *CardService) dayInfo(t time.Time) dayPhaseInfo {
	key := timeutil.DayKey(t)
	if info, ok := s.days.Get(key); ok {
		return info
	}

	info := dayPhaseInfo{PhaseKey: fieldPlaceholder}

	events, err := s.Store.EventsForDay(key)
	if err != nil {
		s.Logger.Warn("Day phase lookup failed", "day", key, "error", err)
	}
	if len(events) > 0 {
		ev := events[0]
		info.PhaseKey = phaseKey(ev)
		info.PhaseChangeAt = phaseChangeAt(ev, timeutil.DayStart(t))
		if ev.IlluminationPc != nil {
			frac := *ev.IlluminationPc / 100
			info.IllumFrac = &frac
		}
	}

	// The coarse fallback longitude comes from the hourly table at noon,
	// accepted only when the nearest sample is on the requested day.
	noon := timeutil.DayStart(t).Add(12 * time.Hour)
	eph, err := s.Store.NearestEphemeris(timeutil.FormatSQLUTC(noon))
	if err != nil {
		s.Logger.Warn("Noon ephemeris lookup failed", "day", key, "error", err)
	}
	if eph != nil && eph.MoonLonDeg != nil && strings.HasPrefix(eph.TsUTC, key) {
		info.NoonLonDeg = eph.MoonLonDeg
	}

	s.days.Set(key, info)
	return info
}

// findIngress walks backward in fixed steps until the sign index changes,
// then interpolates the crossing against the sign's lower boundary. Every
// non-crossing exit falls back to UTC day start.
func (s *CardService) findIngress(point *domain.CanonicalRow, signIdx int) *time.Time {
	boundary, _ := astro.SignBoundary(*point.MoonLonDeg)
	innerT := point.Time()
	innerLon := *point.MoonLonDeg

	cursor := innerT
	for i := 0; i < constants.BoundaryMaxSteps; i++ {
		cursor = cursor.Add(-constants.BoundaryStep)
		p, err := s.Store.NearestCanonical(timeutil.FormatSQLUTC(cursor))
		if err != nil || p == nil || p.MoonLonDeg == nil || p.Time().IsZero() {
			break
		}
		pt := p.Time()
		if astro.SignIndex(*p.MoonLonDeg) != signIdx {
			if ct, ok := astro.CrossingTime(pt, innerT, *p.MoonLonDeg, innerLon, boundary); ok {
				return &ct
			}
			// No angular movement between the samples: the raw earlier
			// timestamp stands in for the crossing.
			return &pt
		}
		innerT = pt
		innerLon = *p.MoonLonDeg
	}

	start := timeutil.DayStart(point.Time())
	return &start
}

// findEgress mirrors findIngress forward against the sign's upper boundary,
// falling back to UTC day end.
func (s *CardService) findEgress(point *domain.CanonicalRow, signIdx int) *time.Time {
	_, boundary := astro.SignBoundary(*point.MoonLonDeg)
	innerT := point.Time()
	innerLon := *point.MoonLonDeg

	cursor := innerT
	for i := 0; i < constants.BoundaryMaxSteps; i++ {
		cursor = cursor.Add(constants.BoundaryStep)
		p, err := s.Store.NearestCanonical(timeutil.FormatSQLUTC(cursor))
		if err != nil || p == nil || p.MoonLonDeg == nil || p.Time().IsZero() {
			break
		}
		pt := p.Time()
		if astro.SignIndex(*p.MoonLonDeg) != signIdx {
			if ct, ok := astro.CrossingTime(innerT, pt, innerLon, *p.MoonLonDeg, boundary); ok {
				return &ct
			}
			return &pt
		}
		innerT = pt
		innerLon = *p.MoonLonDeg
	}

	end := timeutil.DayEnd(point.Time())
	return &end
}

// phaseKey slugs the event's type or name into a stable key.
func phaseKey(ev domain.PhaseEventRow) string {
	if ev.EventType != nil && *ev.EventType != "" {
		return slug(*ev.EventType)
	}
	if ev.PhaseName != nil && *ev.PhaseName != "" {
		return slug(*ev.PhaseName)
	}
	return fieldPlaceholder
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// phaseChangeAt normalizes the event's phase hour to ISO-8601 UTC, falling
// back to the row key itself.
func phaseChangeAt(ev domain.PhaseEventRow, day time.Time) *string {
	if ev.PhaseHour != nil {
		if iso, ok := astro.NormalizePhaseHour(*ev.PhaseHour, day); ok {
			return &iso
		}
	}
	if t, err := timeutil.ParseSQLUTC(ev.TsUTC); err == nil {
		iso := t.Format(time.RFC3339)
		return &iso
	}
	return nil
}
