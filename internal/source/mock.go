package source

import (
	"context"
	"sync"
	"time"

	"github.com/Roi-salemm/lunaris/internal/domain"
	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

// MockProvider generates synthetic rows at a fixed cadence per table. Tests
// use the call counters to assert which endpoints a sync actually hit.
type MockProvider struct {
	mu sync.Mutex

	EphemerisStep time.Duration
	EventStep     time.Duration
	CanonicalStep time.Duration

	// Err, when set, is returned by every fetch.
	Err error

	EphemerisCalls int
	EventCalls     int
	CanonicalCalls int

	// Windows records every requested range in call order.
	Windows []domain.Window
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		EphemerisStep: time.Hour,
		EventStep:     7 * 24 * time.Hour,
		CanonicalStep: 10 * time.Minute,
	}
}

func (p *MockProvider) FetchEphemeris(ctx context.Context, w domain.Window) ([]domain.EphemerisRow, error) {
	p.mu.Lock()
	p.EphemerisCalls++
	p.Windows = append(p.Windows, w)
	err := p.Err
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []domain.EphemerisRow
	for _, t := range sampleTimes(w, p.EphemerisStep) {
		illum := 50.0
		age := 14.7
		rows = append(rows, domain.EphemerisRow{
			TsUTC:          timeutil.FormatSQLUTC(t),
			IlluminationPc: &illum,
			AgeDays:        &age,
		})
	}
	return rows, nil
}

func (p *MockProvider) FetchPhaseEvents(ctx context.Context, w domain.Window) ([]domain.PhaseEventRow, error) {
	p.mu.Lock()
	p.EventCalls++
	p.Windows = append(p.Windows, w)
	err := p.Err
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := "New Moon"
	var rows []domain.PhaseEventRow
	for _, t := range sampleTimes(w, p.EventStep) {
		rows = append(rows, domain.PhaseEventRow{
			TsUTC:     timeutil.FormatSQLUTC(t),
			PhaseName: &name,
		})
	}
	return rows, nil
}

func (p *MockProvider) FetchCanonical(ctx context.Context, w domain.Window) ([]domain.CanonicalRow, error) {
	p.mu.Lock()
	p.CanonicalCalls++
	p.Windows = append(p.Windows, w)
	err := p.Err
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []domain.CanonicalRow
	for _, t := range sampleTimes(w, p.CanonicalStep) {
		// ~13.2°/day lunar motion keyed off the unix epoch, so longitudes
		// are continuous across separately fetched segments.
		lon := float64(t.Unix()) / 86400 * 13.2
		lonNorm := lon - 360*float64(int(lon/360))
		sun := 80.0
		frac := 0.5
		rows = append(rows, domain.CanonicalRow{
			TsUTC:      timeutil.FormatSQLUTC(t),
			MoonLonDeg: &lonNorm,
			SunLonDeg:  &sun,
			IllumFrac:  &frac,
		})
	}
	return rows, nil
}

// sampleTimes steps through the window at cadence, always including the
// window end so a generated batch covers the exact requested range.
func sampleTimes(w domain.Window, step time.Duration) []time.Time {
	var times []time.Time
	for t := w.Start; !t.After(w.End); t = t.Add(step) {
		times = append(times, t)
	}
	if len(times) == 0 || !times[len(times)-1].Equal(w.End) {
		times = append(times, w.End)
	}
	return times
}

// Calls returns the total number of fetches across all endpoints.
func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.EphemerisCalls + p.EventCalls + p.CanonicalCalls
}

var _ Provider = (*MockProvider)(nil)
