// Package source talks to the remote ephemeris API. It is the only place
// upstream payloads are decoded; everything past the Provider boundary works
// with typed domain rows.
package source

import (
	"context"
	"errors"

	"github.com/Roi-salemm/lunaris/internal/domain"
)

// ErrMalformedPayload marks an upstream contract violation: the required
// array field is missing or of the wrong shape. Never soft-failed — a source
// emitting the wrong shape must not feed the cache.
var ErrMalformedPayload = errors.New("malformed upstream payload")

// Provider fetches time-series rows for a closed UTC window.
type Provider interface {
	FetchEphemeris(ctx context.Context, w domain.Window) ([]domain.EphemerisRow, error)
	FetchPhaseEvents(ctx context.Context, w domain.Window) ([]domain.PhaseEventRow, error)
	FetchCanonical(ctx context.Context, w domain.Window) ([]domain.CanonicalRow, error)
}
