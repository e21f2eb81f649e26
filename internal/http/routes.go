package httpapp

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/moon/card", h.GetCard)
		r.Get("/moon/snapshot", h.GetSnapshot)
		r.Get("/moon/new-moons", h.GetNewMoons)

		r.Post("/sync/ephemeris", h.PostSyncEphemeris)
		r.Post("/sync/canonical", h.PostSyncCanonical)
		r.Get("/sync/runs", h.GetSyncRuns)
	})
}
