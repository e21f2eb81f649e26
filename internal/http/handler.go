package httpapp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Roi-salemm/lunaris/internal/app"
	"github.com/Roi-salemm/lunaris/internal/logger"
	"github.com/Roi-salemm/lunaris/internal/source"
	"github.com/Roi-salemm/lunaris/internal/store"
	"github.com/Roi-salemm/lunaris/internal/timeutil"
)

type Handler struct {
	SyncService     *app.SyncService
	SnapshotService *app.SnapshotService
	CardService     *app.CardService
	Store           *store.DB
	Logger          *logger.Logger
}

func NewHandler(sync *app.SyncService, snap *app.SnapshotService, cards *app.CardService, db *store.DB, log *logger.Logger) *Handler {
	return &Handler{
		SyncService:     sync,
		SnapshotService: snap,
		CardService:     cards,
		Store:           db,
		Logger:          log,
	}
}

// tsParam parses the optional ts query parameter, defaulting to now.
func tsParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("ts")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return timeutil.ParseFlexible(raw)
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	t, err := tsParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid ts parameter", "BAD_REQUEST")
		return
	}
	WriteSuccess(w, h.CardService.Card(t))
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	t, err := tsParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid ts parameter", "BAD_REQUEST")
		return
	}

	eph, err := h.SnapshotService.Ephemeris(t)
	if err != nil {
		h.Logger.Error("Ephemeris snapshot failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "snapshot query failed")
		return
	}
	phase, err := h.SnapshotService.Phase(t)
	if err != nil {
		h.Logger.Error("Phase snapshot failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "snapshot query failed")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"ephemeris": eph,
		"phase":     phase,
	})
}

func (h *Handler) GetNewMoons(w http.ResponseWriter, r *http.Request) {
	t, err := tsParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid ts parameter", "BAD_REQUEST")
		return
	}
	window, err := h.SnapshotService.NewMoonWindow(t)
	if err != nil {
		h.Logger.Error("New moon lookup failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "new moon query failed")
		return
	}
	WriteSuccess(w, window)
}

func (h *Handler) PostSyncEphemeris(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	result, err := h.SyncService.SyncEphemeris(r.Context(), force)
	if err != nil {
		h.writeSyncError(w, err)
		return
	}
	h.CardService.Invalidate()
	WriteSuccess(w, result)
}

func (h *Handler) PostSyncCanonical(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	result, err := h.SyncService.SyncCanonical(r.Context(), force)
	if err != nil {
		h.writeSyncError(w, err)
		return
	}
	if !result.Skipped {
		h.CardService.Invalidate()
	}
	WriteSuccess(w, result)
}

func (h *Handler) GetSyncRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.SyncService.ListRuns(0)
	if err != nil {
		h.Logger.Error("Sync run listing failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "sync run query failed")
		return
	}
	WriteSuccess(w, runs)
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	WriteSuccess(w, map[string]string{"status": "ok"})
}

func (h *Handler) writeSyncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, source.ErrMalformedPayload):
		h.Logger.Error("Sync failed on malformed payload", "error", err)
		WriteError(w, http.StatusBadGateway, "upstream payload violated the contract", "MALFORMED_PAYLOAD")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusRequestTimeout, "sync cancelled", "CANCELLED")
	default:
		h.Logger.Error("Sync failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "sync failed")
	}
}
