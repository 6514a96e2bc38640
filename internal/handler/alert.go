package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/alert"
)

type AlertHandler struct {
	alerts alert.Emitter
}

func NewAlertHandler(alerts alert.Emitter) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) RegisterRoutes(router chi.Router) {
	router.Get("/alerts", h.handleUnread)
	router.Put("/alerts/{id}/read", h.handleMarkRead)
}

func (h *AlertHandler) handleUnread(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.Unread(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list unread alerts")
		alerts = []alert.Alert{}
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	respondWithJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.alerts.MarkRead(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to mark alert read")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Alert marked read"})
}
