package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/audit"
)

type AuditHandler struct {
	repo audit.Repository
}

func NewAuditHandler(repo audit.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

func (h *AuditHandler) RegisterRoutes(router chi.Router) {
	router.Get("/audit-logs", h.handleList)
}

func (h *AuditHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list audit logs")
		entries = []audit.Entry{}
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	respondWithJSON(w, http.StatusOK, entries)
}
