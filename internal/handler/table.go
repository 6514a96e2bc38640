package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/table"
)

type CreateTableRequest struct {
	Name string `json:"table_name" validate:"required,min=1"`
}

type SetTableStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=free occupied"`
}

type TableHandler struct {
	repo     table.Repository
	validate *validator.Validate
}

func NewTableHandler(repo table.Repository) *TableHandler {
	return &TableHandler{repo: repo, validate: validator.New()}
}

func (h *TableHandler) RegisterRoutes(router chi.Router) {
	router.Get("/tables", h.handleList)
	router.Post("/tables", h.handleCreate)
	router.Put("/tables/{id}/status", h.handleSetStatus)
	router.Delete("/tables/{id}", h.handleDelete)
}

func (h *TableHandler) handleList(w http.ResponseWriter, r *http.Request) {
	tables, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tables")
		tables = []table.Table{}
	}
	if tables == nil {
		tables = []table.Table{}
	}
	respondWithJSON(w, http.StatusOK, tables)
}

func (h *TableHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	id, err := h.repo.Create(r.Context(), req.Name)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create table")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create table")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]int64{"table_id": id})
}

func (h *TableHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req SetTableStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.repo.SetStatus(r.Context(), id, table.Status(req.Status)); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update table status")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Table status updated"})
}

func (h *TableHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete table")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Table deleted"})
}
