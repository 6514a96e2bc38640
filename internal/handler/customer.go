package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/customer"
)

type CustomerRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Notes    *string `json:"notes"`
}

type CustomerHandler struct {
	repo     customer.Repository
	validate *validator.Validate
}

func NewCustomerHandler(repo customer.Repository) *CustomerHandler {
	return &CustomerHandler{repo: repo, validate: validator.New()}
}

func (h *CustomerHandler) RegisterRoutes(router chi.Router) {
	router.Get("/customers", h.handleList)
	router.Get("/customers/{id}", h.handleGet)
	router.Get("/customers/{id}/history", h.handleHistory)
	router.Post("/customers", h.handleCreate)
	router.Put("/customers/{id}", h.handleUpdate)
	router.Delete("/customers/{id}", h.handleDelete)
}

func (h *CustomerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	customers, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list customers")
		customers = []customer.Customer{}
	}
	if customers == nil {
		customers = []customer.Customer{}
	}
	respondWithJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get customer")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	visits, err := h.repo.History(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("customer_id", id).Msg("Failed to load customer history")
		visits = []customer.Visit{}
	}
	if visits == nil {
		visits = []customer.Visit{}
	}
	respondWithJSON(w, http.StatusOK, visits)
}

func (h *CustomerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c := &customer.Customer{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Notes:    req.Notes,
	}

	if _, err := h.repo.Create(r.Context(), c); err != nil {
		log.Error().Err(err).Msg("Failed to create customer")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create customer")
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req CustomerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c := &customer.Customer{
		ID:       id,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Notes:    req.Notes,
	}

	if err := h.repo.Update(r.Context(), c); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update customer")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete customer")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted"})
}
