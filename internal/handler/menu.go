package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/menu"
)

type ProductRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    *string `json:"category"`
	Station     *string `json:"station" validate:"omitempty,oneof=kitchen bar"`
}

type MenuHandler struct {
	repo     menu.Repository
	validate *validator.Validate
}

func NewMenuHandler(repo menu.Repository) *MenuHandler {
	return &MenuHandler{repo: repo, validate: validator.New()}
}

func (h *MenuHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleList)
	router.Get("/products/{id}", h.handleGet)
	router.Post("/products", h.handleCreate)
	router.Put("/products/{id}", h.handleUpdate)
	router.Delete("/products/{id}", h.handleDeactivate)
}

func (h *MenuHandler) handleList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"

	products, err := h.repo.List(r.Context(), activeOnly)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		products = []menu.Product{}
	}
	if products == nil {
		products = []menu.Product{}
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *MenuHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *MenuHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	product := &menu.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Station:     req.Station,
		IsActive:    true,
	}

	if _, err := h.repo.Create(r.Context(), product); err != nil {
		log.Error().Err(err).Msg("Failed to create product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create product")
		return
	}
	respondWithJSON(w, http.StatusCreated, product)
}

func (h *MenuHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	product := &menu.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Station:     req.Station,
		IsActive:    true,
	}

	if err := h.repo.Update(r.Context(), product); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *MenuHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to deactivate product")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deactivated"})
}
