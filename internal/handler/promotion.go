package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/promotion"
)

type CreatePromotionRequest struct {
	Name      string   `json:"name" validate:"required,min=2"`
	PromoType string   `json:"type" validate:"required,oneof=2x1 percent fixed"`
	Value     *float64 `json:"value" validate:"omitempty,gt=0"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type PromotionHandler struct {
	repo     promotion.Repository
	validate *validator.Validate
}

func NewPromotionHandler(repo promotion.Repository) *PromotionHandler {
	return &PromotionHandler{repo: repo, validate: validator.New()}
}

func (h *PromotionHandler) RegisterRoutes(router chi.Router) {
	router.Get("/promotions", h.handleListActive)
	router.Post("/promotions", h.handleCreate)
	router.Get("/coupons/{code}", h.handleValidateCoupon)
}

func (h *PromotionHandler) handleListActive(w http.ResponseWriter, r *http.Request) {
	promos, err := h.repo.ListActive(r.Context(), time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list promotions")
		promos = []promotion.Promotion{}
	}
	if promos == nil {
		promos = []promotion.Promotion{}
	}
	respondWithJSON(w, http.StatusOK, promos)
}

func (h *PromotionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePromotionRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid start_date")
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid end_date")
		return
	}
	if endDate.Before(startDate) {
		respondWithError(w, http.StatusBadRequest, "end_date must not precede start_date")
		return
	}

	p := &promotion.Promotion{
		Name:      req.Name,
		PromoType: req.PromoType,
		Value:     req.Value,
		StartDate: startDate,
		EndDate:   endDate,
	}

	if _, err := h.repo.Create(r.Context(), p); err != nil {
		log.Error().Err(err).Msg("Failed to create promotion")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create promotion")
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *PromotionHandler) handleValidateCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	coupon, err := h.repo.GetCoupon(r.Context(), code, time.Now())
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Coupon invalid or expired")
		return
	}
	respondWithJSON(w, http.StatusOK, coupon)
}
