package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/reservation"
)

type CreateReservationRequest struct {
	CustomerName  string  `json:"customer_name" validate:"required,min=2"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
	PartySize     int     `json:"party_size" validate:"required,gt=0"`
	ReservedFor   string  `json:"reserved_for" validate:"required"`
	TableID       *int64  `json:"table_id"`
}

type ReservationHandler struct {
	service  reservation.Service
	validate *validator.Validate
}

func NewReservationHandler(service reservation.Service) *ReservationHandler {
	return &ReservationHandler{service: service, validate: validator.New()}
}

func (h *ReservationHandler) RegisterRoutes(router chi.Router) {
	router.Get("/reservations", h.handleList)
	router.Post("/reservations", h.handleCreate)
	router.Put("/reservations/{id}/confirm", h.handleConfirm)
	router.Put("/reservations/{id}/cancel", h.handleCancel)
}

func (h *ReservationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.service.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list reservations")
		reservations = []reservation.Reservation{}
	}
	if reservations == nil {
		reservations = []reservation.Reservation{}
	}
	respondWithJSON(w, http.StatusOK, reservations)
}

func (h *ReservationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	reservedFor, err := time.Parse(time.RFC3339, req.ReservedFor)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid reserved_for, expected RFC 3339")
		return
	}

	res, err := h.service.Create(r.Context(), &reservation.Reservation{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		PartySize:     req.PartySize,
		ReservedFor:   reservedFor,
		TableID:       req.TableID,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create reservation")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create reservation")
		return
	}
	respondWithJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to confirm reservation")
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to cancel reservation")
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
