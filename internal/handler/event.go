package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/event"
)

type CreateEventRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description"`
	EventDate   string  `json:"event_date" validate:"required,datetime=2006-01-02"`
}

type EventHandler struct {
	repo     event.Repository
	validate *validator.Validate
}

func NewEventHandler(repo event.Repository) *EventHandler {
	return &EventHandler{repo: repo, validate: validator.New()}
}

func (h *EventHandler) RegisterRoutes(router chi.Router) {
	router.Get("/events", h.handleListActive)
	router.Post("/events", h.handleCreate)
	router.Delete("/events/{id}", h.handleDelete)
}

func (h *EventHandler) handleListActive(w http.ResponseWriter, r *http.Request) {
	events, err := h.repo.ListActive(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list events")
		events = []event.Event{}
	}
	if events == nil {
		events = []event.Event{}
	}
	respondWithJSON(w, http.StatusOK, events)
}

func (h *EventHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event_date")
		return
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if eventDate.Before(today) {
		respondWithError(w, http.StatusBadRequest, "Event date cannot be in the past")
		return
	}

	e := &event.Event{
		Name:        req.Name,
		Description: req.Description,
		EventDate:   eventDate,
	}

	if _, err := h.repo.Create(r.Context(), e); err != nil {
		log.Error().Err(err).Msg("Failed to create event")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create event")
		return
	}
	respondWithJSON(w, http.StatusCreated, e)
}

func (h *EventHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete event")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}
