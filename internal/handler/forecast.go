package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/forecast"
)

type ForecastHandler struct {
	service forecast.Service
}

func NewForecastHandler(service forecast.Service) *ForecastHandler {
	return &ForecastHandler{service: service}
}

func (h *ForecastHandler) RegisterRoutes(router chi.Router) {
	router.Get("/forecast/demand", h.handleDemand)
	router.Get("/forecast/occupancy", h.handleOccupancy)
	router.Post("/forecast/retrain", h.handleRetrain)
}

// parseDateStr reads the optional date_str query parameter. A false second
// return means the response was already written.
func parseDateStr(w http.ResponseWriter, r *http.Request) (*time.Time, bool) {
	dateStr := r.URL.Query().Get("date_str")
	if dateStr == "" {
		return nil, true
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date_str, expected YYYY-MM-DD")
		return nil, false
	}
	return &date, true
}

func (h *ForecastHandler) handleDemand(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateStr(w, r)
	if !ok {
		return
	}

	if date != nil {
		prediction, err := h.service.DemandFor(*date)
		if err != nil {
			log.Error().Err(err).Msg("Failed to compute demand forecast")
			respondWithError(w, http.StatusServiceUnavailable, "Forecast model unavailable, train it first")
			return
		}
		respondWithJSON(w, http.StatusOK, prediction)
		return
	}

	demand, err := h.service.WeeklyDemand()
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute demand forecast")
		respondWithError(w, http.StatusServiceUnavailable, "Forecast model unavailable, train it first")
		return
	}
	respondWithJSON(w, http.StatusOK, demand)
}

func (h *ForecastHandler) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateStr(w, r)
	if !ok {
		return
	}

	if date != nil {
		prediction, err := h.service.OccupancyFor(*date)
		if err != nil {
			log.Error().Err(err).Msg("Failed to compute occupancy forecast")
			respondWithError(w, http.StatusServiceUnavailable, "Forecast model unavailable, train it first")
			return
		}
		respondWithJSON(w, http.StatusOK, prediction)
		return
	}

	occupancy, err := h.service.WeeklyOccupancy()
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute occupancy forecast")
		respondWithError(w, http.StatusServiceUnavailable, "Forecast model unavailable, train it first")
		return
	}
	respondWithJSON(w, http.StatusOK, occupancy)
}

func (h *ForecastHandler) handleRetrain(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Retrain(); err != nil {
		log.Error().Err(err).Msg("Failed to start retraining")
		respondWithError(w, http.StatusInternalServerError, "Failed to start retraining")
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Retraining started"})
}
