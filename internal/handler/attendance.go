package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/attendance"
)

type ClockInOutRequest struct {
	PIN string `json:"pin" validate:"required,min=4"`
}

type AttendanceHandler struct {
	service  attendance.Service
	validate *validator.Validate
}

func NewAttendanceHandler(service attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service, validate: validator.New()}
}

func (h *AttendanceHandler) RegisterRoutes(router chi.Router) {
	router.Post("/attendance/clock-in-out", h.handleClockInOut)
	router.Get("/attendance/report", h.handleReport)
}

func (h *AttendanceHandler) handleClockInOut(w http.ResponseWriter, r *http.Request) {
	var req ClockInOutRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	result, err := h.service.ClockInOut(r.Context(), req.PIN)
	if err != nil {
		log.Warn().Err(err).Msg("Clock-in/out rejected")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to register attendance")
		return
	}

	message := "Clock-in recorded"
	if result.Direction == attendance.DirectionOut {
		message = "Clock-out recorded"
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *AttendanceHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start_date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end_date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	var userID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid user_id")
			return
		}
		userID = &id
	}

	report, err := h.service.Report(r.Context(), start, end, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load attendance report")
		report = []attendance.ReportRow{}
	}
	if report == nil {
		report = []attendance.ReportRow{}
	}
	respondWithJSON(w, http.StatusOK, report)
}
