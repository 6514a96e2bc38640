package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/attendance"
	"github.com/doppler-bar/barpos/internal/auth"
	"github.com/doppler-bar/barpos/internal/customer"
	"github.com/doppler-bar/barpos/internal/event"
	"github.com/doppler-bar/barpos/internal/inventory"
	"github.com/doppler-bar/barpos/internal/menu"
	"github.com/doppler-bar/barpos/internal/pos"
	"github.com/doppler-bar/barpos/internal/promotion"
	"github.com/doppler-bar/barpos/internal/reservation"
	"github.com/doppler-bar/barpos/internal/table"
	"github.com/doppler-bar/barpos/internal/user"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, pos.ErrOrderNotFound),
		errors.Is(err, pos.ErrItemNotFound),
		errors.Is(err, menu.ErrNotFound),
		errors.Is(err, inventory.ErrSupplyNotFound),
		errors.Is(err, inventory.ErrPurchaseOrderNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, table.ErrNotFound),
		errors.Is(err, event.ErrNotFound),
		errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, promotion.ErrCouponNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pos.ErrInsufficientStock),
		errors.Is(err, pos.ErrOrderNotOpen),
		errors.Is(err, pos.ErrInvalidStatusTransition),
		errors.Is(err, inventory.ErrPurchaseOrderEmpty),
		errors.Is(err, table.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, pos.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, attendance.ErrInvalidPIN):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrAccountLocked):
		return http.StatusForbidden
	case errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return details
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation, writing the error response itself. Returns false if the
// caller should stop.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if ok {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}
	return true
}
