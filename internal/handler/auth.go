package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/auth"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
	service  auth.Service
	validate *validator.Validate
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service, validate: validator.New()}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.handleLogin)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	// RemoteAddr is rewritten by the RealIP middleware when the request
	// came through a proxy.
	result, err := h.service.Login(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Login failed")

		message := "Invalid credentials"
		if errors.Is(err, auth.ErrAccountLocked) {
			message = "Account temporarily locked, try again later"
		}
		respondWithError(w, mapErrorToStatusCode(err), message)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
