package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/user"
)

type CreateUserRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	PIN      string `json:"pin" validate:"required,len=4,numeric"`
	RoleID   int64  `json:"role_id" validate:"required,oneof=1 2 3"`
	// Who is creating the account, recorded in the audit trail.
	CreatedBy int64 `json:"created_by" validate:"required"`
}

type SetUserActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UserHandler struct {
	service  user.Service
	validate *validator.Validate
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service, validate: validator.New()}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.handleList)
	router.Get("/users/{id}", h.handleGet)
	router.Post("/users", h.handleCreate)
	router.Put("/users/{id}/active", h.handleSetActive)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		users = []user.User{}
	}
	if users == nil {
		users = []user.User{}
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get user")
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.CreateUser(r.Context(), &user.User{
		FullName: req.FullName,
		Email:    req.Email,
		RoleID:   req.RoleID,
	}, req.Password, req.PIN, req.CreatedBy)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user")

		message := "Failed to create user"
		if errors.Is(err, user.ErrEmailExists) {
			message = "Email already exists"
		}
		respondWithError(w, mapErrorToStatusCode(err), message)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req SetUserActiveRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.service.SetActive(r.Context(), id, *req.IsActive); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update user")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User updated"})
}
