package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/doppler-bar/barpos/internal/audit"
)

type Service interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, u *User, rawPassword, rawPIN string, createdBy int64) (*User, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type service struct {
	repo  Repository
	audit audit.Repository
}

func NewService(repo Repository, auditRepo audit.Repository) Service {
	return &service{repo: repo, audit: auditRepo}
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateUser hashes both credentials and records who created the account.
func (s *service) CreateUser(ctx context.Context, u *User, rawPassword, rawPIN string, createdBy int64) (*User, error) {
	if rawPassword == "" {
		return nil, errors.New("service: password cannot be empty")
	}
	if rawPIN == "" {
		return nil, errors.New("service: pin cannot be empty")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(rawPIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service: failed to hash pin: %w", err)
	}
	u.PasswordHash = string(passwordHash)
	u.PINHash = string(pinHash)

	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	auditDetails := map[string]any{
		"new_user_email":   u.Email,
		"new_user_role_id": u.RoleID,
	}
	if err := s.audit.Record(ctx, createdBy, audit.ActionCreateUser, auditDetails); err != nil {
		// The account exists; a missing audit row is logged, not fatal.
		log.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to write CREATE_USER audit record")
	}

	log.Info().Int64("user_id", u.ID).Str("email", u.Email).Msg("User created")
	return u, nil
}

func (s *service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
