package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/doppler-bar/barpos/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrAccountLocked      = errors.New("account locked, try again later")
)

type LoginResult struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        *user.User `json:"user"`
}

type Service interface {
	Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error)
	UserFromToken(ctx context.Context, token string) (*user.User, error)
}

type service struct {
	users           user.Repository
	issuer          *TokenIssuer
	maxFailedLogins int
	lockoutDuration time.Duration
	now             func() time.Time
}

func NewService(users user.Repository, issuer *TokenIssuer, maxFailedLogins int, lockoutDuration time.Duration) Service {
	return &service{
		users:           users,
		issuer:          issuer,
		maxFailedLogins: maxFailedLogins,
		lockoutDuration: lockoutDuration,
		now:             time.Now,
	}
}

// Login verifies credentials, enforces the lockout policy and logs every
// attempt. A failed attempt increments the user's failure counter; reaching
// the limit locks the account for the configured duration.
func (s *service) Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error) {
	u, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("service: failed to look up user: %w", err)
	}

	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		if logErr := s.users.LogLoginAttempt(ctx, email, clientIP, false); logErr != nil {
			log.Error().Err(logErr).Msg("Failed to log failed login attempt")
		}

		if u != nil {
			attempts := u.FailedLoginAttempts + 1
			var lockoutUntil *time.Time
			if attempts >= s.maxFailedLogins {
				t := s.now().Add(s.lockoutDuration)
				lockoutUntil = &t
				log.Warn().Str("email", email).Int("attempts", attempts).Msg("Account locked after repeated login failures")
			}
			if recErr := s.users.RecordFailedLogin(ctx, u.ID, attempts, lockoutUntil); recErr != nil {
				log.Error().Err(recErr).Msg("Failed to record login failure")
			}
		}
		return nil, ErrInvalidCredentials
	}

	if u.LockoutUntil != nil && u.LockoutUntil.After(s.now()) {
		return nil, ErrAccountLocked
	}

	if err := s.users.LogLoginAttempt(ctx, email, clientIP, true); err != nil {
		log.Error().Err(err).Msg("Failed to log successful login attempt")
	}
	if u.FailedLoginAttempts > 0 || u.LockoutUntil != nil {
		if err := s.users.ResetLoginFailures(ctx, u.ID); err != nil {
			log.Error().Err(err).Msg("Failed to reset login failure counter")
		}
	}

	token, err := s.issuer.Issue(u.Email, u.ID, u.RoleID, s.now())
	if err != nil {
		return nil, fmt.Errorf("service: failed to issue token: %w", err)
	}

	log.Info().Int64("user_id", u.ID).Str("email", u.Email).Msg("User logged in")
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		User:        u,
	}, nil
}

// UserFromToken resolves a bearer token back to an active user. Used by the
// KDS chat handshake, where the token travels as a query parameter.
func (s *service) UserFromToken(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetActiveByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("service: failed to resolve token user: %w", err)
	}
	return u, nil
}
