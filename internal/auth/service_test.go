package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doppler-bar/barpos/internal/auth"
	"github.com/doppler-bar/barpos/internal/user"
)

type mockUserRepo struct {
	getActiveByEmailFunc  func(ctx context.Context, email string) (*user.User, error)
	recordFailedLoginFunc func(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error
	resetFunc             func(ctx context.Context, id int64) error
	attempts              []bool
}

func (m *mockUserRepo) WithTx(tx pgx.Tx) user.Repository { return m }

func (m *mockUserRepo) List(ctx context.Context) ([]user.User, error) { return nil, nil }

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetActiveByEmail(ctx context.Context, email string) (*user.User, error) {
	return m.getActiveByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) (int64, error) { return 0, nil }

func (m *mockUserRepo) SetActive(ctx context.Context, id int64, active bool) error { return nil }

func (m *mockUserRepo) RecordFailedLogin(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error {
	if m.recordFailedLoginFunc != nil {
		return m.recordFailedLoginFunc(ctx, id, attempts, lockoutUntil)
	}
	return nil
}

func (m *mockUserRepo) ResetLoginFailures(ctx context.Context, id int64) error {
	if m.resetFunc != nil {
		return m.resetFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) LogLoginAttempt(ctx context.Context, email, ip string, successful bool) error {
	m.attempts = append(m.attempts, successful)
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestService_Login(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", 8*time.Hour)

	t.Run("success", func(t *testing.T) {
		repo := &mockUserRepo{
			getActiveByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				return &user.User{ID: 7, Email: email, RoleID: user.RoleManager, PasswordHash: hashOf(t, "s3cret-pw")}, nil
			},
		}
		svc := auth.NewService(repo, issuer, 5, 15*time.Minute)

		result, err := svc.Login(context.Background(), "ana@bar.local", "s3cret-pw", "10.0.0.5")

		require.NoError(t, err)
		assert.Equal(t, "bearer", result.TokenType)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, []bool{true}, repo.attempts)
	})

	t.Run("wrong_password_increments_counter", func(t *testing.T) {
		var gotAttempts int
		var gotLockout *time.Time
		repo := &mockUserRepo{
			getActiveByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				return &user.User{ID: 7, Email: email, FailedLoginAttempts: 2, PasswordHash: hashOf(t, "s3cret-pw")}, nil
			},
			recordFailedLoginFunc: func(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error {
				gotAttempts = attempts
				gotLockout = lockoutUntil
				return nil
			},
		}
		svc := auth.NewService(repo, issuer, 5, 15*time.Minute)

		_, err := svc.Login(context.Background(), "ana@bar.local", "wrong", "10.0.0.5")

		assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
		assert.Equal(t, 3, gotAttempts)
		assert.Nil(t, gotLockout, "lockout starts only at the limit")
		assert.Equal(t, []bool{false}, repo.attempts)
	})

	t.Run("fifth_failure_locks_account", func(t *testing.T) {
		var gotLockout *time.Time
		repo := &mockUserRepo{
			getActiveByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				return &user.User{ID: 7, Email: email, FailedLoginAttempts: 4, PasswordHash: hashOf(t, "s3cret-pw")}, nil
			},
			recordFailedLoginFunc: func(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error {
				gotLockout = lockoutUntil
				return nil
			},
		}
		svc := auth.NewService(repo, issuer, 5, 15*time.Minute)

		_, err := svc.Login(context.Background(), "ana@bar.local", "wrong", "10.0.0.5")

		assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
		require.NotNil(t, gotLockout)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), *gotLockout, 5*time.Second)
	})

	t.Run("locked_account_rejected_even_with_correct_password", func(t *testing.T) {
		until := time.Now().Add(10 * time.Minute)
		repo := &mockUserRepo{
			getActiveByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				return &user.User{ID: 7, Email: email, LockoutUntil: &until, PasswordHash: hashOf(t, "s3cret-pw")}, nil
			},
		}
		svc := auth.NewService(repo, issuer, 5, 15*time.Minute)

		_, err := svc.Login(context.Background(), "ana@bar.local", "s3cret-pw", "10.0.0.5")

		assert.True(t, errors.Is(err, auth.ErrAccountLocked))
	})

	t.Run("expired_lockout_resets_and_succeeds", func(t *testing.T) {
		until := time.Now().Add(-time.Minute)
		resetCalled := false
		repo := &mockUserRepo{
			getActiveByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				return &user.User{ID: 7, Email: email, FailedLoginAttempts: 5, LockoutUntil: &until, PasswordHash: hashOf(t, "s3cret-pw")}, nil
			},
			resetFunc: func(ctx context.Context, id int64) error {
				resetCalled = true
				return nil
			},
		}
		svc := auth.NewService(repo, issuer, 5, 15*time.Minute)

		_, err := svc.Login(context.Background(), "ana@bar.local", "s3cret-pw", "10.0.0.5")

		require.NoError(t, err)
		assert.True(t, resetCalled)
	})

	t.Run("unknown_email", func(t *testing.T) {
		repo := &mockUserRepo{
			getActiveByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				return nil, user.ErrNotFound
			},
		}
		svc := auth.NewService(repo, issuer, 5, 15*time.Minute)

		_, err := svc.Login(context.Background(), "ghost@bar.local", "whatever", "10.0.0.5")

		assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
		assert.Equal(t, []bool{false}, repo.attempts)
	})
}

func TestService_UserFromToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", 8*time.Hour)
	repo := &mockUserRepo{
		getActiveByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			if email == "ana@bar.local" {
				return &user.User{ID: 7, Email: email, FullName: "Ana Torres"}, nil
			}
			return nil, user.ErrNotFound
		},
	}
	svc := auth.NewService(repo, issuer, 5, 15*time.Minute)

	token, err := issuer.Issue("ana@bar.local", 7, 2, time.Now())
	require.NoError(t, err)

	u, err := svc.UserFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", u.FullName)

	_, err = svc.UserFromToken(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}
