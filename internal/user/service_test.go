package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doppler-bar/barpos/internal/audit"
	"github.com/doppler-bar/barpos/internal/user"
)

type mockRepo struct {
	createFunc func(ctx context.Context, u *user.User) (int64, error)
}

func (m *mockRepo) WithTx(tx pgx.Tx) user.Repository { return m }

func (m *mockRepo) List(ctx context.Context) ([]user.User, error) { return nil, nil }

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockRepo) GetActiveByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *mockRepo) Create(ctx context.Context, u *user.User) (int64, error) {
	return m.createFunc(ctx, u)
}

func (m *mockRepo) SetActive(ctx context.Context, id int64, active bool) error { return nil }

func (m *mockRepo) RecordFailedLogin(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error {
	return nil
}

func (m *mockRepo) ResetLoginFailures(ctx context.Context, id int64) error { return nil }

func (m *mockRepo) LogLoginAttempt(ctx context.Context, email, ip string, successful bool) error {
	return nil
}

type mockAudit struct {
	recorded []string
	fail     bool
}

func (m *mockAudit) WithTx(tx pgx.Tx) audit.Repository { return m }

func (m *mockAudit) Record(ctx context.Context, userID int64, action string, details any) error {
	if m.fail {
		return errors.New("audit unavailable")
	}
	m.recorded = append(m.recorded, action)
	return nil
}

func (m *mockAudit) List(ctx context.Context) ([]audit.Entry, error) { return nil, nil }

func (m *mockAudit) CountRecentByUserAction(ctx context.Context, userID int64, action string, since time.Time) (int, error) {
	return 0, nil
}

func TestService_CreateUser(t *testing.T) {
	t.Run("hashes_credentials_and_audits", func(t *testing.T) {
		repo := &mockRepo{createFunc: func(ctx context.Context, u *user.User) (int64, error) {
			u.ID = 8
			return 8, nil
		}}
		auditRepo := &mockAudit{}
		svc := user.NewService(repo, auditRepo)

		created, err := svc.CreateUser(context.Background(), &user.User{
			FullName: "Luis Vega",
			Email:    "luis@bar.local",
			RoleID:   user.RoleStaff,
		}, "s3cret-pw", "4321", 1)

		require.NoError(t, err)
		assert.NotEqual(t, "s3cret-pw", created.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("s3cret-pw")))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PINHash), []byte("4321")))
		assert.Equal(t, []string{audit.ActionCreateUser}, auditRepo.recorded)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		repo := &mockRepo{createFunc: func(ctx context.Context, u *user.User) (int64, error) {
			return 0, user.ErrEmailExists
		}}
		svc := user.NewService(repo, &mockAudit{})

		_, err := svc.CreateUser(context.Background(), &user.User{Email: "dup@bar.local"}, "pw123456", "1111", 1)

		assert.True(t, errors.Is(err, user.ErrEmailExists))
	})

	t.Run("audit_failure_does_not_fail_creation", func(t *testing.T) {
		repo := &mockRepo{createFunc: func(ctx context.Context, u *user.User) (int64, error) {
			u.ID = 8
			return 8, nil
		}}
		svc := user.NewService(repo, &mockAudit{fail: true})

		_, err := svc.CreateUser(context.Background(), &user.User{Email: "ok@bar.local"}, "pw123456", "1111", 1)

		assert.NoError(t, err)
	})

	t.Run("empty_password", func(t *testing.T) {
		svc := user.NewService(&mockRepo{}, &mockAudit{})

		_, err := svc.CreateUser(context.Background(), &user.User{}, "", "1111", 1)

		assert.Error(t, err)
	})
}
