package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/doppler-bar/barpos/internal/db"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already in use")
)

type Repository interface {
	WithTx(tx pgx.Tx) Repository
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetActiveByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
	RecordFailedLogin(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error
	ResetLoginFailures(ctx context.Context, id int64) error
	LogLoginAttempt(ctx context.Context, email, ip string, successful bool) error
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) WithTx(tx pgx.Tx) Repository {
	return &repository{q: tx}
}

const userColumns = `user_id, full_name, email, password_hash, pin_hash, role_id, is_active, failed_login_attempts, lockout_until, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.PINHash, &u.RoleID,
		&u.IsActive, &u.FailedLoginAttempts, &u.LockoutUntil, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (r *repository) GetActiveByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *repository) Create(ctx context.Context, u *User) (int64, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO users (full_name, email, password_hash, pin_hash, role_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING user_id`,
		u.FullName, u.Email, u.PasswordHash, u.PINHash, u.RoleID).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return u.ID, nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET is_active = $1 WHERE user_id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update user %d active flag: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) RecordFailedLogin(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE users SET failed_login_attempts = $1, lockout_until = $2 WHERE user_id = $3`,
		attempts, lockoutUntil, id)
	if err != nil {
		return fmt.Errorf("failed to record failed login for user %d: %w", id, err)
	}
	return nil
}

func (r *repository) ResetLoginFailures(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `UPDATE users SET failed_login_attempts = 0, lockout_until = NULL WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to reset login failures for user %d: %w", id, err)
	}
	return nil
}

func (r *repository) LogLoginAttempt(ctx context.Context, email, ip string, successful bool) error {
	_, err := r.q.Exec(ctx, `INSERT INTO login_attempts (email_used, ip_address, was_successful) VALUES ($1, $2, $3)`,
		email, ip, successful)
	if err != nil {
		return fmt.Errorf("failed to log login attempt: %w", err)
	}
	return nil
}
