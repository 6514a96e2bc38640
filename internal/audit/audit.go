// Package audit keeps the append-only action log. POS cancellations feed the
// anomaly heuristic through CountRecentByUserAction.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

const ActionCancelOrderItem = "CANCEL_ORDER_ITEM"
const ActionCreateUser = "CREATE_USER"

type Entry struct {
	ID        uuid.UUID       `json:"log_id"`
	UserID    int64           `json:"user_id"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	Timestamp time.Time       `json:"log_timestamp"`
	UserName  *string         `json:"user_name,omitempty"`
}

type Repository interface {
	WithTx(tx pgx.Tx) Repository
	Record(ctx context.Context, userID int64, action string, details any) error
	List(ctx context.Context) ([]Entry, error)
	CountRecentByUserAction(ctx context.Context, userID int64, action string, since time.Time) (int, error)
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

func (r *repository) Record(ctx context.Context, userID int64, action string, details any) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate audit log ID: %w", err)
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	_, err = r.q.Exec(ctx, `INSERT INTO audit_logs (log_id, user_id, action, details) VALUES ($1, $2, $3, $4)`,
		id, userID, action, payload)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT al.log_id, al.user_id, al.action, al.details, al.created_at, u.full_name
		FROM audit_logs al
		LEFT JOIN users u ON al.user_id = u.user_id
		ORDER BY al.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Details, &e.Timestamp, &e.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) CountRecentByUserAction(ctx context.Context, userID int64, action string, since time.Time) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE user_id = $1 AND action = $2 AND created_at > $3`,
		userID, action, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent audit actions: %w", err)
	}
	return count, nil
}
