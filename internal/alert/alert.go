// Package alert appends human-readable notifications for the admin panel.
// Emission is fire-and-forget: no deduplication, no severity, no correlation
// between related alerts.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

type Type string

const (
	TypeStock      Type = "stock"
	TypeAnomaly    Type = "anomaly"
	TypeOrderReady Type = "order_ready"
	TypeItemReady  Type = "item_ready"
)

type Alert struct {
	ID        int64     `json:"alert_id"`
	Type      Type      `json:"alert_type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Emitter interface {
	WithTx(tx pgx.Tx) Emitter
	Emit(ctx context.Context, alertType Type, message string) error
	Unread(ctx context.Context) ([]Alert, error)
	MarkRead(ctx context.Context, alertID int64) error
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Emitter {
	return &repository{q: q}
}

func (r *repository) WithTx(tx pgx.Tx) Emitter {
	return &repository{q: tx}
}

func (r *repository) Emit(ctx context.Context, alertType Type, message string) error {
	_, err := r.q.Exec(ctx, `INSERT INTO alerts (alert_type, message) VALUES ($1, $2)`, string(alertType), message)
	if err != nil {
		return fmt.Errorf("failed to emit alert: %w", err)
	}
	return nil
}

func (r *repository) Unread(ctx context.Context) ([]Alert, error) {
	rows, err := r.q.Query(ctx, `SELECT alert_id, alert_type, message, is_read, created_at
		FROM alerts WHERE NOT is_read ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *repository) MarkRead(ctx context.Context, alertID int64) error {
	_, err := r.q.Exec(ctx, `UPDATE alerts SET is_read = true WHERE alert_id = $1`, alertID)
	if err != nil {
		return fmt.Errorf("failed to mark alert %d read: %w", alertID, err)
	}
	return nil
}
