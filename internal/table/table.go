package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

type Status string

const (
	StatusFree     Status = "free"
	StatusOccupied Status = "occupied"
)

var (
	ErrNotFound      = errors.New("table not found")
	ErrInvalidStatus = errors.New("invalid table status")
)

// ValidStatus rejects anything outside the closed free/occupied enumeration
// at the boundary, instead of trusting free-text comparison downstream.
func ValidStatus(s Status) bool {
	return s == StatusFree || s == StatusOccupied
}

type Table struct {
	ID     int64  `json:"table_id"`
	Name   string `json:"table_name"`
	Status Status `json:"status"`
}

type Repository interface {
	WithTx(tx pgx.Tx) Repository
	List(ctx context.Context) ([]Table, error)
	Create(ctx context.Context, name string) (int64, error)
	SetStatus(ctx context.Context, tableID int64, status Status) error
	Delete(ctx context.Context, tableID int64) error
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

func (r *repository) List(ctx context.Context) ([]Table, error) {
	rows, err := r.q.Query(ctx, `SELECT table_id, table_name, status FROM restaurant_tables ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Status); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *repository) Create(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `INSERT INTO restaurant_tables (table_name, status) VALUES ($1, 'free') RETURNING table_id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert table: %w", err)
	}
	return id, nil
}

func (r *repository) SetStatus(ctx context.Context, tableID int64, status Status) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	tag, err := r.q.Exec(ctx, `UPDATE restaurant_tables SET status = $1 WHERE table_id = $2`, string(status), tableID)
	if err != nil {
		return fmt.Errorf("failed to update table %d status: %w", tableID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, tableID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM restaurant_tables WHERE table_id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("failed to delete table %d: %w", tableID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
