package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doppler-bar/barpos/internal/db"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

var ErrNotFound = errors.New("event not found")

type Event struct {
	ID          int64     `json:"event_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	EventDate   time.Time `json:"event_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	ListActive(ctx context.Context) ([]Event, error)
	Create(ctx context.Context, e *Event) (int64, error)
	Delete(ctx context.Context, id int64) error
	// ArchivePast flips every active event dated strictly before the given
	// day to archived and reports how many rows changed.
	ArchivePast(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) ListActive(ctx context.Context) ([]Event, error) {
	query := `SELECT event_id, name, description, event_date, status, created_at
		FROM events WHERE status = 'active' ORDER BY event_date`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.EventDate, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *repository) Create(ctx context.Context, e *Event) (int64, error) {
	query := `INSERT INTO events (name, description, event_date, status)
		VALUES ($1, $2, $3, 'active') RETURNING event_id, status, created_at`
	err := r.q.QueryRow(ctx, query, e.Name, e.Description, e.EventDate).
		Scan(&e.ID, &e.Status, &e.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to create event: %w", err)
	}
	return e.ID, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, "DELETE FROM events WHERE event_id = $1", id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ArchivePast(ctx context.Context, before time.Time) (int64, error) {
	query := `UPDATE events SET status = 'archived'
		WHERE event_date < $1 AND status = 'active'`
	tag, err := r.q.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to archive past events: %w", err)
	}
	return tag.RowsAffected(), nil
}
