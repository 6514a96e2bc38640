// Package reservation handles table bookings. Confirmation email is fire
// and forget: a delivery failure is logged and the reservation still
// confirms.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/db"
	"github.com/doppler-bar/barpos/internal/mail"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

var ErrNotFound = errors.New("reservation not found")

type Reservation struct {
	ID            int64     `json:"reservation_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail *string   `json:"customer_email,omitempty"`
	PartySize     int       `json:"party_size"`
	ReservedFor   time.Time `json:"reserved_for"`
	TableID       *int64    `json:"table_id,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type Repository interface {
	List(ctx context.Context) ([]Reservation, error)
	Create(ctx context.Context, r *Reservation) (int64, error)
	SetStatus(ctx context.Context, id int64, status string) (*Reservation, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

const reservationColumns = "reservation_id, customer_name, customer_email, party_size, reserved_for, table_id, status, created_at"

func (r *repository) List(ctx context.Context) ([]Reservation, error) {
	query := fmt.Sprintf("SELECT %s FROM reservations ORDER BY reserved_for", reservationColumns)
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(&res.ID, &res.CustomerName, &res.CustomerEmail, &res.PartySize,
			&res.ReservedFor, &res.TableID, &res.Status, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *repository) Create(ctx context.Context, res *Reservation) (int64, error) {
	query := `INSERT INTO reservations (customer_name, customer_email, party_size, reserved_for, table_id, status)
		VALUES ($1, $2, $3, $4, $5, 'pending') RETURNING reservation_id, status, created_at`
	err := r.q.QueryRow(ctx, query, res.CustomerName, res.CustomerEmail, res.PartySize,
		res.ReservedFor, res.TableID).Scan(&res.ID, &res.Status, &res.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to create reservation: %w", err)
	}
	return res.ID, nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status string) (*Reservation, error) {
	query := fmt.Sprintf(`UPDATE reservations SET status = $1 WHERE reservation_id = $2
		RETURNING %s`, reservationColumns)
	var res Reservation
	err := r.q.QueryRow(ctx, query, status, id).Scan(&res.ID, &res.CustomerName, &res.CustomerEmail,
		&res.PartySize, &res.ReservedFor, &res.TableID, &res.Status, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to update reservation %d: %w", id, err)
	}
	return &res, nil
}

type Service interface {
	List(ctx context.Context) ([]Reservation, error)
	Create(ctx context.Context, res *Reservation) (*Reservation, error)
	Confirm(ctx context.Context, id int64) (*Reservation, error)
	Cancel(ctx context.Context, id int64) (*Reservation, error)
}

type service struct {
	repo   Repository
	sender mail.Sender
}

func NewService(repo Repository, sender mail.Sender) Service {
	return &service{repo: repo, sender: sender}
}

func (s *service) List(ctx context.Context) ([]Reservation, error) {
	return s.repo.List(ctx)
}

func (s *service) Create(ctx context.Context, res *Reservation) (*Reservation, error) {
	if _, err := s.repo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("service: failed to create reservation: %w", err)
	}
	log.Info().Int64("reservation_id", res.ID).Str("customer", res.CustomerName).Msg("Reservation created")
	return res, nil
}

func (s *service) Confirm(ctx context.Context, id int64) (*Reservation, error) {
	res, err := s.repo.SetStatus(ctx, id, StatusConfirmed)
	if err != nil {
		return nil, err
	}

	if res.CustomerEmail != nil && *res.CustomerEmail != "" {
		body := fmt.Sprintf("Hi %s, your reservation for %d on %s is confirmed. See you then!",
			res.CustomerName, res.PartySize, res.ReservedFor.Format("Mon, 02 Jan 2006 15:04"))
		if err := s.sender.Send(*res.CustomerEmail, "Reservation confirmed", body); err != nil {
			log.Error().Err(err).Int64("reservation_id", id).Msg("Failed to send confirmation email")
		}
	}
	return res, nil
}

func (s *service) Cancel(ctx context.Context, id int64) (*Reservation, error) {
	return s.repo.SetStatus(ctx, id, StatusCancelled)
}
