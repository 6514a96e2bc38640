package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

var ErrNotFound = errors.New("customer not found")

type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, c *Customer) (int64, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
	// History returns the customer's paid orders, newest first, with the
	// total taken from the recorded payments.
	History(ctx context.Context, customerID int64) ([]Visit, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

const customerColumns = "customer_id, full_name, phone, email, notes, created_at"

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context) ([]Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers ORDER BY full_name", customerColumns)
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE customer_id = $1", customerColumns)
	c, err := scanCustomer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get customer %d: %w", id, err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, c *Customer) (int64, error) {
	query := `INSERT INTO customers (full_name, phone, email, notes)
		VALUES ($1, $2, $3, $4) RETURNING customer_id`
	if err := r.q.QueryRow(ctx, query, c.FullName, c.Phone, c.Email, c.Notes).Scan(&c.ID); err != nil {
		return 0, fmt.Errorf("repository: failed to create customer: %w", err)
	}
	return c.ID, nil
}

func (r *repository) Update(ctx context.Context, c *Customer) error {
	query := `UPDATE customers SET full_name = $1, phone = $2, email = $3, notes = $4
		WHERE customer_id = $5`
	tag, err := r.q.Exec(ctx, query, c.FullName, c.Phone, c.Email, c.Notes, c.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update customer %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, "DELETE FROM customers WHERE customer_id = $1", id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) History(ctx context.Context, customerID int64) ([]Visit, error) {
	query := `SELECT o.order_id, o.order_folio, o.closed_at,
			COALESCE(SUM(p.amount), 0) AS total
		FROM orders o
		LEFT JOIN payments p ON p.order_id = o.order_id
		WHERE o.customer_id = $1 AND o.status = 'paid'
		GROUP BY o.order_id, o.order_folio, o.closed_at
		ORDER BY o.closed_at DESC NULLS LAST`
	rows, err := r.q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to load history for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.OrderID, &v.Folio, &v.ClosedAt, &v.Total); err != nil {
			return nil, fmt.Errorf("repository: failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
