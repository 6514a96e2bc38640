package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) (int64, error)
	Update(ctx context.Context, p *Product) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT product_id, name, description, price, category, station, is_active, created_at
		FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Station, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.q.QueryRow(ctx, `SELECT product_id, name, description, price, category, station, is_active, created_at
		FROM products WHERE product_id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Station, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Product) (int64, error) {
	err := r.q.QueryRow(ctx, `INSERT INTO products (name, description, price, category, station, is_active)
		VALUES ($1, $2, $3, $4, $5, true) RETURNING product_id`,
		p.Name, p.Description, p.Price, p.Category, p.Station).Scan(&p.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}
	return p.ID, nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET name = $1, description = $2, price = $3, category = $4, station = $5
		WHERE product_id = $6`,
		p.Name, p.Description, p.Price, p.Category, p.Station, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET is_active = false WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
