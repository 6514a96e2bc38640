// Package report aggregates sales figures for the back office. Queries go
// through sqlx struct scanning; handlers degrade to empty result sets
// rather than failing the dashboard.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type DailySales struct {
	Day    time.Time `db:"day" json:"day"`
	Orders int       `db:"orders" json:"orders"`
	Total  float64   `db:"total" json:"total"`
}

type ProductSales struct {
	ProductID int64   `db:"product_id" json:"product_id"`
	Name      string  `db:"name" json:"name"`
	Quantity  int     `db:"quantity" json:"quantity_sold"`
	Revenue   float64 `db:"revenue" json:"revenue"`
}

type PaymentBreakdown struct {
	Method string  `db:"method" json:"method"`
	Count  int     `db:"count" json:"count"`
	Total  float64 `db:"total" json:"total"`
}

type Repository interface {
	SalesByDay(ctx context.Context, since time.Time) ([]DailySales, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]ProductSales, error)
	PaymentMethods(ctx context.Context, since time.Time) ([]PaymentBreakdown, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SalesByDay(ctx context.Context, since time.Time) ([]DailySales, error) {
	query := `SELECT date_trunc('day', o.closed_at) AS day,
			COUNT(DISTINCT o.order_id) AS orders,
			COALESCE(SUM(p.amount), 0) AS total
		FROM orders o
		JOIN payments p ON p.order_id = o.order_id
		WHERE o.status = 'paid' AND o.closed_at >= $1
		GROUP BY 1 ORDER BY 1`

	sales := []DailySales{}
	if err := r.db.SelectContext(ctx, &sales, query, since); err != nil {
		return nil, fmt.Errorf("report: failed to load daily sales: %w", err)
	}
	return sales, nil
}

func (r *repository) TopProducts(ctx context.Context, since time.Time, limit int) ([]ProductSales, error) {
	query := `SELECT p.product_id, p.name,
			SUM(d.quantity) AS quantity,
			SUM(d.quantity * p.price) AS revenue
		FROM order_details d
		JOIN products p ON p.product_id = d.product_id
		JOIN orders o ON o.order_id = d.order_id
		WHERE o.status = 'paid' AND o.closed_at >= $1
		GROUP BY p.product_id, p.name
		ORDER BY quantity DESC
		LIMIT $2`

	products := []ProductSales{}
	if err := r.db.SelectContext(ctx, &products, query, since, limit); err != nil {
		return nil, fmt.Errorf("report: failed to load top products: %w", err)
	}
	return products, nil
}

func (r *repository) PaymentMethods(ctx context.Context, since time.Time) ([]PaymentBreakdown, error) {
	query := `SELECT payment_method AS method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM payments
		WHERE created_at >= $1
		GROUP BY payment_method ORDER BY total DESC`

	breakdown := []PaymentBreakdown{}
	if err := r.db.SelectContext(ctx, &breakdown, query, since); err != nil {
		return nil, fmt.Errorf("report: failed to load payment breakdown: %w", err)
	}
	return breakdown, nil
}
