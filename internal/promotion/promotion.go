// Package promotion holds the running discount campaigns and the coupon
// codes the terminals validate before applying them to an order total.
package promotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

var ErrCouponNotFound = errors.New("coupon invalid or expired")

const (
	Type2x1     = "2x1"
	TypePercent = "percent"
	TypeFixed   = "fixed"
)

type Promotion struct {
	ID        int64     `json:"promotion_id"`
	Name      string    `json:"name"`
	PromoType string    `json:"type"`
	Value     *float64  `json:"value,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
}

type Coupon struct {
	ID             int64      `json:"coupon_id"`
	Code           string     `json:"code"`
	DiscountType   string     `json:"type"`
	Value          float64    `json:"value"`
	IsActive       bool       `json:"is_active"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

type Repository interface {
	// ListActive returns promotions whose window covers the given day.
	ListActive(ctx context.Context, on time.Time) ([]Promotion, error)
	Create(ctx context.Context, p *Promotion) (int64, error)
	// GetCoupon resolves a code to a live coupon; inactive or expired codes
	// come back as ErrCouponNotFound, the terminal shows them as invalid.
	GetCoupon(ctx context.Context, code string, on time.Time) (*Coupon, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) ListActive(ctx context.Context, on time.Time) ([]Promotion, error) {
	rows, err := r.q.Query(ctx, `
		SELECT promotion_id, name, promo_type, value, start_date, end_date, is_active
		FROM promotions
		WHERE is_active AND $1::date BETWEEN start_date AND end_date
		ORDER BY name`, on)
	if err != nil {
		return nil, fmt.Errorf("failed to list active promotions: %w", err)
	}
	defer rows.Close()

	var promos []Promotion
	for rows.Next() {
		var p Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.PromoType, &p.Value, &p.StartDate, &p.EndDate, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

func (r *repository) Create(ctx context.Context, p *Promotion) (int64, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO promotions (name, promo_type, value, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5) RETURNING promotion_id, is_active`,
		p.Name, p.PromoType, p.Value, p.StartDate, p.EndDate).
		Scan(&p.ID, &p.IsActive)
	if err != nil {
		return 0, fmt.Errorf("failed to create promotion: %w", err)
	}
	return p.ID, nil
}

func (r *repository) GetCoupon(ctx context.Context, code string, on time.Time) (*Coupon, error) {
	var c Coupon
	err := r.q.QueryRow(ctx, `
		SELECT coupon_id, code, discount_type, value, is_active, expiration_date
		FROM coupons
		WHERE code = $1 AND is_active
			AND (expiration_date IS NULL OR expiration_date >= $2::date)`,
		code, on).
		Scan(&c.ID, &c.Code, &c.DiscountType, &c.Value, &c.IsActive, &c.ExpirationDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon %q: %w", code, err)
	}
	return &c, nil
}
