package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doppler-bar/barpos/internal/promotion"
)

type mockPromotionRepo struct {
	GetCouponFunc func(ctx context.Context, code string, on time.Time) (*promotion.Coupon, error)
	CreateFunc    func(ctx context.Context, p *promotion.Promotion) (int64, error)
}

func (m *mockPromotionRepo) ListActive(ctx context.Context, on time.Time) ([]promotion.Promotion, error) {
	return nil, nil
}

func (m *mockPromotionRepo) Create(ctx context.Context, p *promotion.Promotion) (int64, error) {
	return m.CreateFunc(ctx, p)
}

func (m *mockPromotionRepo) GetCoupon(ctx context.Context, code string, on time.Time) (*promotion.Coupon, error) {
	return m.GetCouponFunc(ctx, code, on)
}

func newPromotionRouter(repo promotion.Repository) chi.Router {
	router := chi.NewRouter()
	NewPromotionHandler(repo).RegisterRoutes(router)
	return router
}

func TestPromotionHandler_ValidateCoupon(t *testing.T) {
	t.Run("valid_coupon_returned", func(t *testing.T) {
		router := newPromotionRouter(&mockPromotionRepo{
			GetCouponFunc: func(ctx context.Context, code string, on time.Time) (*promotion.Coupon, error) {
				return &promotion.Coupon{ID: 1, Code: code, DiscountType: promotion.TypePercent, Value: 15, IsActive: true}, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/coupons/HAPPYHOUR", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got promotion.Coupon
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "HAPPYHOUR", got.Code)
		assert.Equal(t, 15.0, got.Value)
	})

	t.Run("invalid_or_expired_is_404", func(t *testing.T) {
		router := newPromotionRouter(&mockPromotionRepo{
			GetCouponFunc: func(ctx context.Context, code string, on time.Time) (*promotion.Coupon, error) {
				return nil, promotion.ErrCouponNotFound
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/coupons/EXPIRED", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPromotionHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got *promotion.Promotion
		router := newPromotionRouter(&mockPromotionRepo{
			CreateFunc: func(ctx context.Context, p *promotion.Promotion) (int64, error) {
				got = p
				p.ID = 9
				return 9, nil
			},
		})

		body := `{"name": "2x1 Mojitos", "type": "2x1", "start_date": "2026-09-01", "end_date": "2026-09-30"}`
		req := httptest.NewRequest(http.MethodPost, "/promotions", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, promotion.Type2x1, got.PromoType)
	})

	t.Run("inverted_window_rejected", func(t *testing.T) {
		router := newPromotionRouter(&mockPromotionRepo{})

		body := `{"name": "Late promo", "type": "fixed", "value": 50, "start_date": "2026-09-30", "end_date": "2026-09-01"}`
		req := httptest.NewRequest(http.MethodPost, "/promotions", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown_type_rejected", func(t *testing.T) {
		router := newPromotionRouter(&mockPromotionRepo{})

		body := `{"name": "Mystery", "type": "3x2", "start_date": "2026-09-01", "end_date": "2026-09-30"}`
		req := httptest.NewRequest(http.MethodPost, "/promotions", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
