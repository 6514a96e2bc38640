package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/doppler-bar/barpos/internal/pos"
)

type mockPOSService struct {
	OpenOrderFunc  func(ctx context.Context, tableID *int64, userID int64, trainingMode bool) (*pos.Order, error)
	AddItemFunc    func(ctx context.Context, item *pos.OrderItem) (int64, error)
	CancelItemFunc func(ctx context.Context, detailID int64, reason string, actorID int64) error
	CloseOrderFunc func(ctx context.Context, orderID int64, method string, amount float64, trainingMode bool) error
}

func (m *mockPOSService) OpenOrder(ctx context.Context, tableID *int64, userID int64, trainingMode bool) (*pos.Order, error) {
	return m.OpenOrderFunc(ctx, tableID, userID, trainingMode)
}

func (m *mockPOSService) ListOpenOrders(ctx context.Context) ([]pos.OpenOrderSummary, error) {
	return nil, nil
}

func (m *mockPOSService) OrderItems(ctx context.Context, orderID int64) ([]pos.OrderItem, error) {
	return nil, nil
}

func (m *mockPOSService) AddItem(ctx context.Context, item *pos.OrderItem) (int64, error) {
	return m.AddItemFunc(ctx, item)
}

func (m *mockPOSService) CancelItem(ctx context.Context, detailID int64, reason string, actorID int64) error {
	return m.CancelItemFunc(ctx, detailID, reason, actorID)
}

func (m *mockPOSService) CloseOrder(ctx context.Context, orderID int64, method string, amount float64, trainingMode bool) error {
	return m.CloseOrderFunc(ctx, orderID, method, amount, trainingMode)
}

func (m *mockPOSService) AssociateCustomer(ctx context.Context, orderID, customerID int64) error {
	return nil
}

func (m *mockPOSService) PrioritizeOrder(ctx context.Context, orderID int64) error { return nil }

func (m *mockPOSService) KDSOrders(ctx context.Context, station *string) ([]pos.KDSOrder, error) {
	return nil, nil
}

func (m *mockPOSService) PendingSummary(ctx context.Context) ([]pos.PendingProduct, error) {
	return nil, nil
}

func (m *mockPOSService) MarkOrderReady(ctx context.Context, orderID int64) error { return nil }

func (m *mockPOSService) MarkItemInPreparation(ctx context.Context, detailID int64) error {
	return nil
}

func (m *mockPOSService) MarkItemReady(ctx context.Context, detailID int64) error { return nil }

func newPOSRouter(svc pos.Service) chi.Router {
	router := chi.NewRouter()
	NewPOSHandler(svc).RegisterRoutes(router)
	return router
}

func TestPOSHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		openOrder      func(ctx context.Context, tableID *int64, userID int64, trainingMode bool) (*pos.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"table_id": 4, "user_id": 7}`,
			openOrder: func(ctx context.Context, tableID *int64, userID int64, trainingMode bool) (*pos.Order, error) {
				return &pos.Order{ID: 1, Folio: "ORD-20260830184509", UserID: userID, TableID: tableID, Status: pos.StatusOpen}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing_user_id",
			body:           `{"table_id": 4}`,
			openOrder:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_json",
			body:           `{`,
			openOrder:      nil,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newPOSRouter(&mockPOSService{OpenOrderFunc: tt.openOrder})

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusCreated {
				assert.Contains(t, rec.Body.String(), "ORD-20260830184509")
			}
		})
	}
}

func TestPOSHandler_AddItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		addItem        func(ctx context.Context, item *pos.OrderItem) (int64, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"product_id": 2, "quantity": 6}`,
			addItem: func(ctx context.Context, item *pos.OrderItem) (int64, error) {
				return 11, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"detail_id":11}`,
		},
		{
			name: "insufficient_stock",
			body: `{"product_id": 2, "quantity": 6}`,
			addItem: func(ctx context.Context, item *pos.OrderItem) (int64, error) {
				return 0, &pos.InsufficientStockError{SupplyName: "Lime"}
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"insufficient stock to prepare the product, missing: Lime"}`,
		},
		{
			name: "order_not_open",
			body: `{"product_id": 2, "quantity": 6}`,
			addItem: func(ctx context.Context, item *pos.OrderItem) (int64, error) {
				return 0, pos.ErrOrderNotOpen
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero_quantity",
			body:           `{"product_id": 2, "quantity": 0}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newPOSRouter(&mockPOSService{AddItemFunc: tt.addItem})

			req := httptest.NewRequest(http.MethodPost, "/orders/1/items", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestPOSHandler_CancelItem(t *testing.T) {
	t.Run("staff_gets_403", func(t *testing.T) {
		router := newPOSRouter(&mockPOSService{
			CancelItemFunc: func(ctx context.Context, detailID int64, reason string, actorID int64) error {
				return pos.ErrPermissionDenied
			},
		})

		body := `{"reason": "customer changed their mind", "user_id": 9}`
		req := httptest.NewRequest(http.MethodDelete, "/order-details/11/cancel", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestPOSHandler_CloseOrder(t *testing.T) {
	t.Run("invalid_payment_method", func(t *testing.T) {
		router := newPOSRouter(&mockPOSService{})

		body := `{"payment_method": "barter", "amount": 100}`
		req := httptest.NewRequest(http.MethodPost, "/orders/1/close", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		var gotTraining bool
		router := newPOSRouter(&mockPOSService{
			CloseOrderFunc: func(ctx context.Context, orderID int64, method string, amount float64, trainingMode bool) error {
				gotTraining = trainingMode
				return nil
			},
		})

		body := `{"payment_method": "cash", "amount": 540, "training_mode": true}`
		req := httptest.NewRequest(http.MethodPost, "/orders/1/close", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, gotTraining)
	})

	t.Run("applied_promos_accepted", func(t *testing.T) {
		closed := false
		router := newPOSRouter(&mockPOSService{
			CloseOrderFunc: func(ctx context.Context, orderID int64, method string, amount float64, trainingMode bool) error {
				closed = true
				return nil
			},
		})

		body := `{"payment_method": "card", "amount": 320, "applied_promos": [{"promo_id": 1, "discount": 20}]}`
		req := httptest.NewRequest(http.MethodPost, "/orders/1/close", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, closed)
	})
}
