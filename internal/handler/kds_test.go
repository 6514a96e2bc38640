package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/doppler-bar/barpos/internal/pos"
)

func newKDSRouter(svc pos.Service) chi.Router {
	router := chi.NewRouter()
	NewKDSHandler(svc).RegisterRoutes(router)
	return router
}

func TestKDSHandler_Routes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"item_status", http.MethodPut, "/kds/order-item/4/status"},
		{"item_ready", http.MethodPut, "/kds/order-item/4/ready"},
		{"order_ready", http.MethodPut, "/kds/orders/2/ready"},
		{"order_prioritize", http.MethodPut, "/kds/orders/2/prioritize"},
	}

	router := newKDSRouter(&mockPOSService{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
