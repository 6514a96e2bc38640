package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/pos"
)

type CreateOrderRequest struct {
	TableID      *int64 `json:"table_id"`
	UserID       int64  `json:"user_id" validate:"required"`
	TrainingMode bool   `json:"training_mode"`
}

type AddItemRequest struct {
	ProductID    int64   `json:"product_id" validate:"required"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	PriceAtOrder float64 `json:"price_at_time_of_order" validate:"gte=0"`
	Notes        *string `json:"notes"`
}

type CancelItemRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
	UserID int64  `json:"user_id" validate:"required"`
}

type CloseOrderRequest struct {
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash card transfer"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	// Promos were already applied by the terminal when it computed the
	// amount; the list is accepted for forward compatibility but not stored.
	AppliedPromos []map[string]any `json:"applied_promos"`
	TrainingMode  bool             `json:"training_mode"`
}

type AssociateCustomerRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required"`
}

type POSHandler struct {
	service  pos.Service
	validate *validator.Validate
}

func NewPOSHandler(service pos.Service) *POSHandler {
	return &POSHandler{service: service, validate: validator.New()}
}

func (h *POSHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders/open", h.handleListOpenOrders)
	router.Get("/orders/{id}/items", h.handleListItems)
	router.Post("/orders/{id}/items", h.handleAddItem)
	router.Post("/orders/{id}/close", h.handleCloseOrder)
	router.Put("/orders/{id}/customer", h.handleAssociateCustomer)
	router.Post("/orders/{id}/send-to-kitchen", h.handleSendToKitchen)
	router.Delete("/order-details/{id}/cancel", h.handleCancelItem)
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return id, true
}

func (h *POSHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	order, err := h.service.OpenOrder(r.Context(), req.TableID, req.UserID, req.TrainingMode)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open order")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to open order")
		return
	}

	respondWithJSON(w, http.StatusCreated, order)
}

func (h *POSHandler) handleListOpenOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOpenOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list open orders")
		orders = []pos.OpenOrderSummary{}
	}
	if orders == nil {
		orders = []pos.OpenOrderSummary{}
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *POSHandler) handleListItems(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	items, err := h.service.OrderItems(r.Context(), orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("Failed to list order items")
		items = []pos.OrderItem{}
	}
	if items == nil {
		items = []pos.OrderItem{}
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *POSHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	item := &pos.OrderItem{
		OrderID:      orderID,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		PriceAtOrder: req.PriceAtOrder,
		Notes:        req.Notes,
	}

	detailID, err := h.service.AddItem(r.Context(), item)
	if err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("Failed to add item")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]int64{"detail_id": detailID})
}

func (h *POSHandler) handleCancelItem(w http.ResponseWriter, r *http.Request) {
	detailID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req CancelItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.service.CancelItem(r.Context(), detailID, req.Reason, req.UserID); err != nil {
		log.Warn().Err(err).Int64("detail_id", detailID).Msg("Failed to cancel item")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to cancel item")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Item cancelled"})
}

func (h *POSHandler) handleCloseOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req CloseOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	err := h.service.CloseOrder(r.Context(), orderID, req.PaymentMethod, req.Amount, req.TrainingMode)
	if err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("Failed to close order")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to close order")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order closed and paid"})
}

func (h *POSHandler) handleAssociateCustomer(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AssociateCustomerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.service.AssociateCustomer(r.Context(), orderID, req.CustomerID); err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("Failed to associate customer")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to associate customer")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Customer associated"})
}

// The kitchen display polls active orders, so sending is just an
// acknowledgement for the waiter's terminal.
func (h *POSHandler) handleSendToKitchen(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Order %d sent to kitchen", orderID),
	})
}
