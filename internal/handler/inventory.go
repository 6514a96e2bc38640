package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/inventory"
)

type SupplyRequest struct {
	Name           string   `json:"name" validate:"required,min=2"`
	UnitOfMeasure  string   `json:"unit_of_measure" validate:"required"`
	CurrentStock   float64  `json:"current_stock" validate:"gte=0"`
	StockThreshold float64  `json:"stock_threshold" validate:"gte=0"`
	LastCost       *float64 `json:"last_cost" validate:"omitempty,gte=0"`
	Price          *float64 `json:"price" validate:"omitempty,gte=0"`
	IsSellable     bool     `json:"is_sellable"`
}

type AdjustStockRequest struct {
	NewQuantity float64 `json:"new_quantity" validate:"gte=0"`
	Reason      string  `json:"reason" validate:"required,min=3"`
	UserID      int64   `json:"user_id" validate:"required"`
}

type SupplierRequest struct {
	Name    string  `json:"name" validate:"required,min=2"`
	Contact *string `json:"contact" validate:"omitempty,min=3"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID int64 `json:"supplier_id" validate:"required"`
	UserID     int64 `json:"user_id" validate:"required"`
}

type PurchaseOrderItemRequest struct {
	SupplyID int64   `json:"supply_id" validate:"required"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
}

type InventoryHandler struct {
	service  inventory.Service
	validate *validator.Validate
}

func NewInventoryHandler(service inventory.Service) *InventoryHandler {
	return &InventoryHandler{service: service, validate: validator.New()}
}

func (h *InventoryHandler) RegisterRoutes(router chi.Router) {
	router.Get("/supplies", h.handleListSupplies)
	router.Get("/supplies/{id}", h.handleGetSupply)
	router.Post("/supplies", h.handleCreateSupply)
	router.Put("/supplies/{id}", h.handleUpdateSupply)
	router.Delete("/supplies/{id}", h.handleDeleteSupply)
	router.Put("/supplies/{id}/adjust", h.handleAdjustStock)
	router.Get("/supplies/{id}/history", h.handleMovementHistory)

	router.Get("/suppliers", h.handleListSuppliers)
	router.Post("/suppliers", h.handleCreateSupplier)

	router.Get("/purchase-orders", h.handleListPurchaseOrders)
	router.Get("/purchase-orders/{id}", h.handleGetPurchaseOrder)
	router.Post("/purchase-orders", h.handleCreatePurchaseOrder)
	router.Post("/purchase-orders/{id}/items", h.handleAddPurchaseOrderItem)
	router.Post("/purchase-orders/{id}/receive", h.handleReceivePurchaseOrder)
}

func (h *InventoryHandler) handleListSupplies(w http.ResponseWriter, r *http.Request) {
	supplies, err := h.service.ListSupplies(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list supplies")
		supplies = []inventory.Supply{}
	}
	if supplies == nil {
		supplies = []inventory.Supply{}
	}
	respondWithJSON(w, http.StatusOK, supplies)
}

func (h *InventoryHandler) handleGetSupply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	supply, err := h.service.GetSupply(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get supply")
		return
	}
	respondWithJSON(w, http.StatusOK, supply)
}

func (h *InventoryHandler) handleCreateSupply(w http.ResponseWriter, r *http.Request) {
	var req SupplyRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	supply := &inventory.Supply{
		Name:           req.Name,
		UnitOfMeasure:  req.UnitOfMeasure,
		CurrentStock:   req.CurrentStock,
		StockThreshold: req.StockThreshold,
		LastCost:       req.LastCost,
		Price:          req.Price,
		IsSellable:     req.IsSellable,
	}

	if _, err := h.service.CreateSupply(r.Context(), supply); err != nil {
		log.Error().Err(err).Msg("Failed to create supply")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create supply")
		return
	}
	respondWithJSON(w, http.StatusCreated, supply)
}

func (h *InventoryHandler) handleUpdateSupply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req SupplyRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	supply := &inventory.Supply{
		ID:             id,
		Name:           req.Name,
		UnitOfMeasure:  req.UnitOfMeasure,
		CurrentStock:   req.CurrentStock,
		StockThreshold: req.StockThreshold,
		LastCost:       req.LastCost,
		Price:          req.Price,
		IsSellable:     req.IsSellable,
	}

	if err := h.service.UpdateSupply(r.Context(), supply); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update supply")
		return
	}
	respondWithJSON(w, http.StatusOK, supply)
}

func (h *InventoryHandler) handleDeleteSupply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSupply(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete supply")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Supply deleted"})
}

func (h *InventoryHandler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AdjustStockRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	movement, err := h.service.AdjustStock(r.Context(), id, req.NewQuantity, req.Reason, req.UserID)
	if err != nil {
		log.Warn().Err(err).Int64("supply_id", id).Msg("Failed to adjust stock")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to adjust stock")
		return
	}
	respondWithJSON(w, http.StatusOK, movement)
}

func (h *InventoryHandler) handleMovementHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	history, err := h.service.MovementHistory(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("supply_id", id).Msg("Failed to load movement history")
		history = []inventory.Movement{}
	}
	if history == nil {
		history = []inventory.Movement{}
	}
	respondWithJSON(w, http.StatusOK, history)
}

func (h *InventoryHandler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list suppliers")
		suppliers = []inventory.Supplier{}
	}
	if suppliers == nil {
		suppliers = []inventory.Supplier{}
	}
	respondWithJSON(w, http.StatusOK, suppliers)
}

func (h *InventoryHandler) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	supplier := &inventory.Supplier{Name: req.Name, Contact: req.Contact}
	if _, err := h.service.CreateSupplier(r.Context(), supplier); err != nil {
		log.Error().Err(err).Msg("Failed to create supplier")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create supplier")
		return
	}
	respondWithJSON(w, http.StatusCreated, supplier)
}

func (h *InventoryHandler) handleListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListPurchaseOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list purchase orders")
		orders = []inventory.PurchaseOrder{}
	}
	if orders == nil {
		orders = []inventory.PurchaseOrder{}
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *InventoryHandler) handleGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	po, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get purchase order")
		return
	}
	respondWithJSON(w, http.StatusOK, po)
}

func (h *InventoryHandler) handleCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req CreatePurchaseOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	id, err := h.service.CreatePurchaseOrder(r.Context(), req.SupplierID, req.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create purchase order")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create purchase order")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]int64{"po_id": id})
}

func (h *InventoryHandler) handleAddPurchaseOrderItem(w http.ResponseWriter, r *http.Request) {
	poID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req PurchaseOrderItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	item := &inventory.PurchaseOrderItem{
		POID:     poID,
		SupplyID: req.SupplyID,
		Quantity: req.Quantity,
		Cost:     req.UnitCost,
	}

	if _, err := h.service.AddPurchaseOrderItem(r.Context(), item); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to add purchase order item")
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *InventoryHandler) handleReceivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	poID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.ReceivePurchaseOrder(r.Context(), poID); err != nil {
		log.Warn().Err(err).Int64("po_id", poID).Msg("Failed to receive purchase order")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to receive purchase order")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Purchase order received"})
}
