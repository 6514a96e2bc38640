package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/pos"
)

// KDSHandler serves the kitchen display: active orders grouped by station
// and the per-item state changes cooks drive from the screen.
type KDSHandler struct {
	service pos.Service
}

func NewKDSHandler(service pos.Service) *KDSHandler {
	return &KDSHandler{service: service}
}

func (h *KDSHandler) RegisterRoutes(router chi.Router) {
	router.Get("/kds/orders", h.handleActiveOrders)
	router.Get("/kds/pending-summary", h.handlePendingSummary)
	router.Put("/kds/orders/{id}/ready", h.handleOrderReady)
	router.Put("/kds/orders/{id}/prioritize", h.handlePrioritizeOrder)
	router.Put("/kds/order-item/{id}/status", h.handleItemInPreparation)
	router.Put("/kds/order-item/{id}/ready", h.handleItemReady)
}

func (h *KDSHandler) handleActiveOrders(w http.ResponseWriter, r *http.Request) {
	var station *string
	if s := r.URL.Query().Get("station"); s != "" {
		station = &s
	}

	orders, err := h.service.KDSOrders(r.Context(), station)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load KDS orders")
		orders = []pos.KDSOrder{}
	}
	if orders == nil {
		orders = []pos.KDSOrder{}
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *KDSHandler) handlePendingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.PendingSummary(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load pending summary")
		summary = []pos.PendingProduct{}
	}
	if summary == nil {
		summary = []pos.PendingProduct{}
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *KDSHandler) handleOrderReady(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.MarkOrderReady(r.Context(), orderID); err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("Failed to mark order ready")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to mark order ready")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order marked ready"})
}

func (h *KDSHandler) handlePrioritizeOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.PrioritizeOrder(r.Context(), orderID); err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("Failed to prioritize order")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to prioritize order")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order prioritized"})
}

func (h *KDSHandler) handleItemInPreparation(w http.ResponseWriter, r *http.Request) {
	detailID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.MarkItemInPreparation(r.Context(), detailID); err != nil {
		log.Warn().Err(err).Int64("detail_id", detailID).Msg("Failed to mark item in preparation")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update item")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Item in preparation"})
}

func (h *KDSHandler) handleItemReady(w http.ResponseWriter, r *http.Request) {
	detailID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.MarkItemReady(r.Context(), detailID); err != nil {
		log.Warn().Err(err).Int64("detail_id", detailID).Msg("Failed to mark item ready")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update item")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Item ready"})
}
