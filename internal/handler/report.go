package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/report"
)

// ReportHandler serves back-office dashboards. Report queries never fail
// the page: on error the client gets an empty data set and the cause goes
// to the log.
type ReportHandler struct {
	repo report.Repository
}

func NewReportHandler(repo report.Repository) *ReportHandler {
	return &ReportHandler{repo: repo}
}

func (h *ReportHandler) RegisterRoutes(router chi.Router) {
	router.Get("/reports/sales-by-day", h.handleSalesByDay)
	router.Get("/reports/top-products", h.handleTopProducts)
	router.Get("/reports/payment-methods", h.handlePaymentMethods)
}

// sinceParam reads ?days=N, defaulting to the last 30 days.
func sinceParam(r *http.Request) time.Time {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}
	return time.Now().AddDate(0, 0, -days)
}

func (h *ReportHandler) handleSalesByDay(w http.ResponseWriter, r *http.Request) {
	sales, err := h.repo.SalesByDay(r.Context(), sinceParam(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load sales report")
		sales = []report.DailySales{}
	}
	respondWithJSON(w, http.StatusOK, sales)
}

func (h *ReportHandler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	products, err := h.repo.TopProducts(r.Context(), sinceParam(r), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load top products report")
		products = []report.ProductSales{}
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ReportHandler) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.repo.PaymentMethods(r.Context(), sinceParam(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load payment methods report")
		breakdown = []report.PaymentBreakdown{}
	}
	respondWithJSON(w, http.StatusOK, breakdown)
}
