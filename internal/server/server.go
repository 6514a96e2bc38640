// Package server assembles the HTTP router from the domain handlers.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/doppler-bar/barpos/internal/handler"
)

// Handlers lists everything that mounts routes on the API router.
type Handlers struct {
	POS         *handler.POSHandler
	KDS         *handler.KDSHandler
	Inventory   *handler.InventoryHandler
	Recipe      *handler.RecipeHandler
	Menu        *handler.MenuHandler
	Table       *handler.TableHandler
	Alert       *handler.AlertHandler
	Audit       *handler.AuditHandler
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Customer    *handler.CustomerHandler
	Attendance  *handler.AttendanceHandler
	Promotion   *handler.PromotionHandler
	Event       *handler.EventHandler
	Reservation *handler.ReservationHandler
	Forecast    *handler.ForecastHandler
	Report      *handler.ReportHandler
	Chat        *handler.ChatHandler
}

// NewRouter mounts the REST API under /api and the websocket relays at the
// root, matching what the terminals expect.
func NewRouter(h Handlers) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(api chi.Router) {
		h.POS.RegisterRoutes(api)
		h.KDS.RegisterRoutes(api)
		h.Inventory.RegisterRoutes(api)
		h.Recipe.RegisterRoutes(api)
		h.Menu.RegisterRoutes(api)
		h.Table.RegisterRoutes(api)
		h.Alert.RegisterRoutes(api)
		h.Audit.RegisterRoutes(api)
		h.Auth.RegisterRoutes(api)
		h.User.RegisterRoutes(api)
		h.Customer.RegisterRoutes(api)
		h.Attendance.RegisterRoutes(api)
		h.Promotion.RegisterRoutes(api)
		h.Event.RegisterRoutes(api)
		h.Reservation.RegisterRoutes(api)
		h.Forecast.RegisterRoutes(api)
		h.Report.RegisterRoutes(api)
	})

	h.Chat.RegisterRoutes(router)

	return router
}
