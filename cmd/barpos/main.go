package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/doppler-bar/barpos/internal/alert"
	"github.com/doppler-bar/barpos/internal/attendance"
	"github.com/doppler-bar/barpos/internal/audit"
	"github.com/doppler-bar/barpos/internal/auth"
	"github.com/doppler-bar/barpos/internal/chat"
	"github.com/doppler-bar/barpos/internal/config"
	"github.com/doppler-bar/barpos/internal/customer"
	"github.com/doppler-bar/barpos/internal/db"
	"github.com/doppler-bar/barpos/internal/event"
	"github.com/doppler-bar/barpos/internal/forecast"
	"github.com/doppler-bar/barpos/internal/handler"
	"github.com/doppler-bar/barpos/internal/inventory"
	"github.com/doppler-bar/barpos/internal/mail"
	"github.com/doppler-bar/barpos/internal/menu"
	"github.com/doppler-bar/barpos/internal/pos"
	"github.com/doppler-bar/barpos/internal/promotion"
	"github.com/doppler-bar/barpos/internal/recipe"
	"github.com/doppler-bar/barpos/internal/report"
	"github.com/doppler-bar/barpos/internal/reservation"
	"github.com/doppler-bar/barpos/internal/server"
	"github.com/doppler-bar/barpos/internal/table"
	"github.com/doppler-bar/barpos/internal/user"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Info().Msg("Starting barpos...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	// Reporting queries run over database/sql so sqlx can scan straight
	// into structs; the pool is shared with pgx.
	reportDB := sqlx.NewDb(stdlib.OpenDBFromPool(pg.Pool), "pgx")

	userRepo := user.NewRepository(pg.Pool)
	auditRepo := audit.NewRepository(pg.Pool)
	alertRepo := alert.NewRepository(pg.Pool)
	tableRepo := table.NewRepository(pg.Pool)
	menuRepo := menu.NewRepository(pg.Pool)
	recipeRepo := recipe.NewRepository(pg.Pool)
	ledger := inventory.NewLedger(pg.Pool)
	purchaseRepo := inventory.NewPurchaseRepository(pg.Pool)
	posRepo := pos.NewRepository(pg.Pool)
	customerRepo := customer.NewRepository(pg.Pool)
	eventRepo := event.NewRepository(pg.Pool)
	reservationRepo := reservation.NewRepository(pg.Pool)
	attendanceRepo := attendance.NewRepository(pg.Pool)
	promotionRepo := promotion.NewRepository(pg.Pool)
	reportRepo := report.NewRepository(reportDB)

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(userRepo, issuer, cfg.Auth.MaxFailedLogins, cfg.Auth.LockoutDuration)
	userService := user.NewService(userRepo, auditRepo)
	inventoryService := inventory.NewService(ledger, purchaseRepo, pg)
	posService := pos.NewService(pos.Deps{
		Orders:  posRepo,
		Recipes: recipeRepo,
		Ledger:  ledger,
		Alerts:  alertRepo,
		Audit:   auditRepo,
		Tables:  tableRepo,
		Users:   userRepo,
		Tx:      pg,
	})
	attendanceService := attendance.NewService(attendanceRepo)
	sender := mail.NewSender(cfg.SMTP)
	reservationService := reservation.NewService(reservationRepo, sender)
	forecastModel := forecast.NewWeightsModel(cfg.Forecast.WeightsPath)
	forecastService := forecast.NewService(forecastModel, cfg.Forecast.RetrainCmd, cfg.Forecast.CapacityLimit)
	registry := chat.NewRegistry()

	archiver := event.NewArchiver(eventRepo)
	if err := archiver.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start event archiver")
	}
	defer archiver.Stop()

	router := server.NewRouter(server.Handlers{
		POS:         handler.NewPOSHandler(posService),
		KDS:         handler.NewKDSHandler(posService),
		Inventory:   handler.NewInventoryHandler(inventoryService),
		Recipe:      handler.NewRecipeHandler(recipeRepo),
		Menu:        handler.NewMenuHandler(menuRepo),
		Table:       handler.NewTableHandler(tableRepo),
		Alert:       handler.NewAlertHandler(alertRepo),
		Audit:       handler.NewAuditHandler(auditRepo),
		Auth:        handler.NewAuthHandler(authService),
		User:        handler.NewUserHandler(userService),
		Customer:    handler.NewCustomerHandler(customerRepo),
		Attendance:  handler.NewAttendanceHandler(attendanceService),
		Promotion:   handler.NewPromotionHandler(promotionRepo),
		Event:       handler.NewEventHandler(eventRepo),
		Reservation: handler.NewReservationHandler(reservationService),
		Forecast:    handler.NewForecastHandler(forecastService),
		Report:      handler.NewReportHandler(reportRepo),
		Chat:        handler.NewChatHandler(registry, authService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.App.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}

	log.Info().Msg("barpos stopped gracefully")
}
