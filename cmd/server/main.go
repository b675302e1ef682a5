package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"orderDeliveryManagement/internal/api"
	"orderDeliveryManagement/internal/clock"
	"orderDeliveryManagement/internal/config"
	"orderDeliveryManagement/internal/db"
	"orderDeliveryManagement/internal/pdf"
	"orderDeliveryManagement/internal/workflow"
	"orderDeliveryManagement/repository"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("falling back to development defaults")
		cfg, err = config.LoadWithDefaults()
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
	}
	log.Info().Str("config", cfg.String()).Msg("starting")

	shippingFee, err := decimal.NewFromString(cfg.Orders.ShippingFee)
	if err != nil {
		log.Fatal().Err(err).Str("shipping_fee", cfg.Orders.ShippingFee).Msg("invalid shipping fee")
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer database.Close()

	svc := workflow.NewService(workflow.Deps{
		Users:         repository.NewUserRepository(database),
		Orders:        repository.NewOrderRepository(database),
		Drivers:       repository.NewDriverRepository(database),
		Assignments:   repository.NewAssignmentRepository(database),
		Invoices:      repository.NewInvoiceRepository(database),
		Notifications: repository.NewNotificationRepository(database),
		Deliveries:    repository.NewDeliveryRepository(database),
		Renderer:      pdf.NewTemplateRenderer(),
		Store:         pdf.NewFileStore(cfg.Invoices.PDFDir),
		Clock:         clock.System{},
		Logger:        log,
		ShippingFee:   shippingFee,
	})

	server := api.NewServer(svc, log)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           server.Router(cfg.Auth.JWTSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.HTTP.Address).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
