package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cheeta-billing/internal/application/service"
	"github.com/sangkips/cheeta-billing/internal/config"
	domainRepo "github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/database"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/memstore"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/render"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/repository"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/handler"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/middleware"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/routes"
	"github.com/sangkips/cheeta-billing/pkg/auth"
	"github.com/sangkips/cheeta-billing/pkg/logger"
	"github.com/sangkips/cheeta-billing/pkg/printer"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// stores groups the repositories the services are built on.
type stores struct {
	bills       domainRepo.BillRepository
	inventory   domainRepo.InventoryRepository
	settings    domainRepo.SettingsRepository
	idempotency domainRepo.IdempotencyRepository
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Env: cfg.App.Env, Service: cfg.App.Name})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}

	loc, err := cfg.Billing.Location()
	if err != nil {
		return err
	}

	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Warn("failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter, _ = printer.New(printer.Config{Type: printer.TypeNone})
	}

	// Initialize services
	settingsService := service.NewSettingsService(st.settings, log)
	inventoryService := service.NewInventoryService(st.inventory, log)
	billService := service.NewBillService(st.bills, st.inventory, settingsService, service.NewSequenceCounter(st.bills), loc, log)
	invoiceService := service.NewInvoiceService(billService, settingsService, render.NewDefaultRegistry(loc, cfg.Printer.CharWidth), log)
	dashboardService := service.NewDashboardService(st.bills, st.inventory, settingsService, loc)
	printerService := service.NewPrinterService(thermalPrinter, invoiceService, log)

	handlers := &routes.Handlers{
		Settings:  handler.NewSettingsHandler(settingsService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Bill:      handler.NewBillHandler(billService, invoiceService, loc),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	limiter := middleware.NewBudgetLimiter(routes.LimiterIdleTTL)
	router := routes.Setup(handlers, &routes.Deps{
		Verifier:        auth.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		Cfg:             cfg,
		IdempotencyRepo: st.idempotency,
		Logger:          log,
		Limiter:         limiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeIdempotencyKeys(ctx, st.idempotency, log)
	go limiter.Run(ctx, 5*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("port", port),
			zap.String("store", cfg.Store.Driver),
			zap.String("billing_timezone", loc.String()),
			zap.String("printer", thermalPrinter.Type()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func openStores(cfg *config.Config, log *zap.Logger) (*stores, error) {
	policy := cfg.Store.Policy()

	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn("using in-memory store, data is lost on restart")
		mem := memstore.New(policy)
		return &stores{
			bills:       mem.Bills(),
			inventory:   mem.Inventory(),
			settings:    mem.Settings(),
			idempotency: mem.Idempotency(),
		}, nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, err
	}
	return &stores{
		bills:       repository.NewBillRepository(db, policy),
		inventory:   repository.NewInventoryRepository(db),
		settings:    repository.NewSettingsRepository(db),
		idempotency: repository.NewIdempotencyRepository(db),
	}, nil
}

// purgeIdempotencyKeys drops expired keys every hour until ctx is done.
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Warn("failed to purge idempotency keys", zap.Error(err))
			}
		}
	}
}
