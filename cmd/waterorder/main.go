package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neomorfeo/waterorder/internal/adapter/fsm"
	"github.com/neomorfeo/waterorder/internal/adapter/memory"
	oteladapter "github.com/neomorfeo/waterorder/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/waterorder/internal/adapter/river"
	"github.com/neomorfeo/waterorder/internal/adapter/sqlite"
	"github.com/neomorfeo/waterorder/internal/adapter/timer"
	"github.com/neomorfeo/waterorder/internal/app"
	"github.com/neomorfeo/waterorder/internal/domain"

	handler "github.com/neomorfeo/waterorder/internal/adapter/http"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("waterorder failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	providers, err := oteladapter.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	var (
		repo      domain.OrderRepository
		publisher domain.EventPublisher
	)

	switch cfg.Store {
	case storeSQLite:
		db, err := oteladapter.OpenDB(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		sqlRepo, err := sqlite.NewFromDB(db)
		if err != nil {
			return fmt.Errorf("order store: %w", err)
		}

		riverClient, err := riveradapter.Setup(ctx, db, logger)
		if err != nil {
			return fmt.Errorf("river: %w", err)
		}
		if err := riverClient.Start(ctx); err != nil {
			return fmt.Errorf("river start: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := riverClient.Stop(stopCtx); err != nil {
				logger.Error("river stop", "error", err)
			}
		}()

		repo = sqlRepo
		publisher = riveradapter.NewPublisher(riverClient)
	default:
		repo = memory.New()
		publisher = memory.NewLogPublisher(logger)
	}

	repo = oteladapter.NewTracingRepository(repo)
	publisher = oteladapter.NewTracingPublisher(publisher)

	// --- Application ---
	executor := timer.New(cfg.SchedulerWorkers, logger)
	updater := app.NewStatusUpdater(repo, fsm.New(), publisher, logger)
	deliveries := app.NewDeliveryScheduler(updater, executor, app.WithLogger(logger))
	scheduler, err := oteladapter.NewTracingScheduler(deliveries)
	if err != nil {
		return fmt.Errorf("scheduler metrics: %w", err)
	}
	pipeline := app.NewPipeline(
		app.NewOverlapChecker(repo, logger),
		app.NewCancelEligibilityChecker(),
	)
	svc := app.NewOrderService(repo, pipeline, scheduler, publisher, nil, logger)

	// --- Adapters (in) ---
	router := handler.NewRouter(svc, handler.RouterConfig{
		ServiceName: cfg.Otel.ServiceName,
		Version:     version,
		Credentials: map[string]string{cfg.Username: cfg.Password},
		Logger:      logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("waterorder listening", "port", cfg.Port, "store", cfg.Store, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := executor.Stop(shutdownCtx); err != nil {
		logger.Error("timer executor stop", "error", err)
	}

	logger.Info("stopped", "pending_deliveries", deliveries.Pending())
	return nil
}
