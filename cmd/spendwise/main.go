package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendwise/internal/backend"
	"spendwise/internal/config"
	"spendwise/internal/events"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
	"spendwise/internal/services"
	"spendwise/internal/stream"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend))
	result, err := factory.CreateBackend(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// Change-event bridge is optional: without AMQP each instance only
	// notifies its own subscribers.
	var bus *events.Client
	if cfg.AMQPURL != "" {
		queue := "spendwise." + uuid.NewString()
		bus, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, queue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
			bus = nil
		} else {
			defer bus.Close()
			logger.Info("Initialized AMQP change-event bridge", "exchange", cfg.AMQPExchange, "queue", queue)
		}
	}

	// A typed nil would defeat the services' nil check.
	var publisher services.EventPublisher
	if bus != nil {
		publisher = bus
	}

	hub := stream.NewHub()
	accounts := services.NewAccountService(result.Identity, result.Store)
	expenses := services.NewExpenseService(result.Store, hub, publisher)
	budgets := services.NewBudgetService(result.Store, hub, publisher)
	dashboards := services.NewDashboardService(result.Store, hub, budgets)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Accounts:       accounts,
		Expenses:       expenses,
		Budgets:        budgets,
		Dashboards:     dashboards,
		Logger:         logger.WithComponent(log.ComponentHTTP),
		ChartCacheSize: cfg.ChartCacheSize,
		ChartCacheTTL:  cfg.ChartCacheTTL,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spendwise server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if bus != nil {
		g.Go(func() error {
			err := bus.Consume(gctx, func(event *events.ChangeEvent) error {
				return expenses.HandleChangeEvent(gctx, event)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
