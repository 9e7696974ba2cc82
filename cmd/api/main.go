package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kart-checkout/internal/cache"
	"kart-checkout/internal/config"
	"kart-checkout/internal/database"
	"kart-checkout/internal/handler"
	"kart-checkout/internal/metrics"
	"kart-checkout/internal/middleware"
	"kart-checkout/internal/repository"
	"kart-checkout/internal/router"
	"kart-checkout/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting kart-checkout API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, "up", logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Redis backs idempotent checkout and order events. Without it checkout
	// ignores Idempotency-Key and events are only logged.
	var (
		idempotencyStore middleware.IdempotencyStore
		publisher        = cache.NewLogPublisher(logger)
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redisClient.Close()

		idempotencyStore = redisClient
		publisher = cache.NewRedisPublisher(redisClient, cfg.Redis.OrderChannel, logger)
	} else {
		logger.Info().Msg("redis disabled, idempotency keys are ignored")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	// Initialize repositories
	txr := repository.NewTransactor(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	inventoryRepo := repository.NewInventoryRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	checkoutRepo := repository.NewCheckoutRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	shopperRepo := repository.NewShopperRepository(pool, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	inventoryService := service.NewInventoryService(inventoryRepo, checkoutMetrics, logger)
	cartService := service.NewCartService(cartRepo, productRepo, inventoryRepo, logger)
	orderService := service.NewOrderService(txr, orderRepo, inventoryRepo, checkoutMetrics, logger)
	checkoutService := service.NewCheckoutService(service.CheckoutRepositories{
		Tx:        txr,
		Cart:      cartRepo,
		Checkout:  checkoutRepo,
		Inventory: inventoryRepo,
		Products:  productRepo,
		Orders:    orderRepo,
		Shoppers:  shopperRepo,
	}, service.NewShippingFees(cfg.Checkout), checkoutMetrics, logger)

	opts := router.Options{
		APIKey:           cfg.Auth.APIKey,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.Redis.IdempotencyTTL,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		opts.MetricsPath = cfg.Metrics.Path
	}

	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, publisher, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Admin:    handler.NewAdminHandler(orderService, inventoryService, logger),
	}, opts, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
