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

	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/api"
	"github.com/jafarshop/marketorders/internal/auth"
	"github.com/jafarshop/marketorders/internal/cache"
	"github.com/jafarshop/marketorders/internal/config"
	"github.com/jafarshop/marketorders/internal/logging"
	"github.com/jafarshop/marketorders/internal/metrics"
	"github.com/jafarshop/marketorders/internal/repository/postgres"
	"github.com/jafarshop/marketorders/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	adminDB, err := postgres.NewConnection(cfg.AdminDB)
	if err != nil {
		logger.Fatal("Failed to connect to admin database", zap.Error(err))
	}
	defer adminDB.Close()

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		logger.Fatal("Failed to configure token verification", zap.Error(err))
	}

	invalidator, err := cache.NewPGNotifier(db, cfg.Cache.InvalidationChannel, logger)
	if err != nil {
		logger.Fatal("Failed to configure cache invalidation", zap.Error(err))
	}

	metrics.Register()

	repos := postgres.NewRepositories(db, adminDB, logger)
	gate := auth.ContextGate{}

	router := api.NewRouter(cfg, api.Services{
		Orders: service.NewOrderReadService(repos, gate, logger, service.ReadOptions{
			BuyerOrdersLimit: cfg.Orders.BuyerOrdersLimit,
			DefaultPageSize:  cfg.Orders.SellerOrdersPageSize,
		}),
		Actions:  service.NewOrderStatusService(repos, gate, invalidator, logger),
		Verifier: verifier,
		DB:       db,
	}, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
		return
	}

	logger.Info("Server shutdown complete")
}
