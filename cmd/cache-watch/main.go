package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/cache"
	"github.com/jafarshop/marketorders/internal/config"
	"github.com/jafarshop/marketorders/internal/logging"
)

// cache-watch prints every cache tag invalidation broadcast on the configured channel.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub := cache.NewSubscriber(cfg.Database.DSN(), cfg.Cache.InvalidationChannel, logger)
	err = sub.Run(ctx, func(tag cache.Tag) {
		logger.Info("Cache tag invalidated", zap.String("tag", string(tag)))
	})
	if err != nil && ctx.Err() == nil {
		logger.Fatal("Cache listener stopped", zap.Error(err))
	}
}
