package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/config"
	"github.com/jafarshop/marketorders/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Schema changes need the privileged role
	db, err := postgres.NewConnection(cfg.AdminDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	applied, err := postgres.Migrate(ctx, db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	if applied == 0 {
		fmt.Println("✅ Schema is up to date")
		return
	}
	fmt.Printf("✅ Applied %d migration(s) to %s\n", applied, cfg.AdminDB.DBName)
}
