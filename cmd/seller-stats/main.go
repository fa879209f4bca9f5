package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/auth"
	"github.com/jafarshop/marketorders/internal/config"
	"github.com/jafarshop/marketorders/internal/repository/postgres"
	"github.com/jafarshop/marketorders/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/seller-stats/main.go <seller-id> [status]")
		fmt.Println("Example: go run cmd/seller-stats/main.go 3f1c2a9e-6a51-4b0e-9a55-0c7f4f1d2e11 active")
		os.Exit(1)
	}

	sellerID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid seller ID: %v\n", err)
		os.Exit(1)
	}
	status := ""
	if len(os.Args) > 2 {
		status = os.Args[2]
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, nil, logger)
	orders := service.NewOrderReadService(repos, auth.ContextGate{}, logger, service.ReadOptions{
		BuyerOrdersLimit: cfg.Orders.BuyerOrdersLimit,
		DefaultPageSize:  cfg.Orders.SellerOrdersPageSize,
	})

	// Act as the seller
	ctx := auth.WithSession(context.Background(), auth.Session{UserID: sellerID})

	stats := orders.GetSellerOrderStats(ctx)
	if !stats.OK {
		fmt.Fprintf(os.Stderr, "Failed to load stats: %s (%s)\n", stats.Error, stats.Code)
		os.Exit(1)
	}

	fmt.Printf("Seller %s\n\n", sellerID)
	fmt.Printf("  pending:    %d\n", stats.Data.Pending)
	fmt.Printf("  received:   %d\n", stats.Data.Received)
	fmt.Printf("  processing: %d\n", stats.Data.Processing)
	fmt.Printf("  shipped:    %d\n", stats.Data.Shipped)
	fmt.Printf("  delivered:  %d\n", stats.Data.Delivered)
	fmt.Printf("  cancelled:  %d\n", stats.Data.Cancelled)
	fmt.Printf("  total:      %d\n\n", stats.Data.Total)

	page := orders.GetSellerOrders(ctx, service.SellerOrdersQuery{Status: status})
	if !page.OK {
		fmt.Fprintf(os.Stderr, "Failed to load orders: %s (%s)\n", page.Error, page.Code)
		os.Exit(1)
	}

	fmt.Printf("Latest items (page %d of %d, %d total):\n", page.Data.CurrentPage, page.Data.TotalPages, page.Data.TotalItems)
	out, _ := json.MarshalIndent(page.Data.Orders, "", "  ")
	fmt.Println(string(out))
}
