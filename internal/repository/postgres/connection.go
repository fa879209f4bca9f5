package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/config"
	"github.com/jafarshop/marketorders/internal/repository"
)

// NewConnection opens and verifies a Postgres connection pool
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewRepositories wires every repository. adminDB is the privileged handle used for
// writes addressed to users other than the caller (notifications).
func NewRepositories(db, adminDB *sql.DB, logger *zap.Logger) *repository.Repositories {
	if adminDB == nil {
		adminDB = db
	}
	return &repository.Repositories{
		Order:         NewOrderRepository(db, logger),
		OrderItem:     NewOrderItemRepository(db, logger),
		ReturnRequest: NewReturnRequestRepository(db, logger),
		Conversation:  NewConversationRepository(db, logger),
		Notification:  NewNotificationRepository(adminDB, logger),
		Profile:       NewProfileRepository(db, logger),
	}
}
