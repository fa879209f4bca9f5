package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
)

type notificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a notification repository. db must be the privileged
// handle: recipients are other users, so row-level ownership checks do not apply.
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *notificationRepository {
	return &notificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, body, data, order_id, conversation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	data := n.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Body,
		payload,
		nullableUUID(n.OrderID),
		nullableUUID(n.ConversationID),
		n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.Error(err))
		return err
	}

	return nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
