package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/pkg/errors"
)

type conversationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *sql.DB, logger *zap.Logger) *conversationRepository {
	return &conversationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *conversationRepository) FindByOrderParticipant(ctx context.Context, orderID, userID uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, buyer_id, seller_id, product_id, order_id, subject, status,
		       last_message_at, seller_unread_count, created_at
		FROM conversations
		WHERE order_id = $1 AND (buyer_id = $2 OR seller_id = $2)
		ORDER BY created_at ASC
		LIMIT 1
	`

	var conv domain.Conversation
	var productID, convOrderID uuid.NullUUID
	var status string

	err := r.db.QueryRowContext(ctx, query, orderID, userID).Scan(
		&conv.ID,
		&conv.BuyerID,
		&conv.SellerID,
		&productID,
		&convOrderID,
		&conv.Subject,
		&status,
		&conv.LastMessageAt,
		&conv.SellerUnreadCount,
		&conv.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "conversation", ID: orderID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order conversation", zap.Error(err))
		return nil, err
	}

	conv.Status = domain.ConversationStatus(status)
	if productID.Valid {
		conv.ProductID = &productID.UUID
	}
	if convOrderID.Valid {
		conv.OrderID = &convOrderID.UUID
	}

	return &conv, nil
}

func (r *conversationRepository) EnsureThread(ctx context.Context, conv *domain.Conversation) (uuid.UUID, bool, error) {
	if conv.OrderID == nil {
		return uuid.Nil, false, fmt.Errorf("conversation thread requires an order id")
	}

	insert := `
		INSERT INTO conversations (id, buyer_id, seller_id, product_id, order_id, subject, status,
		                           last_message_at, seller_unread_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (buyer_id, seller_id, order_id) WHERE order_id IS NOT NULL DO NOTHING
		RETURNING id
	`

	now := time.Now()
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.LastMessageAt.IsZero() {
		conv.LastMessageAt = now
	}
	if conv.Status == "" {
		conv.Status = domain.ConversationStatusOpen
	}

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, insert,
		conv.ID,
		conv.BuyerID,
		conv.SellerID,
		nullableUUID(conv.ProductID),
		*conv.OrderID,
		conv.Subject,
		string(conv.Status),
		conv.LastMessageAt,
		conv.SellerUnreadCount,
		conv.CreatedAt,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		r.logger.Error("Failed to create conversation", zap.Error(err))
		return uuid.Nil, false, err
	}

	// Conflict: another request (or an earlier report) owns the thread.
	lookup := `
		SELECT id
		FROM conversations
		WHERE buyer_id = $1 AND seller_id = $2 AND order_id = $3
	`
	if err := r.db.QueryRowContext(ctx, lookup, conv.BuyerID, conv.SellerID, *conv.OrderID).Scan(&id); err != nil {
		r.logger.Error("Failed to load existing conversation", zap.Error(err))
		return uuid.Nil, false, err
	}

	return id, false, nil
}

func (r *conversationRepository) AppendMessage(ctx context.Context, msg *domain.Message, at time.Time) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = at
	}
	if msg.MessageType == "" {
		msg.MessageType = domain.MessageTypeText
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin message transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, message_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.Content, string(msg.MessageType), msg.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert message", zap.Error(err))
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message_at = $2, seller_unread_count = 1, status = $3
		WHERE id = $1
	`, msg.ConversationID, at, string(domain.ConversationStatusOpen))
	if err != nil {
		r.logger.Error("Failed to update conversation counters", zap.Error(err))
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to confirm conversation update", zap.Error(err))
		return err
	}
	if affected == 0 {
		return &errors.ErrNotFound{Resource: "conversation", ID: msg.ConversationID.String()}
	}

	return tx.Commit()
}
