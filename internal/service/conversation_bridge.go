package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/internal/repository"
)

// IssueThread describes a buyer report to post into the buyer/seller thread of an order
type IssueThread struct {
	BuyerID      uuid.UUID
	SellerID     uuid.UUID
	OrderID      uuid.UUID
	OrderItemID  uuid.UUID
	ProductID    *uuid.UUID
	ProductTitle string
	IssueType    domain.IssueType
	Body         string
}

// bridgeStage tells which write of the bridge failed
type bridgeStage string

const (
	stageConversation bridgeStage = "conversation"
	stageMessage      bridgeStage = "message"
)

type bridgeError struct {
	stage bridgeStage
	err   error
}

func (e *bridgeError) Error() string {
	return fmt.Sprintf("conversation bridge %s: %v", e.stage, e.err)
}

func (e *bridgeError) Unwrap() error { return e.err }

// conversationBridge finds or creates the thread for (buyer, seller, order), appends a
// system-authored issue message and notifies the seller.
type conversationBridge struct {
	conversations repository.ConversationRepository
	effects       sideEffects
	logger        *zap.Logger
	now           func() time.Time
}

// NewConversationBridge creates the support conversation bridge
func NewConversationBridge(repos *repository.Repositories, logger *zap.Logger) *conversationBridge {
	return &conversationBridge{
		conversations: repos.Conversation,
		effects:       sideEffects{notifications: repos.Notification, logger: logger},
		logger:        logger,
		now:           time.Now,
	}
}

// Open posts the issue and returns the conversation id. The thread lookup is keyed on a
// unique index so concurrent reports share one conversation; the message insert and the
// counter update commit together.
func (b *conversationBridge) Open(ctx context.Context, t IssueThread) (uuid.UUID, error) {
	now := b.now()
	subject := t.IssueType.Subject()
	orderID := t.OrderID

	convID, created, err := b.conversations.EnsureThread(ctx, &domain.Conversation{
		BuyerID:           t.BuyerID,
		SellerID:          t.SellerID,
		ProductID:         t.ProductID,
		OrderID:           &orderID,
		Subject:           subject,
		Status:            domain.ConversationStatusOpen,
		LastMessageAt:     now,
		SellerUnreadCount: 1,
	})
	if err != nil {
		return uuid.Nil, &bridgeError{stage: stageConversation, err: err}
	}
	if created {
		b.logger.Info("Created order conversation",
			zap.String("conversation_id", convID.String()),
			zap.String("order_id", t.OrderID.String()),
		)
	}

	msg := &domain.Message{
		ConversationID: convID,
		SenderID:       t.BuyerID,
		Content:        IssueMessageContent(subject, t.Body),
		MessageType:    domain.MessageTypeIssueReport,
	}
	if err := b.conversations.AppendMessage(ctx, msg, now); err != nil {
		return uuid.Nil, &bridgeError{stage: stageMessage, err: err}
	}

	b.effects.notify(ctx, "reportOrderIssue", &domain.Notification{
		UserID: t.SellerID,
		Type:   domain.NotificationTypeOrderIssue,
		Title:  "New issue reported",
		Body:   fmt.Sprintf("A buyer reported \"%s\" for %s", subject, productLabel(t.ProductTitle)),
		Data: map[string]interface{}{
			"order_id":        t.OrderID.String(),
			"order_item_id":   t.OrderItemID.String(),
			"conversation_id": convID.String(),
			"issue_type":      string(t.IssueType),
		},
		OrderID:        &orderID,
		ConversationID: &convID,
	})

	return convID, nil
}

// IssueMessageContent renders the issue marker followed by the buyer's description.
func IssueMessageContent(subject, body string) string {
	return fmt.Sprintf("🚩 **Issue Report: %s**\n\n%s", subject, body)
}

func productLabel(title string) string {
	if title == "" {
		return "an order item"
	}
	return fmt.Sprintf("\"%s\"", title)
}
