package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jafarshop/marketorders/internal/domain"
)

// Repositories bundles every store the order lifecycle services read and write.
// Notification is backed by the privileged handle; everything else by the caller-scoped one.
type Repositories struct {
	Order         OrderRepository
	OrderItem     OrderItemRepository
	ReturnRequest ReturnRequestRepository
	Conversation  ConversationRepository
	Notification  NotificationRepository
	Profile       ProfileRepository
}

// OrderRepository reads buyer orders
type OrderRepository interface {
	// ListIDsByBuyer returns the buyer's order ids, newest first.
	ListIDsByBuyer(ctx context.Context, buyerID uuid.UUID) ([]uuid.UUID, error)
	// GetForBuyer returns the order with its items when it exists and belongs to buyerID.
	// Both cases of absence yield *errors.ErrNotFound.
	GetForBuyer(ctx context.Context, orderID, buyerID uuid.UUID) (*domain.Order, error)
}

// SellerItemQuery selects a page of a seller's order items
type SellerItemQuery struct {
	SellerID uuid.UUID
	Statuses []domain.OrderItemStatus // empty means any status
	Limit    int
	Offset   int
}

// OrderItemRepository reads and updates order line items
type OrderItemRepository interface {
	// ListByOrderIDs returns items of the given orders joined with product and order, newest order first.
	ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID, limit int) ([]*domain.OrderItemWithOrder, error)
	// GetWithOrder returns the item joined with its parent order and product title.
	GetWithOrder(ctx context.Context, itemID uuid.UUID) (*domain.OrderItemWithOrder, error)
	CountBySeller(ctx context.Context, sellerID uuid.UUID, statuses []domain.OrderItemStatus) (int, error)
	ListBySeller(ctx context.Context, q SellerItemQuery) ([]*domain.OrderItemWithOrder, error)
	ListStatusesBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.OrderItemStatus, error)
	// UpdateStatusFrom moves the item to status only while its current status is one of from.
	// It reports false when no row matched.
	UpdateStatusFrom(ctx context.Context, itemID uuid.UUID, from []domain.OrderItemStatus, status domain.OrderItemStatus) (bool, error)
}

// ReturnRequestRepository stores buyer return requests
type ReturnRequestRepository interface {
	ExistsActive(ctx context.Context, orderItemID, buyerID uuid.UUID) (bool, error)
	// Create inserts the request. A concurrent active request for the same item and buyer
	// yields *errors.ErrConflict.
	Create(ctx context.Context, rr *domain.ReturnRequest) error
}

// ConversationRepository stores support conversations and their messages
type ConversationRepository interface {
	// FindByOrderParticipant returns the order's conversation where userID is buyer or seller.
	FindByOrderParticipant(ctx context.Context, orderID, userID uuid.UUID) (*domain.Conversation, error)
	// EnsureThread inserts conv unless a conversation already exists for its (buyer, seller, order),
	// and returns the id of whichever row is stored.
	EnsureThread(ctx context.Context, conv *domain.Conversation) (id uuid.UUID, created bool, err error)
	// AppendMessage inserts msg and, in the same transaction, reopens the conversation,
	// sets last_message_at to at and seller_unread_count to 1.
	AppendMessage(ctx context.Context, msg *domain.Message, at time.Time) error
}

// NotificationRepository writes user notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// ProfileRepository reads public profiles
type ProfileRepository interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Profile, error)
}
