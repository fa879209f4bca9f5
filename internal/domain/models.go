package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingAddress is the structured address stored on an order (JSONB)
type ShippingAddress struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Order represents a buyer's checkout transaction
type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TotalAmount     decimal.Decimal
	Status          string
	ShippingAddress ShippingAddress
	CreatedAt       time.Time
	Items           []*OrderItem
}

// OrderItem represents one seller's line item within an order
type OrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ProductID        uuid.UUID
	SellerID         uuid.UUID
	Quantity         int
	PriceAtPurchase  decimal.Decimal
	Status           OrderItemStatus
	SellerReceivedAt *time.Time
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	TrackingNumber   *string
	ShippingCarrier  *string
	CreatedAt        time.Time
	Product          *ProductSummary
}

// ProductSummary is the product projection embedded in order listings
type ProductSummary struct {
	ID       uuid.UUID
	Title    string
	ImageURL *string
}

// OrderSummary is the parent order projection embedded in item listings
type OrderSummary struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TotalAmount     decimal.Decimal
	Status          string
	ShippingAddress ShippingAddress
	CreatedAt       time.Time
}

// OrderItemWithOrder is an order item joined with its parent order
type OrderItemWithOrder struct {
	Item  OrderItem
	Order OrderSummary
}

// ReturnRequest represents a buyer's request to return a delivered item
type ReturnRequest struct {
	ID          uuid.UUID
	OrderItemID uuid.UUID
	OrderID     uuid.UUID
	BuyerID     uuid.UUID
	SellerID    uuid.UUID
	Reason      string
	Status      ReturnRequestStatus
	CreatedAt   time.Time
}

// Conversation is a buyer/seller support thread, optionally tied to an order
type Conversation struct {
	ID                uuid.UUID
	BuyerID           uuid.UUID
	SellerID          uuid.UUID
	ProductID         *uuid.UUID
	OrderID           *uuid.UUID
	Subject           string
	Status            ConversationStatus
	LastMessageAt     time.Time
	SellerUnreadCount int
	CreatedAt         time.Time
}

// Message is an append-only entry in a conversation
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        string
	MessageType    MessageType
	CreatedAt      time.Time
}

// Notification is an in-app notification addressed to a user
type Notification struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Type           NotificationType
	Title          string
	Body           string
	Data           map[string]interface{} // JSONB
	OrderID        *uuid.UUID
	ConversationID *uuid.UUID
	CreatedAt      time.Time
}

// Profile is the public projection of a user profile
type Profile struct {
	ID        uuid.UUID
	FullName  *string
	AvatarURL *string
}

// SellerOrderStats tallies a seller's order items per status
type SellerOrderStats struct {
	Pending    int `json:"pending"`
	Received   int `json:"received"`
	Processing int `json:"processing"`
	Shipped    int `json:"shipped"`
	Delivered  int `json:"delivered"`
	Cancelled  int `json:"cancelled"`
	Total      int `json:"total"`
}

// Add counts one item with the given status. Unknown statuses are skipped so the buckets always sum to Total.
func (s *SellerOrderStats) Add(status OrderItemStatus) {
	switch status {
	case OrderItemStatusPending:
		s.Pending++
	case OrderItemStatusReceived:
		s.Received++
	case OrderItemStatusProcessing:
		s.Processing++
	case OrderItemStatusShipped:
		s.Shipped++
	case OrderItemStatusDelivered:
		s.Delivered++
	case OrderItemStatusCancelled:
		s.Cancelled++
	default:
		return
	}
	s.Total++
}
