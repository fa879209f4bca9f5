package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jafarshop/marketorders/internal/domain"
)

// SellerOrdersQuery selects a page of the caller's seller order items.
// Nil Page / PageSize fall back to 1 and the configured default page size.
type SellerOrdersQuery struct {
	Status   string
	Page     *int
	PageSize *int
}

// ReturnInput is the payload of RequestReturn
type ReturnInput struct {
	OrderItemID string `json:"order_item_id" validate:"required,uuid"`
	Reason      string `json:"reason"`
}

// CancellationInput is the payload of RequestOrderCancellation
type CancellationInput struct {
	OrderItemID string `json:"order_item_id" validate:"required,uuid"`
	Reason      string `json:"reason"`
}

// IssueReportInput is the payload of ReportOrderIssue
type IssueReportInput struct {
	OrderItemID string `json:"order_item_id" validate:"required,uuid"`
	IssueType   string `json:"issue_type" validate:"required,issue_type"`
	Description string `json:"description"`
}

type ProductView struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	ImageURL *string   `json:"image_url,omitempty"`
}

type OrderSummaryView struct {
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OrderItemView struct {
	ID               uuid.UUID              `json:"id"`
	OrderID          uuid.UUID              `json:"order_id"`
	ProductID        uuid.UUID              `json:"product_id"`
	SellerID         uuid.UUID              `json:"seller_id"`
	Quantity         int                    `json:"quantity"`
	PriceAtPurchase  decimal.Decimal        `json:"price_at_purchase"`
	Status           domain.OrderItemStatus `json:"status"`
	SellerReceivedAt *time.Time             `json:"seller_received_at,omitempty"`
	ShippedAt        *time.Time             `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time             `json:"delivered_at,omitempty"`
	TrackingNumber   *string                `json:"tracking_number,omitempty"`
	ShippingCarrier  *string                `json:"shipping_carrier,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	Product          *ProductView           `json:"product,omitempty"`
	Order            *OrderSummaryView      `json:"order,omitempty"`
}

type BuyerView struct {
	ID        uuid.UUID `json:"id"`
	FullName  *string   `json:"full_name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type SellerOrderView struct {
	OrderItemView
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	Buyer           BuyerView              `json:"buyer"`
}

type SellerOrdersPage struct {
	Orders      []SellerOrderView `json:"orders"`
	CurrentPage int               `json:"current_page"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	TotalItems  int               `json:"total_items"`
}

type OrderConversation struct {
	ConversationID *uuid.UUID `json:"conversation_id"`
}

type OrderDetails struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"user_id"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	Status          string                 `json:"status"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time              `json:"created_at"`
	Items           []OrderItemView        `json:"items"`
}

func toItemView(item domain.OrderItem) OrderItemView {
	view := OrderItemView{
		ID:               item.ID,
		OrderID:          item.OrderID,
		ProductID:        item.ProductID,
		SellerID:         item.SellerID,
		Quantity:         item.Quantity,
		PriceAtPurchase:  item.PriceAtPurchase,
		Status:           item.Status,
		SellerReceivedAt: item.SellerReceivedAt,
		ShippedAt:        item.ShippedAt,
		DeliveredAt:      item.DeliveredAt,
		TrackingNumber:   item.TrackingNumber,
		ShippingCarrier:  item.ShippingCarrier,
		CreatedAt:        item.CreatedAt,
	}
	if item.Product != nil {
		view.Product = &ProductView{
			ID:       item.Product.ID,
			Title:    item.Product.Title,
			ImageURL: item.Product.ImageURL,
		}
	}
	return view
}

func toOrderSummaryView(o domain.OrderSummary) *OrderSummaryView {
	return &OrderSummaryView{
		ID:          o.ID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	}
}

func toOrderDetails(o *domain.Order) *OrderDetails {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, toItemView(*item))
	}
	return &OrderDetails{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		Items:           items,
	}
}
