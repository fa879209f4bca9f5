package domain

// OrderItemStatus represents the fulfillment status of a single seller line item
type OrderItemStatus string

const (
	OrderItemStatusPending    OrderItemStatus = "pending"
	OrderItemStatusReceived   OrderItemStatus = "received"
	OrderItemStatusProcessing OrderItemStatus = "processing"
	OrderItemStatusShipped    OrderItemStatus = "shipped"
	OrderItemStatusDelivered  OrderItemStatus = "delivered"
	OrderItemStatusCancelled  OrderItemStatus = "cancelled"
)

// OrderItemStatuses lists every status in fulfillment order, cancelled last.
var OrderItemStatuses = []OrderItemStatus{
	OrderItemStatusPending,
	OrderItemStatusReceived,
	OrderItemStatusProcessing,
	OrderItemStatusShipped,
	OrderItemStatusDelivered,
	OrderItemStatusCancelled,
}

// ParseOrderItemStatus converts a raw value into an OrderItemStatus
func ParseOrderItemStatus(raw string) (OrderItemStatus, bool) {
	s := OrderItemStatus(raw)
	return s, s.IsValid()
}

// IsValid checks if the order item status is valid
func (s OrderItemStatus) IsValid() bool {
	switch s {
	case OrderItemStatusPending,
		OrderItemStatusReceived,
		OrderItemStatusProcessing,
		OrderItemStatusShipped,
		OrderItemStatusDelivered,
		OrderItemStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid.
// Fulfillment only moves forward; cancelled is reachable until the item ships.
func (s OrderItemStatus) CanTransitionTo(newStatus OrderItemStatus) bool {
	switch s {
	case OrderItemStatusPending:
		return newStatus == OrderItemStatusReceived ||
			newStatus == OrderItemStatusProcessing ||
			newStatus == OrderItemStatusCancelled
	case OrderItemStatusReceived:
		return newStatus == OrderItemStatusProcessing ||
			newStatus == OrderItemStatusCancelled
	case OrderItemStatusProcessing:
		return newStatus == OrderItemStatusShipped ||
			newStatus == OrderItemStatusCancelled
	case OrderItemStatusShipped:
		return newStatus == OrderItemStatusDelivered
	case OrderItemStatusDelivered, OrderItemStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// CancellableStatuses returns the statuses from which a buyer may cancel.
func CancellableStatuses() []OrderItemStatus {
	out := make([]OrderItemStatus, 0, 3)
	for _, s := range OrderItemStatuses {
		if s.CanTransitionTo(OrderItemStatusCancelled) {
			out = append(out, s)
		}
	}
	return out
}

// ReturnRequestStatus represents the lifecycle of a buyer return request
type ReturnRequestStatus string

const (
	ReturnRequestStatusRequested ReturnRequestStatus = "requested"
	ReturnRequestStatusApproved  ReturnRequestStatus = "approved"
	ReturnRequestStatusRejected  ReturnRequestStatus = "rejected"
	ReturnRequestStatusReceived  ReturnRequestStatus = "received"
	ReturnRequestStatusRefunded  ReturnRequestStatus = "refunded"
	ReturnRequestStatusCancelled ReturnRequestStatus = "cancelled"
)

// IsActive reports whether the request still blocks a new request for the same item.
func (s ReturnRequestStatus) IsActive() bool {
	return s != ReturnRequestStatusCancelled
}

// ConversationStatus represents whether a support thread is open
type ConversationStatus string

const (
	ConversationStatusOpen   ConversationStatus = "open"
	ConversationStatusClosed ConversationStatus = "closed"
)

// MessageType distinguishes how a message was authored
type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeSystem      MessageType = "system"
	MessageTypeIssueReport MessageType = "issue_report"
)

// IssueType is the closed set of problems a buyer can report on an order item
type IssueType string

const (
	IssueTypeNotReceived    IssueType = "not_received"
	IssueTypeWrongItem      IssueType = "wrong_item"
	IssueTypeDamaged        IssueType = "damaged"
	IssueTypeNotAsDescribed IssueType = "not_as_described"
	IssueTypeMissingParts   IssueType = "missing_parts"
	IssueTypeOther          IssueType = "other"
)

// ParseIssueType converts a raw value into an IssueType
func ParseIssueType(raw string) (IssueType, bool) {
	t := IssueType(raw)
	return t, t.Subject() != ""
}

// Subject returns the human subject line for the issue type, or "" if the type is unknown.
func (t IssueType) Subject() string {
	switch t {
	case IssueTypeNotReceived:
		return "Item not received"
	case IssueTypeWrongItem:
		return "Wrong item received"
	case IssueTypeDamaged:
		return "Item arrived damaged"
	case IssueTypeNotAsDescribed:
		return "Item not as described"
	case IssueTypeMissingParts:
		return "Missing parts or accessories"
	case IssueTypeOther:
		return "Other issue"
	default:
		return ""
	}
}

// StatusFilter selects which seller order items are listed
type StatusFilter string

const (
	StatusFilterAll    StatusFilter = "all"
	StatusFilterActive StatusFilter = "active"
)

// ParseStatusFilter accepts any order item status plus "all" and "active". Empty means all.
func ParseStatusFilter(raw string) (StatusFilter, bool) {
	switch raw {
	case "":
		return StatusFilterAll, true
	case string(StatusFilterAll), string(StatusFilterActive):
		return StatusFilter(raw), true
	}
	if _, ok := ParseOrderItemStatus(raw); ok {
		return StatusFilter(raw), true
	}
	return "", false
}

// Statuses expands the filter into the concrete statuses it matches. nil means no restriction.
func (f StatusFilter) Statuses() []OrderItemStatus {
	switch f {
	case StatusFilterAll, "":
		return nil
	case StatusFilterActive:
		return []OrderItemStatus{
			OrderItemStatusPending,
			OrderItemStatusReceived,
			OrderItemStatusProcessing,
			OrderItemStatusShipped,
		}
	default:
		return []OrderItemStatus{OrderItemStatus(f)}
	}
}

// NotificationType identifies the kind of notification sent to a user
type NotificationType string

const (
	NotificationTypeOrderCancelled NotificationType = "order_cancelled"
	NotificationTypeOrderIssue     NotificationType = "order_issue"
)
