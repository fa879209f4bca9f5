package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/metrics"
)

// ErrorKind is the machine-readable failure code carried by every envelope
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "invalid_input"
	KindNotAuthenticated ErrorKind = "not_authenticated"
	KindNotFound         ErrorKind = "not_found"
	KindNotAuthorized    ErrorKind = "not_authorized"
	KindInvalidStatus    ErrorKind = "invalid_status"
	KindAlreadyExists    ErrorKind = "already_exists"
	KindValidationFailed ErrorKind = "validation_failed"
	KindCreateFailed     ErrorKind = "create_failed"
	KindUpdateFailed     ErrorKind = "update_failed"
	KindUnexpected       ErrorKind = "unexpected"
)

// User-facing failure messages
const (
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidOrderID     = "Invalid order ID"
	msgInvalidItemID      = "Invalid order item ID"
	msgInvalidInput       = "Invalid input"
	msgUnexpected         = "An unexpected error occurred"
	msgOrderNotFound      = "Order not found"
	msgItemNotFound       = "Order item not found"
	msgNotAuthorized      = "You are not authorized to modify this order"
	msgLoadOrders         = "Failed to load orders"
	msgLoadStats          = "Failed to load order statistics"
	msgLoadConversation   = "Failed to load conversation"
	msgInvalidFilter      = "Invalid status filter"
	msgInvalidPage        = "Invalid page"
	msgInvalidPageSize    = "Invalid page size"
	msgReturnReason       = "Please provide a reason for the return (at least 3 characters)"
	msgReturnNotDelivered = "Returns can only be requested for delivered items"
	msgReturnExists       = "A return request already exists for this item"
	msgReasonTooLong      = "Reason must be at most 1000 characters"
	msgReturnFailed       = "Failed to create return request"
	msgCancelShipped      = "This item has already been shipped and cannot be cancelled"
	msgCancelDelivered    = "This item has already been delivered and cannot be cancelled"
	msgCancelCancelled    = "This item has already been cancelled"
	msgCancelNotAllowed   = "This item can no longer be cancelled"
	msgCancelFailed       = "Failed to cancel order item"
	msgIssueDescription   = "Please describe the issue in at least 10 characters"
	msgIssueTooLong       = "Issue description must be at most 5000 characters"
	msgConversationFailed = "Failed to create conversation"
	msgIssueMessageFailed = "Failed to send issue report"
)

// ReadResult is the envelope returned by read operations. On failure Data holds a
// caller-safe default (empty list, zeroed stats) so it can be rendered without branching.
type ReadResult[T any] struct {
	OK    bool      `json:"ok"`
	Data  T         `json:"data"`
	Error string    `json:"error,omitempty"`
	Code  ErrorKind `json:"code,omitempty"`
}

func readOK[T any](data T) ReadResult[T] {
	return ReadResult[T]{OK: true, Data: data}
}

func readFail[T any](kind ErrorKind, message string, safe T) ReadResult[T] {
	return ReadResult[T]{Error: message, Code: kind, Data: safe}
}

// ActionResult is the envelope returned by status engine operations
type ActionResult struct {
	Success        bool       `json:"success"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
	Error          string     `json:"error,omitempty"`
	Code           ErrorKind  `json:"code,omitempty"`
}

func actionOK() ActionResult {
	return ActionResult{Success: true}
}

func actionFail(kind ErrorKind, message string) ActionResult {
	return ActionResult{Error: message, Code: kind}
}

// recoverRead turns a panic inside a read operation into an unexpected failure and
// records the outcome. It must be deferred directly.
func recoverRead[T any](logger *zap.Logger, op string, res *ReadResult[T], safe T) {
	if r := recover(); r != nil {
		logger.Error("Unexpected panic in order operation",
			zap.String("operation", op),
			zap.Any("panic", r),
			zap.Stack("stacktrace"),
		)
		*res = readFail(KindUnexpected, msgUnexpected, safe)
	}
	observe(op, res.OK, res.Code)
}

// recoverAction is recoverRead for status engine operations.
func recoverAction(logger *zap.Logger, op string, res *ActionResult) {
	if r := recover(); r != nil {
		logger.Error("Unexpected panic in order operation",
			zap.String("operation", op),
			zap.Any("panic", r),
			zap.Stack("stacktrace"),
		)
		*res = actionFail(KindUnexpected, msgUnexpected)
	}
	observe(op, res.Success, res.Code)
}

func observe(op string, ok bool, code ErrorKind) {
	label := "ok"
	if !ok {
		label = string(code)
	}
	metrics.OperationOutcomesTotal.WithLabelValues(op, label).Inc()
}
