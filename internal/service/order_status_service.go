package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/auth"
	"github.com/jafarshop/marketorders/internal/cache"
	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/internal/repository"
	"github.com/jafarshop/marketorders/pkg/errors"
)

const (
	minReturnReasonLength     = 3
	maxReasonLength           = 1000
	minIssueDescriptionLength = 10
	maxIssueDescriptionLength = 5000
)

// OrderActions exposes the buyer-initiated order item transitions
type OrderActions interface {
	RequestReturn(ctx context.Context, in ReturnInput) ActionResult
	RequestOrderCancellation(ctx context.Context, in CancellationInput) ActionResult
	ReportOrderIssue(ctx context.Context, in IssueReportInput) ActionResult
}

type orderStatusService struct {
	repos    *repository.Repositories
	gate     auth.Gate
	bridge   *conversationBridge
	effects  sideEffects
	logger   *zap.Logger
	validate *validator.Validate
}

// NewOrderStatusService creates the order status engine
func NewOrderStatusService(repos *repository.Repositories, gate auth.Gate, invalidator cache.Invalidator, logger *zap.Logger) *orderStatusService {
	return &orderStatusService{
		repos:  repos,
		gate:   gate,
		bridge: NewConversationBridge(repos, logger),
		effects: sideEffects{
			notifications: repos.Notification,
			cache:         invalidator,
			logger:        logger,
		},
		logger:   logger,
		validate: newValidator(),
	}
}

// RequestReturn opens a return request for a delivered item
func (s *orderStatusService) RequestReturn(ctx context.Context, in ReturnInput) (res ActionResult) {
	const op = "requestReturn"
	defer recoverAction(s.logger, op, &res)

	if err := s.validate.Struct(in); err != nil {
		return s.inputFailure(err)
	}

	session, ok := s.gate.RequireAuth(ctx)
	if !ok {
		return actionFail(KindNotAuthenticated, msgNotAuthenticated)
	}

	reason := strings.TrimSpace(in.Reason)
	if n := utf8.RuneCountInString(reason); n < minReturnReasonLength {
		return actionFail(KindValidationFailed, msgReturnReason)
	} else if n > maxReasonLength {
		return actionFail(KindValidationFailed, msgReasonTooLong)
	}

	row, failure := s.loadOwnedItem(ctx, op, in.OrderItemID, session)
	if failure != nil {
		return *failure
	}

	if row.Item.Status != domain.OrderItemStatusDelivered {
		return actionFail(KindInvalidStatus, msgReturnNotDelivered)
	}

	exists, err := s.repos.ReturnRequest.ExistsActive(ctx, row.Item.ID, session.UserID)
	if err != nil {
		s.logger.Error("Failed to check existing return request",
			zap.String("order_item_id", row.Item.ID.String()),
			zap.Error(err),
		)
		return actionFail(KindCreateFailed, msgReturnFailed)
	}
	if exists {
		return actionFail(KindAlreadyExists, msgReturnExists)
	}

	err = s.repos.ReturnRequest.Create(ctx, &domain.ReturnRequest{
		OrderItemID: row.Item.ID,
		OrderID:     row.Item.OrderID,
		BuyerID:     session.UserID,
		SellerID:    row.Item.SellerID,
		Reason:      reason,
		Status:      domain.ReturnRequestStatusRequested,
	})
	if errors.IsConflict(err) {
		return actionFail(KindAlreadyExists, msgReturnExists)
	}
	if err != nil {
		s.logger.Error("Failed to create return request",
			zap.String("order_item_id", row.Item.ID.String()),
			zap.Error(err),
		)
		return actionFail(KindCreateFailed, msgReturnFailed)
	}

	s.logger.Info("Return requested",
		zap.String("order_item_id", row.Item.ID.String()),
		zap.String("buyer_id", session.UserID.String()),
	)
	s.effects.invalidate(ctx, op, cache.TagOrders, cache.TagMessages, cache.TagConversations)

	return actionOK()
}

// RequestOrderCancellation cancels an item that has not shipped yet. There is no seller
// approval step; the seller is notified after the fact.
func (s *orderStatusService) RequestOrderCancellation(ctx context.Context, in CancellationInput) (res ActionResult) {
	const op = "requestOrderCancellation"
	defer recoverAction(s.logger, op, &res)

	if err := s.validate.Struct(in); err != nil {
		return s.inputFailure(err)
	}

	session, ok := s.gate.RequireAuth(ctx)
	if !ok {
		return actionFail(KindNotAuthenticated, msgNotAuthenticated)
	}

	reason := strings.TrimSpace(in.Reason)
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return actionFail(KindValidationFailed, msgReasonTooLong)
	}

	row, failure := s.loadOwnedItem(ctx, op, in.OrderItemID, session)
	if failure != nil {
		return *failure
	}

	switch row.Item.Status {
	case domain.OrderItemStatusShipped:
		return actionFail(KindInvalidStatus, msgCancelShipped)
	case domain.OrderItemStatusDelivered:
		return actionFail(KindInvalidStatus, msgCancelDelivered)
	case domain.OrderItemStatusCancelled:
		return actionFail(KindAlreadyExists, msgCancelCancelled)
	}
	if !row.Item.Status.CanTransitionTo(domain.OrderItemStatusCancelled) {
		return actionFail(KindInvalidStatus, msgCancelNotAllowed)
	}

	updated, err := s.repos.OrderItem.UpdateStatusFrom(ctx, row.Item.ID,
		domain.CancellableStatuses(), domain.OrderItemStatusCancelled)
	if err != nil {
		s.logger.Error("Failed to cancel order item",
			zap.String("order_item_id", row.Item.ID.String()),
			zap.Error(err),
		)
		return actionFail(KindUpdateFailed, msgCancelFailed)
	}
	if !updated {
		// status moved on between the read and the guarded update
		s.logger.Warn("Order item cancellation lost a race",
			zap.String("order_item_id", row.Item.ID.String()),
			zap.Error(&errors.ErrInvalidStateTransition{From: row.Item.Status, To: domain.OrderItemStatusCancelled}),
		)
		return actionFail(KindInvalidStatus, msgCancelNotAllowed)
	}

	s.logger.Info("Order item cancelled",
		zap.String("order_item_id", row.Item.ID.String()),
		zap.String("from", string(row.Item.Status)),
	)

	orderID := row.Item.OrderID
	body := fmt.Sprintf("The buyer cancelled %s", productLabel(productTitle(row)))
	if reason != "" {
		body += ": " + reason
	}
	s.effects.notify(ctx, op, &domain.Notification{
		UserID: row.Item.SellerID,
		Type:   domain.NotificationTypeOrderCancelled,
		Title:  "Order item cancelled",
		Body:   body,
		Data: map[string]interface{}{
			"order_id":        orderID.String(),
			"order_item_id":   row.Item.ID.String(),
			"product_id":      row.Item.ProductID.String(),
			"previous_status": string(row.Item.Status),
			"reason":          reason,
		},
		OrderID: &orderID,
	})
	s.effects.invalidate(ctx, op, cache.TagOrders)

	return actionOK()
}

// ReportOrderIssue posts a buyer issue into the order's support conversation.
// Any item can be reported regardless of its status.
func (s *orderStatusService) ReportOrderIssue(ctx context.Context, in IssueReportInput) (res ActionResult) {
	const op = "reportOrderIssue"
	defer recoverAction(s.logger, op, &res)

	if err := s.validate.Struct(in); err != nil {
		return s.inputFailure(err)
	}
	issueType, _ := domain.ParseIssueType(in.IssueType)

	session, ok := s.gate.RequireAuth(ctx)
	if !ok {
		return actionFail(KindNotAuthenticated, msgNotAuthenticated)
	}

	description := strings.TrimSpace(in.Description)
	if n := utf8.RuneCountInString(description); n < minIssueDescriptionLength {
		return actionFail(KindValidationFailed, msgIssueDescription)
	} else if n > maxIssueDescriptionLength {
		return actionFail(KindValidationFailed, msgIssueTooLong)
	}

	row, failure := s.loadOwnedItem(ctx, op, in.OrderItemID, session)
	if failure != nil {
		return *failure
	}

	var productID *uuid.UUID
	if row.Item.ProductID != uuid.Nil {
		id := row.Item.ProductID
		productID = &id
	}

	convID, err := s.bridge.Open(ctx, IssueThread{
		BuyerID:      session.UserID,
		SellerID:     row.Item.SellerID,
		OrderID:      row.Item.OrderID,
		OrderItemID:  row.Item.ID,
		ProductID:    productID,
		ProductTitle: productTitle(row),
		IssueType:    issueType,
		Body:         description,
	})
	if err != nil {
		s.logger.Error("Failed to report order issue",
			zap.String("order_item_id", row.Item.ID.String()),
			zap.Error(err),
		)
		var be *bridgeError
		if stderrors.As(err, &be) && be.stage == stageMessage {
			return actionFail(KindCreateFailed, msgIssueMessageFailed)
		}
		return actionFail(KindCreateFailed, msgConversationFailed)
	}

	s.effects.invalidate(ctx, op, cache.TagOrders, cache.TagMessages, cache.TagConversations)

	res = actionOK()
	res.ConversationID = &convID
	return res
}

// loadOwnedItem re-reads the item with its order and checks the caller bought it.
func (s *orderStatusService) loadOwnedItem(ctx context.Context, op, rawID string, session auth.Session) (*domain.OrderItemWithOrder, *ActionResult) {
	itemID, err := uuid.Parse(rawID)
	if err != nil {
		failure := actionFail(KindInvalidInput, msgInvalidItemID)
		return nil, &failure
	}

	row, err := s.repos.OrderItem.GetWithOrder(ctx, itemID)
	if errors.IsNotFound(err) {
		failure := actionFail(KindNotFound, msgItemNotFound)
		return nil, &failure
	}
	if err != nil {
		s.logger.Error("Failed to load order item",
			zap.String("operation", op),
			zap.String("order_item_id", itemID.String()),
			zap.Error(err),
		)
		failure := actionFail(KindUnexpected, msgUnexpected)
		return nil, &failure
	}

	if row.Order.UserID != session.UserID {
		s.logger.Warn("Order item access denied",
			zap.String("operation", op),
			zap.String("order_item_id", itemID.String()),
			zap.String("user_id", session.UserID.String()),
		)
		failure := actionFail(KindNotAuthorized, msgNotAuthorized)
		return nil, &failure
	}

	return row, nil
}

func (s *orderStatusService) inputFailure(err error) ActionResult {
	if firstInvalidField(err) == "OrderItemID" {
		return actionFail(KindInvalidInput, msgInvalidItemID)
	}
	return actionFail(KindInvalidInput, msgInvalidInput)
}

func productTitle(row *domain.OrderItemWithOrder) string {
	if row.Item.Product == nil {
		return ""
	}
	return row.Item.Product.Title
}
