package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/auth"
	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/internal/repository"
	"github.com/jafarshop/marketorders/pkg/errors"
)

const (
	defaultBuyerOrdersLimit = 200
	defaultSellerPageSize   = 10
)

// OrderReader exposes the buyer and seller order read operations
type OrderReader interface {
	GetBuyerOrders(ctx context.Context) ReadResult[[]OrderItemView]
	GetSellerOrders(ctx context.Context, q SellerOrdersQuery) ReadResult[SellerOrdersPage]
	GetSellerOrderStats(ctx context.Context) ReadResult[domain.SellerOrderStats]
	GetOrderConversation(ctx context.Context, orderID string) ReadResult[OrderConversation]
	GetBuyerOrderDetails(ctx context.Context, orderID string) ReadResult[*OrderDetails]
}

// ReadOptions tunes listing limits
type ReadOptions struct {
	BuyerOrdersLimit int
	DefaultPageSize  int
}

type orderReadService struct {
	repos    *repository.Repositories
	gate     auth.Gate
	logger   *zap.Logger
	validate *validator.Validate
	opts     ReadOptions
}

// NewOrderReadService creates a new order read service
func NewOrderReadService(repos *repository.Repositories, gate auth.Gate, logger *zap.Logger, opts ReadOptions) *orderReadService {
	if opts.BuyerOrdersLimit < 1 {
		opts.BuyerOrdersLimit = defaultBuyerOrdersLimit
	}
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = defaultSellerPageSize
	}
	return &orderReadService{
		repos:    repos,
		gate:     gate,
		logger:   logger,
		validate: newValidator(),
		opts:     opts,
	}
}

// GetBuyerOrders lists the caller's order items, newest order first
func (s *orderReadService) GetBuyerOrders(ctx context.Context) (res ReadResult[[]OrderItemView]) {
	const op = "getBuyerOrders"
	empty := []OrderItemView{}
	defer recoverRead(s.logger, op, &res, empty)

	session, ok := s.gate.RequireAuth(ctx)
	if !ok {
		return readFail(KindNotAuthenticated, msgNotAuthenticated, empty)
	}

	orderIDs, err := s.repos.Order.ListIDsByBuyer(ctx, session.UserID)
	if err != nil {
		s.logger.Error("Failed to list buyer orders", zap.String("user_id", session.UserID.String()), zap.Error(err))
		return readFail(KindUnexpected, msgLoadOrders, empty)
	}
	if len(orderIDs) == 0 {
		return readOK(empty)
	}

	rows, err := s.repos.OrderItem.ListByOrderIDs(ctx, orderIDs, s.opts.BuyerOrdersLimit)
	if err != nil {
		s.logger.Error("Failed to list buyer order items", zap.String("user_id", session.UserID.String()), zap.Error(err))
		return readFail(KindUnexpected, msgLoadOrders, empty)
	}

	items := make([]OrderItemView, 0, len(rows))
	for _, row := range rows {
		view := toItemView(row.Item)
		view.Order = toOrderSummaryView(row.Order)
		items = append(items, view)
	}

	return readOK(items)
}

// GetSellerOrders returns one page of the caller's items as seller. Requests past the
// last page are served the last page instead.
func (s *orderReadService) GetSellerOrders(ctx context.Context, q SellerOrdersQuery) (res ReadResult[SellerOrdersPage]) {
	const op = "getSellerOrders"
	params := sellerOrdersParams{Status: q.Status, Page: 1, PageSize: s.opts.DefaultPageSize}
	if q.Page != nil {
		params.Page = *q.Page
	}
	if q.PageSize != nil {
		params.PageSize = *q.PageSize
	}
	empty := SellerOrdersPage{Orders: []SellerOrderView{}, CurrentPage: 1, PageSize: s.opts.DefaultPageSize}
	defer recoverRead(s.logger, op, &res, empty)

	if err := s.validate.Struct(params); err != nil {
		switch firstInvalidField(err) {
		case "Status":
			return readFail(KindInvalidInput, msgInvalidFilter, empty)
		case "Page":
			return readFail(KindInvalidInput, msgInvalidPage, empty)
		case "PageSize":
			return readFail(KindInvalidInput, msgInvalidPageSize, empty)
		default:
			return readFail(KindInvalidInput, msgInvalidInput, empty)
		}
	}
	filter, _ := domain.ParseStatusFilter(params.Status)
	statuses := filter.Statuses()

	session, ok := s.gate.RequireAuth(ctx)
	if !ok {
		return readFail(KindNotAuthenticated, msgNotAuthenticated, empty)
	}

	total, err := s.repos.OrderItem.CountBySeller(ctx, session.UserID, statuses)
	if err != nil {
		s.logger.Error("Failed to count seller orders", zap.String("seller_id", session.UserID.String()), zap.Error(err))
		return readFail(KindUnexpected, msgLoadOrders, empty)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	currentPage := params.Page
	if currentPage > totalPages {
		currentPage = totalPages
	}
	if currentPage < 1 {
		currentPage = 1
	}

	page := SellerOrdersPage{
		Orders:      []SellerOrderView{},
		CurrentPage: currentPage,
		PageSize:    params.PageSize,
		TotalPages:  totalPages,
		TotalItems:  total,
	}
	if total == 0 {
		return readOK(page)
	}

	rows, err := s.repos.OrderItem.ListBySeller(ctx, repository.SellerItemQuery{
		SellerID: session.UserID,
		Statuses: statuses,
		Limit:    params.PageSize,
		Offset:   (currentPage - 1) * params.PageSize,
	})
	if err != nil {
		s.logger.Error("Failed to list seller orders", zap.String("seller_id", session.UserID.String()), zap.Error(err))
		return readFail(KindUnexpected, msgLoadOrders, empty)
	}

	buyers := s.loadBuyers(ctx, rows)
	for _, row := range rows {
		view := SellerOrderView{
			OrderItemView:   toItemView(row.Item),
			ShippingAddress: row.Order.ShippingAddress,
			Buyer:           BuyerView{ID: row.Order.UserID},
		}
		view.Order = toOrderSummaryView(row.Order)
		if profile, ok := buyers[row.Order.UserID]; ok {
			view.Buyer.FullName = profile.FullName
			view.Buyer.AvatarURL = profile.AvatarURL
		}
		if email := row.Order.ShippingAddress.Email; email != "" {
			view.Buyer.Email = &email
		}
		page.Orders = append(page.Orders, view)
	}

	return readOK(page)
}

// loadBuyers resolves the distinct buyer profiles of a page in one query. Profiles are
// display-only, so a failure leaves buyers with id and email alone.
func (s *orderReadService) loadBuyers(ctx context.Context, rows []*domain.OrderItemWithOrder) map[uuid.UUID]*domain.Profile {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.Order.UserID]; ok {
			continue
		}
		seen[row.Order.UserID] = struct{}{}
		ids = append(ids, row.Order.UserID)
	}

	out := make(map[uuid.UUID]*domain.Profile, len(ids))
	if len(ids) == 0 {
		return out
	}

	profiles, err := s.repos.Profile.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to load buyer profiles", zap.Int("count", len(ids)), zap.Error(err))
		return out
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out
}

// GetSellerOrderStats tallies the caller's items per status
func (s *orderReadService) GetSellerOrderStats(ctx context.Context) (res ReadResult[domain.SellerOrderStats]) {
	const op = "getSellerOrderStats"
	var zero domain.SellerOrderStats
	defer recoverRead(s.logger, op, &res, zero)

	session, ok := s.gate.RequireAuth(ctx)
	if !ok {
		return readFail(KindNotAuthenticated, msgNotAuthenticated, zero)
	}

	statuses, err := s.repos.OrderItem.ListStatusesBySeller(ctx, session.UserID)
	if err != nil {
		s.logger.Error("Failed to load seller stats", zap.String("seller_id", session.UserID.String()), zap.Error(err))
		return readFail(KindUnexpected, msgLoadStats, zero)
	}

	var stats domain.SellerOrderStats
	for _, status := range statuses {
		stats.Add(status)
	}

	return readOK(stats)
}

// GetOrderConversation finds the conversation the caller takes part in for an order.
// Most orders have none; that is reported as success with a nil id.
func (s *orderReadService) GetOrderConversation(ctx context.Context, rawOrderID string) (res ReadResult[OrderConversation]) {
	const op = "getOrderConversation"
	empty := OrderConversation{}
	defer recoverRead(s.logger, op, &res, empty)

	orderID, ok := s.parseOrderID(rawOrderID)
	if !ok {
		return readFail(KindInvalidInput, msgInvalidOrderID, empty)
	}

	session, ok := s.gate.RequireAuth(ctx)
	if !ok {
		return readFail(KindNotAuthenticated, msgNotAuthenticated, empty)
	}

	conv, err := s.repos.Conversation.FindByOrderParticipant(ctx, orderID, session.UserID)
	if errors.IsNotFound(err) {
		return readOK(empty)
	}
	if err != nil {
		s.logger.Error("Failed to get order conversation",
			zap.String("order_id", orderID.String()),
			zap.String("user_id", session.UserID.String()),
			zap.Error(err),
		)
		return readFail(KindUnexpected, msgLoadConversation, empty)
	}

	id := conv.ID
	return readOK(OrderConversation{ConversationID: &id})
}

// GetBuyerOrderDetails returns one of the caller's orders with its items. Orders that
// do not exist and orders owned by someone else are indistinguishable.
func (s *orderReadService) GetBuyerOrderDetails(ctx context.Context, rawOrderID string) (res ReadResult[*OrderDetails]) {
	const op = "getBuyerOrderDetails"
	defer recoverRead[*OrderDetails](s.logger, op, &res, nil)

	orderID, ok := s.parseOrderID(rawOrderID)
	if !ok {
		return readFail[*OrderDetails](KindInvalidInput, msgInvalidOrderID, nil)
	}

	session, ok := s.gate.RequireAuth(ctx)
	if !ok {
		return readFail[*OrderDetails](KindNotAuthenticated, msgNotAuthenticated, nil)
	}

	order, err := s.repos.Order.GetForBuyer(ctx, orderID, session.UserID)
	if errors.IsNotFound(err) {
		return readFail[*OrderDetails](KindNotFound, msgOrderNotFound, nil)
	}
	if err != nil {
		s.logger.Error("Failed to get order details",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return readFail[*OrderDetails](KindUnexpected, msgLoadOrders, nil)
	}

	return readOK(toOrderDetails(order))
}
