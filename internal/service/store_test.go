package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jafarshop/marketorders/internal/auth"
	"github.com/jafarshop/marketorders/internal/cache"
	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/internal/repository"
	pkgerrors "github.com/jafarshop/marketorders/pkg/errors"
)

var errStore = errors.New("store unavailable")

// memStore is an in-memory stand-in for the Postgres repositories. Failures can be
// injected per method name through fail.
type memStore struct {
	mu            sync.Mutex
	orders        map[uuid.UUID]*domain.Order
	returns       []*domain.ReturnRequest
	conversations []*domain.Conversation
	messages      []*domain.Message
	notifications []*domain.Notification
	profiles      map[uuid.UUID]*domain.Profile
	fail          map[string]error
	panicOn       string
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[uuid.UUID]*domain.Order),
		profiles: make(map[uuid.UUID]*domain.Profile),
		fail:     make(map[string]error),
	}
}

func (m *memStore) repos() *repository.Repositories {
	return &repository.Repositories{
		Order:         memOrders{m},
		OrderItem:     memItems{m},
		ReturnRequest: memReturns{m},
		Conversation:  memConversations{m},
		Notification:  memNotifications{m},
		Profile:       memProfiles{m},
	}
}

func (m *memStore) check(method string) error {
	if m.panicOn == method {
		panic("boom in " + method)
	}
	return m.fail[method]
}

// addOrder stores an order for buyer created at the given offset from a fixed epoch.
func (m *memStore) addOrder(buyer uuid.UUID, age time.Duration, email string) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := &domain.Order{
		ID:              uuid.New(),
		UserID:          buyer,
		TotalAmount:     decimal.NewFromInt(100),
		Status:          "paid",
		ShippingAddress: domain.ShippingAddress{Name: "Buyer", Email: email, City: "Amman"},
		CreatedAt:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Add(-age),
	}
	m.orders[o.ID] = o
	return o
}

func (m *memStore) addItem(o *domain.Order, seller uuid.UUID, status domain.OrderItemStatus) *domain.OrderItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	productID := uuid.New()
	item := &domain.OrderItem{
		ID:              uuid.New(),
		OrderID:         o.ID,
		ProductID:       productID,
		SellerID:        seller,
		Quantity:        1,
		PriceAtPurchase: decimal.NewFromInt(50),
		Status:          status,
		CreatedAt:       o.CreatedAt.Add(time.Duration(len(o.Items)) * time.Second),
		Product:         &domain.ProductSummary{ID: productID, Title: "Ceramic mug"},
	}
	o.Items = append(o.Items, item)
	return item
}

func (m *memStore) item(id uuid.UUID) (*domain.OrderItem, *domain.Order) {
	for _, o := range m.orders {
		for _, it := range o.Items {
			if it.ID == id {
				return it, o
			}
		}
	}
	return nil, nil
}

func (m *memStore) status(id uuid.UUID) domain.OrderItemStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, _ := m.item(id)
	return it.Status
}

func summary(o *domain.Order) domain.OrderSummary {
	return domain.OrderSummary{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
	}
}

func withOrder(it *domain.OrderItem, o *domain.Order) *domain.OrderItemWithOrder {
	return &domain.OrderItemWithOrder{Item: *it, Order: summary(o)}
}

func statusIn(s domain.OrderItemStatus, set []domain.OrderItemStatus) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

type memOrders struct{ *memStore }

func (r memOrders) ListIDsByBuyer(_ context.Context, buyerID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("Order.ListIDsByBuyer"); err != nil {
		return nil, err
	}
	var owned []*domain.Order
	for _, o := range r.orders {
		if o.UserID == buyerID {
			owned = append(owned, o)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	ids := make([]uuid.UUID, 0, len(owned))
	for _, o := range owned {
		ids = append(ids, o.ID)
	}
	return ids, nil
}

func (r memOrders) GetForBuyer(_ context.Context, orderID, buyerID uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("Order.GetForBuyer"); err != nil {
		return nil, err
	}
	o, ok := r.orders[orderID]
	if !ok || o.UserID != buyerID {
		return nil, &pkgerrors.ErrNotFound{Resource: "order", ID: orderID.String()}
	}
	clone := *o
	return &clone, nil
}

type memItems struct{ *memStore }

func (r memItems) ListByOrderIDs(_ context.Context, orderIDs []uuid.UUID, limit int) ([]*domain.OrderItemWithOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("OrderItem.ListByOrderIDs"); err != nil {
		return nil, err
	}
	var out []*domain.OrderItemWithOrder
	for _, id := range orderIDs {
		o, ok := r.orders[id]
		if !ok {
			continue
		}
		for _, it := range o.Items {
			out = append(out, withOrder(it, o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order.CreatedAt.After(out[j].Order.CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memItems) GetWithOrder(_ context.Context, itemID uuid.UUID) (*domain.OrderItemWithOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("OrderItem.GetWithOrder"); err != nil {
		return nil, err
	}
	it, o := r.item(itemID)
	if it == nil {
		return nil, &pkgerrors.ErrNotFound{Resource: "order item", ID: itemID.String()}
	}
	return withOrder(it, o), nil
}

func (r memItems) sellerRows(sellerID uuid.UUID, statuses []domain.OrderItemStatus) []*domain.OrderItemWithOrder {
	var out []*domain.OrderItemWithOrder
	for _, o := range r.orders {
		for _, it := range o.Items {
			if it.SellerID == sellerID && statusIn(it.Status, statuses) {
				out = append(out, withOrder(it, o))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.CreatedAt.After(out[j].Item.CreatedAt) })
	return out
}

func (r memItems) CountBySeller(_ context.Context, sellerID uuid.UUID, statuses []domain.OrderItemStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("OrderItem.CountBySeller"); err != nil {
		return 0, err
	}
	return len(r.sellerRows(sellerID, statuses)), nil
}

func (r memItems) ListBySeller(_ context.Context, q repository.SellerItemQuery) ([]*domain.OrderItemWithOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("OrderItem.ListBySeller"); err != nil {
		return nil, err
	}
	rows := r.sellerRows(q.SellerID, q.Statuses)
	if q.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[q.Offset:]
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (r memItems) ListStatusesBySeller(_ context.Context, sellerID uuid.UUID) ([]domain.OrderItemStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("OrderItem.ListStatusesBySeller"); err != nil {
		return nil, err
	}
	var out []domain.OrderItemStatus
	for _, row := range r.sellerRows(sellerID, nil) {
		out = append(out, row.Item.Status)
	}
	return out, nil
}

func (r memItems) UpdateStatusFrom(_ context.Context, itemID uuid.UUID, from []domain.OrderItemStatus, status domain.OrderItemStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("OrderItem.UpdateStatusFrom"); err != nil {
		return false, err
	}
	it, _ := r.item(itemID)
	if it == nil || !statusIn(it.Status, from) {
		return false, nil
	}
	it.Status = status
	return true, nil
}

type memReturns struct{ *memStore }

func (r memReturns) ExistsActive(_ context.Context, orderItemID, buyerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("ReturnRequest.ExistsActive"); err != nil {
		return false, err
	}
	for _, rr := range r.returns {
		if rr.OrderItemID == orderItemID && rr.BuyerID == buyerID && rr.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r memReturns) Create(_ context.Context, rr *domain.ReturnRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("ReturnRequest.Create"); err != nil {
		return err
	}
	for _, existing := range r.returns {
		if existing.OrderItemID == rr.OrderItemID && existing.BuyerID == rr.BuyerID && existing.Status.IsActive() {
			return &pkgerrors.ErrConflict{Resource: "return request", Key: rr.OrderItemID.String()}
		}
	}
	stored := *rr
	stored.ID = uuid.New()
	r.returns = append(r.returns, &stored)
	return nil
}

type memConversations struct{ *memStore }

func (r memConversations) FindByOrderParticipant(_ context.Context, orderID, userID uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("Conversation.FindByOrderParticipant"); err != nil {
		return nil, err
	}
	for _, c := range r.conversations {
		if c.OrderID != nil && *c.OrderID == orderID && (c.BuyerID == userID || c.SellerID == userID) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, &pkgerrors.ErrNotFound{Resource: "conversation", ID: orderID.String()}
}

func (r memConversations) EnsureThread(_ context.Context, conv *domain.Conversation) (uuid.UUID, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("Conversation.EnsureThread"); err != nil {
		return uuid.Nil, false, err
	}
	for _, c := range r.conversations {
		if c.BuyerID == conv.BuyerID && c.SellerID == conv.SellerID &&
			c.OrderID != nil && conv.OrderID != nil && *c.OrderID == *conv.OrderID {
			return c.ID, false, nil
		}
	}
	stored := *conv
	stored.ID = uuid.New()
	r.conversations = append(r.conversations, &stored)
	return stored.ID, true, nil
}

func (r memConversations) AppendMessage(_ context.Context, msg *domain.Message, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("Conversation.AppendMessage"); err != nil {
		return err
	}
	for _, c := range r.conversations {
		if c.ID == msg.ConversationID {
			stored := *msg
			stored.ID = uuid.New()
			stored.CreatedAt = at
			r.messages = append(r.messages, &stored)
			c.LastMessageAt = at
			c.SellerUnreadCount = 1
			c.Status = domain.ConversationStatusOpen
			return nil
		}
	}
	return &pkgerrors.ErrNotFound{Resource: "conversation", ID: msg.ConversationID.String()}
}

type memNotifications struct{ *memStore }

func (r memNotifications) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("Notification.Create"); err != nil {
		return err
	}
	stored := *n
	r.notifications = append(r.notifications, &stored)
	return nil
}

type memProfiles struct{ *memStore }

func (r memProfiles) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check("Profile.ListByIDs"); err != nil {
		return nil, err
	}
	var out []*domain.Profile
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// stubGate authenticates as user unless it is uuid.Nil.
type stubGate struct {
	user uuid.UUID
}

func (g stubGate) RequireAuth(context.Context) (auth.Session, bool) {
	if g.user == uuid.Nil {
		return auth.Session{}, false
	}
	return auth.Session{UserID: g.user}, true
}

type recordingInvalidator struct {
	mu   sync.Mutex
	tags [][]cache.Tag
	err  error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, tags ...cache.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tags)
	return r.err
}
