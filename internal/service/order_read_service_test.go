package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
)

func newReadService(store *memStore, user uuid.UUID) *orderReadService {
	return NewOrderReadService(store.repos(), stubGate{user: user}, zap.NewNop(), ReadOptions{})
}

func intPtr(v int) *int { return &v }

func TestGetBuyerOrdersNewestOrderFirst(t *testing.T) {
	store := newMemStore()
	buyer, seller := uuid.New(), uuid.New()
	older := store.addOrder(buyer, 48*time.Hour, "")
	newer := store.addOrder(buyer, time.Hour, "")
	store.addItem(older, seller, domain.OrderItemStatusDelivered)
	store.addItem(newer, seller, domain.OrderItemStatusPending)
	store.addItem(newer, uuid.New(), domain.OrderItemStatusShipped)
	store.addItem(store.addOrder(uuid.New(), 0, ""), seller, domain.OrderItemStatusPending)

	res := newReadService(store, buyer).GetBuyerOrders(context.Background())

	require.True(t, res.OK)
	require.Len(t, res.Data, 3)
	assert.Equal(t, newer.ID, res.Data[0].Order.ID)
	assert.Equal(t, newer.ID, res.Data[1].Order.ID)
	assert.Equal(t, older.ID, res.Data[2].Order.ID)
	require.NotNil(t, res.Data[0].Product)
	assert.Equal(t, "Ceramic mug", res.Data[0].Product.Title)
}

func TestGetBuyerOrdersWithoutOrders(t *testing.T) {
	res := newReadService(newMemStore(), uuid.New()).GetBuyerOrders(context.Background())

	require.True(t, res.OK)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestGetBuyerOrdersFailures(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		res := newReadService(newMemStore(), uuid.Nil).GetBuyerOrders(context.Background())
		assert.False(t, res.OK)
		assert.Equal(t, KindNotAuthenticated, res.Code)
		assert.NotNil(t, res.Data)
	})

	t.Run("store error", func(t *testing.T) {
		store := newMemStore()
		buyer := uuid.New()
		store.addItem(store.addOrder(buyer, 0, ""), uuid.New(), domain.OrderItemStatusPending)
		store.fail["OrderItem.ListByOrderIDs"] = errStore

		res := newReadService(store, buyer).GetBuyerOrders(context.Background())
		assert.False(t, res.OK)
		assert.Equal(t, KindUnexpected, res.Code)
		assert.Equal(t, msgLoadOrders, res.Error)
		assert.NotContains(t, res.Error, errStore.Error())
		assert.Empty(t, res.Data)
	})

	t.Run("panic is contained", func(t *testing.T) {
		store := newMemStore()
		store.panicOn = "Order.ListIDsByBuyer"

		res := newReadService(store, uuid.New()).GetBuyerOrders(context.Background())
		assert.False(t, res.OK)
		assert.Equal(t, KindUnexpected, res.Code)
		assert.Equal(t, msgUnexpected, res.Error)
		assert.NotNil(t, res.Data)
	})
}

func seedSellerItems(store *memStore, seller uuid.UUID, n int, status domain.OrderItemStatus) {
	for i := 0; i < n; i++ {
		o := store.addOrder(uuid.New(), time.Duration(i)*time.Minute, "buyer@example.com")
		store.addItem(o, seller, status)
	}
}

func TestGetSellerOrdersClampsPastLastPage(t *testing.T) {
	store := newMemStore()
	seller := uuid.New()
	seedSellerItems(store, seller, 25, domain.OrderItemStatusPending)

	res := newReadService(store, seller).GetSellerOrders(context.Background(), SellerOrdersQuery{
		Page:     intPtr(1000),
		PageSize: intPtr(10),
	})

	require.True(t, res.OK)
	assert.Equal(t, 3, res.Data.CurrentPage)
	assert.Equal(t, 3, res.Data.TotalPages)
	assert.Equal(t, 25, res.Data.TotalItems)
	assert.Len(t, res.Data.Orders, 5)
}

func TestGetSellerOrdersDefaults(t *testing.T) {
	store := newMemStore()
	seller := uuid.New()
	seedSellerItems(store, seller, 12, domain.OrderItemStatusShipped)

	res := newReadService(store, seller).GetSellerOrders(context.Background(), SellerOrdersQuery{})

	require.True(t, res.OK)
	assert.Equal(t, 1, res.Data.CurrentPage)
	assert.Equal(t, defaultSellerPageSize, res.Data.PageSize)
	assert.Len(t, res.Data.Orders, defaultSellerPageSize)
	assert.Equal(t, 2, res.Data.TotalPages)
}

func TestGetSellerOrdersStatusFilter(t *testing.T) {
	store := newMemStore()
	seller := uuid.New()
	seedSellerItems(store, seller, 2, domain.OrderItemStatusPending)
	seedSellerItems(store, seller, 3, domain.OrderItemStatusDelivered)
	seedSellerItems(store, seller, 1, domain.OrderItemStatusCancelled)
	svc := newReadService(store, seller)

	tests := []struct {
		status string
		want   int
	}{
		{"", 6},
		{"all", 6},
		{"active", 2},
		{"delivered", 3},
		{"cancelled", 1},
		{"shipped", 0},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			res := svc.GetSellerOrders(context.Background(), SellerOrdersQuery{Status: tt.status})
			require.True(t, res.OK)
			assert.Equal(t, tt.want, res.Data.TotalItems)
			assert.Len(t, res.Data.Orders, tt.want)
		})
	}
}

func TestGetSellerOrdersEmpty(t *testing.T) {
	res := newReadService(newMemStore(), uuid.New()).GetSellerOrders(context.Background(), SellerOrdersQuery{})

	require.True(t, res.OK)
	assert.Equal(t, 0, res.Data.TotalPages)
	assert.Equal(t, 1, res.Data.CurrentPage)
	assert.NotNil(t, res.Data.Orders)
	assert.Empty(t, res.Data.Orders)
}

func TestGetSellerOrdersBuyerProjection(t *testing.T) {
	store := newMemStore()
	seller, buyer := uuid.New(), uuid.New()
	name := "Lina Haddad"
	store.profiles[buyer] = &domain.Profile{ID: buyer, FullName: &name}
	store.addItem(store.addOrder(buyer, 0, "lina@example.com"), seller, domain.OrderItemStatusPending)

	res := newReadService(store, seller).GetSellerOrders(context.Background(), SellerOrdersQuery{})

	require.True(t, res.OK)
	require.Len(t, res.Data.Orders, 1)
	got := res.Data.Orders[0].Buyer
	assert.Equal(t, buyer, got.ID)
	require.NotNil(t, got.FullName)
	assert.Equal(t, name, *got.FullName)
	require.NotNil(t, got.Email)
	assert.Equal(t, "lina@example.com", *got.Email)
	assert.Equal(t, "Amman", res.Data.Orders[0].ShippingAddress.City)
}

func TestGetSellerOrdersProfileFailureDegrades(t *testing.T) {
	store := newMemStore()
	seller, buyer := uuid.New(), uuid.New()
	store.addItem(store.addOrder(buyer, 0, ""), seller, domain.OrderItemStatusPending)
	store.fail["Profile.ListByIDs"] = errStore

	res := newReadService(store, seller).GetSellerOrders(context.Background(), SellerOrdersQuery{})

	require.True(t, res.OK)
	require.Len(t, res.Data.Orders, 1)
	assert.Equal(t, buyer, res.Data.Orders[0].Buyer.ID)
	assert.Nil(t, res.Data.Orders[0].Buyer.FullName)
	assert.Nil(t, res.Data.Orders[0].Buyer.Email)
}

func TestGetSellerOrdersRejectsBadQuery(t *testing.T) {
	svc := newReadService(newMemStore(), uuid.New())

	tests := []struct {
		name  string
		query SellerOrdersQuery
		msg   string
	}{
		{"unknown status", SellerOrdersQuery{Status: "lost"}, msgInvalidFilter},
		{"zero page", SellerOrdersQuery{Page: intPtr(0)}, msgInvalidPage},
		{"negative page size", SellerOrdersQuery{PageSize: intPtr(-5)}, msgInvalidPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.GetSellerOrders(context.Background(), tt.query)
			assert.False(t, res.OK)
			assert.Equal(t, KindInvalidInput, res.Code)
			assert.Equal(t, tt.msg, res.Error)
			assert.NotNil(t, res.Data.Orders)
		})
	}
}

func TestGetSellerOrdersUnauthenticated(t *testing.T) {
	res := newReadService(newMemStore(), uuid.Nil).GetSellerOrders(context.Background(), SellerOrdersQuery{})

	assert.False(t, res.OK)
	assert.Equal(t, KindNotAuthenticated, res.Code)
	assert.Equal(t, 1, res.Data.CurrentPage)
}

func TestGetSellerOrderStatsTotals(t *testing.T) {
	store := newMemStore()
	seller := uuid.New()
	for i, status := range domain.OrderItemStatuses {
		seedSellerItems(store, seller, i+1, status)
	}
	seedSellerItems(store, uuid.New(), 4, domain.OrderItemStatusPending)

	res := newReadService(store, seller).GetSellerOrderStats(context.Background())

	require.True(t, res.OK)
	s := res.Data
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 6, s.Cancelled)
	assert.Equal(t, 21, s.Total)
	assert.Equal(t, s.Total, s.Pending+s.Received+s.Processing+s.Shipped+s.Delivered+s.Cancelled)
}

func TestGetSellerOrderStatsFailuresReturnZero(t *testing.T) {
	store := newMemStore()
	seller := uuid.New()
	seedSellerItems(store, seller, 3, domain.OrderItemStatusPending)
	store.fail["OrderItem.ListStatusesBySeller"] = errStore

	res := newReadService(store, seller).GetSellerOrderStats(context.Background())
	assert.False(t, res.OK)
	assert.Equal(t, KindUnexpected, res.Code)
	assert.Equal(t, domain.SellerOrderStats{}, res.Data)

	res = newReadService(store, uuid.Nil).GetSellerOrderStats(context.Background())
	assert.Equal(t, KindNotAuthenticated, res.Code)
	assert.Equal(t, msgNotAuthenticated, res.Error)
	assert.Equal(t, domain.SellerOrderStats{}, res.Data)
}

func TestGetOrderConversation(t *testing.T) {
	store := newMemStore()
	buyer, seller := uuid.New(), uuid.New()
	order := store.addOrder(buyer, 0, "")
	orderID := order.ID
	conv := &domain.Conversation{ID: uuid.New(), BuyerID: buyer, SellerID: seller, OrderID: &orderID}
	store.conversations = append(store.conversations, conv)

	t.Run("buyer sees thread", func(t *testing.T) {
		res := newReadService(store, buyer).GetOrderConversation(context.Background(), orderID.String())
		require.True(t, res.OK)
		require.NotNil(t, res.Data.ConversationID)
		assert.Equal(t, conv.ID, *res.Data.ConversationID)
	})

	t.Run("seller sees thread", func(t *testing.T) {
		res := newReadService(store, seller).GetOrderConversation(context.Background(), orderID.String())
		require.True(t, res.OK)
		require.NotNil(t, res.Data.ConversationID)
	})

	t.Run("outsider gets null", func(t *testing.T) {
		res := newReadService(store, uuid.New()).GetOrderConversation(context.Background(), orderID.String())
		require.True(t, res.OK)
		assert.Nil(t, res.Data.ConversationID)
	})

	t.Run("order without thread", func(t *testing.T) {
		res := newReadService(store, buyer).GetOrderConversation(context.Background(), uuid.NewString())
		require.True(t, res.OK)
		assert.Nil(t, res.Data.ConversationID)
	})

	t.Run("uppercase id", func(t *testing.T) {
		res := newReadService(store, buyer).GetOrderConversation(context.Background(), strings.ToUpper(orderID.String()))
		require.True(t, res.OK)
		require.NotNil(t, res.Data.ConversationID)
		assert.Equal(t, conv.ID, *res.Data.ConversationID)
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, raw := range []string{"not-a-uuid", "urn:uuid:" + orderID.String(), strings.ReplaceAll(orderID.String(), "-", "")} {
			res := newReadService(store, buyer).GetOrderConversation(context.Background(), raw)
			assert.False(t, res.OK, raw)
			assert.Equal(t, KindInvalidInput, res.Code, raw)
			assert.Equal(t, msgInvalidOrderID, res.Error, raw)
		}
	})

	t.Run("store error", func(t *testing.T) {
		failing := newMemStore()
		failing.fail["Conversation.FindByOrderParticipant"] = errStore
		res := newReadService(failing, buyer).GetOrderConversation(context.Background(), orderID.String())
		assert.False(t, res.OK)
		assert.Equal(t, KindUnexpected, res.Code)
	})
}

func TestGetBuyerOrderDetails(t *testing.T) {
	store := newMemStore()
	buyer := uuid.New()
	order := store.addOrder(buyer, 0, "")
	store.addItem(order, uuid.New(), domain.OrderItemStatusPending)
	store.addItem(order, uuid.New(), domain.OrderItemStatusShipped)

	t.Run("owner", func(t *testing.T) {
		res := newReadService(store, buyer).GetBuyerOrderDetails(context.Background(), order.ID.String())
		require.True(t, res.OK)
		require.NotNil(t, res.Data)
		assert.Equal(t, order.ID, res.Data.ID)
		assert.Len(t, res.Data.Items, 2)
	})

	t.Run("other buyer looks like missing", func(t *testing.T) {
		res := newReadService(store, uuid.New()).GetBuyerOrderDetails(context.Background(), order.ID.String())
		assert.False(t, res.OK)
		assert.Equal(t, KindNotFound, res.Code)
		assert.Equal(t, msgOrderNotFound, res.Error)
		assert.Nil(t, res.Data)
	})

	t.Run("invalid id checked before auth", func(t *testing.T) {
		res := newReadService(store, uuid.Nil).GetBuyerOrderDetails(context.Background(), "123")
		assert.Equal(t, KindInvalidInput, res.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		res := newReadService(store, uuid.Nil).GetBuyerOrderDetails(context.Background(), order.ID.String())
		assert.Equal(t, KindNotAuthenticated, res.Code)
	})
}
