package postgres

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/pkg/errors"
)

// openTestDB connects to TEST_DATABASE_URL and applies the migrations.
// Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err = Migrate(ctx, db, zap.NewNop())
	require.NoError(t, err)

	applied, err := Migrate(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, applied)

	return db
}

type seededItem struct {
	itemID, orderID, buyerID, sellerID uuid.UUID
}

func seedItem(t *testing.T, db *sql.DB, status domain.OrderItemStatus) seededItem {
	t.Helper()
	s := seededItem{itemID: uuid.New(), orderID: uuid.New(), buyerID: uuid.New(), sellerID: uuid.New()}
	productID := uuid.New()
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO products (id, seller_id, title) VALUES ($1, $2, 'Ceramic mug')`, productID, s.sellerID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO orders (id, user_id, total_amount, status) VALUES ($1, $2, 12.50, 'paid')`, s.orderID, s.buyerID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, seller_id, quantity, price_at_purchase, status)
		VALUES ($1, $2, $3, $4, 1, 12.50, $5)
	`, s.itemID, s.orderID, productID, s.sellerID, string(status))
	require.NoError(t, err)
	return s
}

func TestReturnRequestCreateRaceAgainstPostgres(t *testing.T) {
	db := openTestDB(t)
	s := seedItem(t, db, domain.OrderItemStatusDelivered)
	repo := NewReturnRequestRepository(db, zap.NewNop())

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(context.Background(), &domain.ReturnRequest{
				OrderItemID: s.itemID,
				OrderID:     s.orderID,
				BuyerID:     s.buyerID,
				SellerID:    s.sellerID,
				Reason:      "Too small",
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errors.IsConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)

	_, err := db.Exec(`UPDATE return_requests SET status = 'cancelled' WHERE order_item_id = $1`, s.itemID)
	require.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), &domain.ReturnRequest{
		OrderItemID: s.itemID,
		OrderID:     s.orderID,
		BuyerID:     s.buyerID,
		SellerID:    s.sellerID,
		Reason:      "Second attempt",
	}))
}

func TestConversationThreadAgainstPostgres(t *testing.T) {
	db := openTestDB(t)
	s := seedItem(t, db, domain.OrderItemStatusShipped)
	repo := NewConversationRepository(db, zap.NewNop())
	ctx := context.Background()

	const callers = 6
	ids := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orderID := s.orderID
			id, _, err := repo.EnsureThread(ctx, &domain.Conversation{
				BuyerID:  s.buyerID,
				SellerID: s.sellerID,
				OrderID:  &orderID,
				Subject:  "Item arrived damaged",
			})
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()
	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}

	_, err := db.Exec(`UPDATE conversations SET status = 'closed', seller_unread_count = 0 WHERE id = $1`, ids[0])
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.AppendMessage(ctx, &domain.Message{
		ConversationID: ids[0],
		SenderID:       s.buyerID,
		Content:        "Cracked on arrival",
		MessageType:    domain.MessageTypeIssueReport,
	}, at))

	conv, err := repo.FindByOrderParticipant(ctx, s.orderID, s.sellerID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConversationStatusOpen, conv.Status)
	assert.Equal(t, 1, conv.SellerUnreadCount)
	assert.True(t, at.Equal(conv.LastMessageAt))

	err = repo.AppendMessage(ctx, &domain.Message{ConversationID: uuid.New(), SenderID: s.buyerID, Content: "x"}, at)
	assert.Error(t, err)
}

func TestUpdateStatusFromAgainstPostgres(t *testing.T) {
	db := openTestDB(t)
	repo := NewOrderItemRepository(db, zap.NewNop())
	ctx := context.Background()

	pending := seedItem(t, db, domain.OrderItemStatusPending)
	ok, err := repo.UpdateStatusFrom(ctx, pending.itemID, domain.CancellableStatuses(), domain.OrderItemStatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	shipped := seedItem(t, db, domain.OrderItemStatusShipped)
	ok, err = repo.UpdateStatusFrom(ctx, shipped.itemID, domain.CancellableStatuses(), domain.OrderItemStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := repo.CountBySeller(ctx, pending.sellerID, []domain.OrderItemStatus{domain.OrderItemStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = repo.CountBySeller(ctx, pending.sellerID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
