package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) ListIDsByBuyer(ctx context.Context, buyerID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		r.logger.Error("Failed to query buyer order ids", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *orderRepository) GetForBuyer(ctx context.Context, orderID, buyerID uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, shipping_address, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`

	var order domain.Order
	var address []byte

	err := r.db.QueryRowContext(ctx, query, orderID, buyerID).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.Status,
		&address,
		&order.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: orderID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order for buyer", zap.Error(err))
		return nil, err
	}

	order.ShippingAddress = decodeAddress(address, r.logger)

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *orderRepository) listItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT ` + orderItemColumns + `, p.id, p.title, p.image_url
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to query order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []*domain.OrderItem{}
	for rows.Next() {
		var row orderItemRow
		var product productRow

		if err := rows.Scan(append(row.targets(), product.targets()...)...); err != nil {
			return nil, err
		}
		item := row.build()
		item.Product = product.summary()
		items = append(items, &item)
	}

	return items, rows.Err()
}

// decodeAddress tolerates malformed JSONB so one bad row cannot hide an order.
func decodeAddress(raw []byte, logger *zap.Logger) domain.ShippingAddress {
	var addr domain.ShippingAddress
	if len(raw) == 0 {
		return addr
	}
	if err := json.Unmarshal(raw, &addr); err != nil {
		logger.Warn("Failed to decode shipping address", zap.Error(err))
	}
	return addr
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
