package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/internal/repository"
	"github.com/jafarshop/marketorders/pkg/errors"
)

const orderItemColumns = `oi.id, oi.order_id, oi.product_id, oi.seller_id, oi.quantity, oi.price_at_purchase,
	oi.status, oi.seller_received_at, oi.shipped_at, oi.delivered_at, oi.tracking_number,
	oi.shipping_carrier, oi.created_at`

const orderSummaryColumns = `o.id, o.user_id, o.total_amount, o.status, o.shipping_address, o.created_at`

// itemWithOrderSelect is shared by every query returning domain.OrderItemWithOrder.
const itemWithOrderSelect = `
		SELECT ` + orderItemColumns + `, p.id, p.title, p.image_url, ` + orderSummaryColumns + `
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
`

type orderItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderItemRepository creates a new order item repository
func NewOrderItemRepository(db *sql.DB, logger *zap.Logger) *orderItemRepository {
	return &orderItemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID, limit int) ([]*domain.OrderItemWithOrder, error) {
	if len(orderIDs) == 0 {
		return []*domain.OrderItemWithOrder{}, nil
	}

	query := itemWithOrderSelect + `
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY o.created_at DESC, oi.created_at ASC
		LIMIT $2
	`

	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids), limit)
	if err != nil {
		r.logger.Error("Failed to query order items by order ids", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.scanItemsWithOrder(rows)
}

func (r *orderItemRepository) GetWithOrder(ctx context.Context, itemID uuid.UUID) (*domain.OrderItemWithOrder, error) {
	query := itemWithOrderSelect + `
		WHERE oi.id = $1
	`

	var itemRow orderItemRow
	var product productRow
	var order orderSummaryRow

	dest := append(itemRow.targets(), product.targets()...)
	dest = append(dest, order.targets()...)

	err := r.db.QueryRowContext(ctx, query, itemID).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order item", ID: itemID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order item", zap.Error(err))
		return nil, err
	}

	item := itemRow.build()
	item.Product = product.summary()

	return &domain.OrderItemWithOrder{
		Item:  item,
		Order: order.build(r.logger),
	}, nil
}

func (r *orderItemRepository) CountBySeller(ctx context.Context, sellerID uuid.UUID, statuses []domain.OrderItemStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM order_items
		WHERE seller_id = $1
		  AND ($2::text[] IS NULL OR status = ANY($2))
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, sellerID, statusArray(statuses)).Scan(&count); err != nil {
		r.logger.Error("Failed to count seller order items", zap.Error(err))
		return 0, err
	}

	return count, nil
}

func (r *orderItemRepository) ListBySeller(ctx context.Context, q repository.SellerItemQuery) ([]*domain.OrderItemWithOrder, error) {
	query := itemWithOrderSelect + `
		WHERE oi.seller_id = $1
		  AND ($2::text[] IS NULL OR oi.status = ANY($2))
		ORDER BY oi.created_at DESC, oi.id
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, q.SellerID, statusArray(q.Statuses), q.Limit, q.Offset)
	if err != nil {
		r.logger.Error("Failed to list seller order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.scanItemsWithOrder(rows)
}

func (r *orderItemRepository) ListStatusesBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.OrderItemStatus, error) {
	query := `
		SELECT status
		FROM order_items
		WHERE seller_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		r.logger.Error("Failed to query seller item statuses", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var statuses []domain.OrderItemStatus
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		statuses = append(statuses, domain.OrderItemStatus(status))
	}

	return statuses, rows.Err()
}

func (r *orderItemRepository) UpdateStatusFrom(
	ctx context.Context,
	itemID uuid.UUID,
	from []domain.OrderItemStatus,
	status domain.OrderItemStatus,
) (bool, error) {
	query := `
		UPDATE order_items
		SET status = $2
		WHERE id = $1 AND status = ANY($3)
	`

	res, err := r.db.ExecContext(ctx, query, itemID, string(status), statusArray(from))
	if err != nil {
		r.logger.Error("Failed to update order item status", zap.Error(err))
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *orderItemRepository) scanItemsWithOrder(rows *sql.Rows) ([]*domain.OrderItemWithOrder, error) {
	out := []*domain.OrderItemWithOrder{}
	for rows.Next() {
		var itemRow orderItemRow
		var product productRow
		var order orderSummaryRow

		dest := append(itemRow.targets(), product.targets()...)
		dest = append(dest, order.targets()...)
		if err := rows.Scan(dest...); err != nil {
			r.logger.Error("Failed to scan order item row", zap.Error(err))
			return nil, err
		}

		item := itemRow.build()
		item.Product = product.summary()
		out = append(out, &domain.OrderItemWithOrder{
			Item:  item,
			Order: order.build(r.logger),
		})
	}

	return out, rows.Err()
}

// statusArray returns NULL for an empty set so "no restriction" can be expressed in SQL.
func statusArray(statuses []domain.OrderItemStatus) interface{} {
	if len(statuses) == 0 {
		return pq.StringArray(nil)
	}
	out := make(pq.StringArray, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

type orderItemRow struct {
	item        domain.OrderItem
	status      string
	receivedAt  sql.NullTime
	shippedAt   sql.NullTime
	deliveredAt sql.NullTime
	tracking    sql.NullString
	carrier     sql.NullString
}

func (r *orderItemRow) targets() []interface{} {
	return []interface{}{
		&r.item.ID,
		&r.item.OrderID,
		&r.item.ProductID,
		&r.item.SellerID,
		&r.item.Quantity,
		&r.item.PriceAtPurchase,
		&r.status,
		&r.receivedAt,
		&r.shippedAt,
		&r.deliveredAt,
		&r.tracking,
		&r.carrier,
		&r.item.CreatedAt,
	}
}

func (r *orderItemRow) build() domain.OrderItem {
	item := r.item
	item.Status = domain.OrderItemStatus(r.status)
	item.SellerReceivedAt = nullTime(r.receivedAt)
	item.ShippedAt = nullTime(r.shippedAt)
	item.DeliveredAt = nullTime(r.deliveredAt)
	item.TrackingNumber = nullString(r.tracking)
	item.ShippingCarrier = nullString(r.carrier)
	return item
}

type productRow struct {
	id       uuid.NullUUID
	title    sql.NullString
	imageURL sql.NullString
}

func (r *productRow) targets() []interface{} {
	return []interface{}{&r.id, &r.title, &r.imageURL}
}

func (r *productRow) summary() *domain.ProductSummary {
	if !r.id.Valid {
		return nil
	}
	return &domain.ProductSummary{
		ID:       r.id.UUID,
		Title:    r.title.String,
		ImageURL: nullString(r.imageURL),
	}
}

type orderSummaryRow struct {
	order   domain.OrderSummary
	address []byte
}

func (r *orderSummaryRow) targets() []interface{} {
	return []interface{}{
		&r.order.ID,
		&r.order.UserID,
		&r.order.TotalAmount,
		&r.order.Status,
		&r.address,
		&r.order.CreatedAt,
	}
}

func (r *orderSummaryRow) build(logger *zap.Logger) domain.OrderSummary {
	order := r.order
	order.ShippingAddress = decodeAddress(r.address, logger)
	return order
}
