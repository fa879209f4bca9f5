package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/pkg/errors"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

type returnRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReturnRequestRepository creates a new return request repository
func NewReturnRequestRepository(db *sql.DB, logger *zap.Logger) *returnRequestRepository {
	return &returnRequestRepository{
		db:     db,
		logger: logger,
	}
}

func (r *returnRequestRepository) ExistsActive(ctx context.Context, orderItemID, buyerID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM return_requests
			WHERE order_item_id = $1 AND buyer_id = $2 AND status <> $3
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, orderItemID, buyerID, string(domain.ReturnRequestStatusCancelled)).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check existing return request", zap.Error(err))
		return false, err
	}

	return exists, nil
}

func (r *returnRequestRepository) Create(ctx context.Context, rr *domain.ReturnRequest) error {
	// The partial unique index only covers non-cancelled rows, so a cancelled request
	// never blocks a new one.
	query := `
		INSERT INTO return_requests (id, order_item_id, order_id, buyer_id, seller_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_item_id, buyer_id) WHERE status <> 'cancelled' DO NOTHING
	`

	if rr.ID == uuid.Nil {
		rr.ID = uuid.New()
	}
	if rr.CreatedAt.IsZero() {
		rr.CreatedAt = time.Now()
	}
	if rr.Status == "" {
		rr.Status = domain.ReturnRequestStatusRequested
	}

	res, err := r.db.ExecContext(ctx, query,
		rr.ID,
		rr.OrderItemID,
		rr.OrderID,
		rr.BuyerID,
		rr.SellerID,
		rr.Reason,
		string(rr.Status),
		rr.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &errors.ErrConflict{Resource: "return request", Key: rr.OrderItemID.String()}
		}
		r.logger.Error("Failed to create return request", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &errors.ErrConflict{Resource: "return request", Key: rr.OrderItemID.String()}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
