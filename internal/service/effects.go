package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/cache"
	"github.com/jafarshop/marketorders/internal/domain"
	"github.com/jafarshop/marketorders/internal/metrics"
	"github.com/jafarshop/marketorders/internal/repository"
)

// sideEffects runs the fire-and-forget work that follows a successful write.
// Nothing here can fail or mask the primary action: errors and panics are logged and dropped.
type sideEffects struct {
	notifications repository.NotificationRepository
	cache         cache.Invalidator
	logger        *zap.Logger
}

func (e sideEffects) notify(ctx context.Context, op string, n *domain.Notification) {
	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(string(n.Type)).Inc()
			e.logger.Error("Notification write panicked",
				zap.String("operation", op),
				zap.Any("panic", r),
			)
		}
	}()

	if e.notifications == nil {
		return
	}
	if err := e.notifications.Create(ctx, n); err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(string(n.Type)).Inc()
		e.logger.Warn("Failed to create seller notification",
			zap.String("operation", op),
			zap.String("user_id", n.UserID.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
	}
}

func (e sideEffects) invalidate(ctx context.Context, op string, tags ...cache.Tag) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Cache invalidation panicked", zap.String("operation", op), zap.Any("panic", r))
		}
	}()

	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, tags...); err != nil {
		e.logger.Warn("Failed to invalidate cache tags",
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}
