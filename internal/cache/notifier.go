package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/metrics"
)

// execer is the slice of *sql.DB the notifier needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PGNotifier publishes tag invalidations on a Postgres NOTIFY channel so every
// web tier listening on it can drop its cached reads.
type PGNotifier struct {
	db      execer
	channel string
	logger  *zap.Logger
}

// NewPGNotifier creates a notifier publishing on channel.
func NewPGNotifier(db execer, channel string, logger *zap.Logger) (*PGNotifier, error) {
	if db == nil {
		return nil, errors.New("cache notifier: db is required")
	}
	if channel == "" {
		return nil, errors.New("cache notifier: channel is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PGNotifier{db: db, channel: channel, logger: logger}, nil
}

// Invalidate sends one notification per tag. Every tag is attempted even if an earlier one fails.
func (n *PGNotifier) Invalidate(ctx context.Context, tags ...Tag) error {
	var errs []error
	for _, tag := range tags {
		if _, err := n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, n.channel, string(tag)); err != nil {
			metrics.CacheInvalidationsTotal.WithLabelValues(string(tag), "error").Inc()
			n.logger.Warn("Failed to publish cache invalidation",
				zap.String("tag", string(tag)),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("invalidate %s: %w", tag, err))
			continue
		}
		metrics.CacheInvalidationsTotal.WithLabelValues(string(tag), "ok").Inc()
	}
	return errors.Join(errs...)
}
