package cache

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Subscriber listens on the invalidation channel and hands every tag to a callback.
type Subscriber struct {
	dsn     string
	channel string
	logger  *zap.Logger
}

// NewSubscriber creates a subscriber for channel using a dedicated connection to dsn.
func NewSubscriber(dsn, channel string, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{dsn: dsn, channel: channel, logger: logger}
}

// Run blocks until ctx is done, calling handle for every received tag.
func (s *Subscriber) Run(ctx context.Context, handle func(Tag)) error {
	listener := pq.NewListener(s.dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.logger.Warn("Cache listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(s.channel); err != nil {
		return err
	}
	s.logger.Info("Listening for cache invalidations", zap.String("channel", s.channel))

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; anything may have been missed
			if n == nil {
				s.logger.Warn("Cache listener reconnected, invalidating all tags")
				handle(TagOrders)
				handle(TagMessages)
				handle(TagConversations)
				continue
			}
			handle(Tag(n.Extra))
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				s.logger.Warn("Cache listener ping failed", zap.Error(err))
			}
		}
	}
}
