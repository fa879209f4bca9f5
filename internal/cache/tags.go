package cache

import "context"

// Tag names a group of cached reads that must be recomputed after a write.
type Tag string

const (
	TagOrders        Tag = "orders"
	TagMessages      Tag = "messages"
	TagConversations Tag = "conversations"
)

// Invalidator broadcasts that cached reads for the given tags are stale.
// Tags are global: invalidating "orders" affects every user's cached order reads.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...Tag) error
}
