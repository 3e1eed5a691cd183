package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// catalogChannel is the pub/sub channel mutations publish on. The payload is
// informational only; any message means the collection changed and must be
// re-read in full.
const catalogChannel = "catalog:changed"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// PublishCatalogChange announces a catalog mutation on the change bus.
func (c *Client) PublishCatalogChange(ctx context.Context, payload []byte) error {
	if err := c.rdb.Publish(ctx, catalogChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish catalog change: %w", err)
	}
	return nil
}

// Notifications subscribes to the change bus and adapts it to a nudge
// channel. The returned channel closes when ctx is cancelled. Messages are
// unordered relative to local writes; subscribers re-read the collection on
// every nudge.
func (c *Client) Notifications(ctx context.Context) (<-chan struct{}, error) {
	sub := c.rdb.Subscribe(ctx, catalogChannel)

	// Receive forces the subscription to be established before we return.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to catalog changes: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
					// a nudge is already pending; coalesce
				}
			}
		}
	}()

	return out, nil
}
