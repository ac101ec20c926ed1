package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/config"
)

// Client wraps go-redis.
// Used to fan realtime events out to every API instance.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects and pings.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── event channel ──

const eventChannel = "college-connect:events"

// PublishEvent publishes an encoded event to every subscriber.
func (c *Client) PublishEvent(ctx context.Context, payload []byte) error {
	return c.rdb.Publish(ctx, eventChannel, payload).Err()
}

// SubscribeEvents calls handle for every event until ctx is cancelled.
func (c *Client) SubscribeEvents(ctx context.Context, handle func(payload []byte)) error {
	sub := c.rdb.Subscribe(ctx, eventChannel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handle([]byte(msg.Payload))
		}
	}
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
