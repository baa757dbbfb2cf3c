package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/shared/goroutine"
	"github.com/axonect/quotacycle/internal/shared/logger"
	"github.com/axonect/quotacycle/internal/shared/utils/logutil"
)

// DefaultExpiryChannel is used when no channel is configured.
const DefaultExpiryChannel = "quotacycle:notification:expiry"

// ExpiryNotificationHandler is a callback invoked for each received notification
type ExpiryNotificationHandler func(ctx context.Context, n notification.BucketExpiryNotification)

// RedisExpiryNotificationBus publishes expiry notifications over Redis Pub/Sub
type RedisExpiryNotificationBus struct {
	client  *redis.Client
	channel string
	logger  logger.Interface
}

// NewRedisExpiryNotificationBus creates a new Redis-based notification bus
func NewRedisExpiryNotificationBus(client *redis.Client, channel string, logger logger.Interface) *RedisExpiryNotificationBus {
	if channel == "" {
		channel = DefaultExpiryChannel
	}
	return &RedisExpiryNotificationBus{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (b *RedisExpiryNotificationBus) Publish(ctx context.Context, n notification.BucketExpiryNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish expiry notification",
			"username", n.Username,
			"bucket_instance_id", n.BucketInstanceID,
			"error", err,
		)
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	b.logger.Debugw("expiry notification published",
		"channel", b.channel,
		"username", n.Username,
		"bucket_instance_id", n.BucketInstanceID,
	)
	return nil
}

// Subscribe blocks delivering notifications to handler until ctx is done.
func (b *RedisExpiryNotificationBus) Subscribe(ctx context.Context, handler ExpiryNotificationHandler) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", b.channel, err)
	}

	b.logger.Infow("subscribed to expiry notifications", "channel", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("expiry notification subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("expiry notification channel closed")
				return nil
			}

			var n notification.BucketExpiryNotification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.logger.Warnw("failed to unmarshal expiry notification", "payload", logutil.TruncateForLog(msg.Payload, 256), "error", err)
				continue
			}

			goroutine.Go(context.WithoutCancel(ctx), b.logger, "expiry-notification-handler", func(ctx context.Context) error {
				handler(ctx, n)
				return nil
			})
		}
	}
}
