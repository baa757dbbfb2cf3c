package messaging

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/infrastructure/messaging/rabbitmq"
	"github.com/axonect/quotacycle/internal/infrastructure/pubsub"
	"github.com/axonect/quotacycle/internal/shared/config"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const (
	TransportRabbitMQ = "rabbitmq"
	TransportRedis    = "redis"
	TransportLog      = "log"
)

// NewPublisher builds the configured transport. The returned close function is never nil.
func NewPublisher(cfg config.NotificationConfig, redisClient *redis.Client, log logger.Interface) (notification.Publisher, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Transport {
	case TransportRabbitMQ, "":
		mq := cfg.RabbitMQ
		p, err := rabbitmq.Dial(mq.URL, mq.Exchange, mq.RoutingKey, mq.Queue, mq.MaxRetries, mq.RetryDelay, log.Named("rabbitmq"))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect notification broker: %w", err)
		}
		return p, p.Close, nil
	case TransportRedis:
		if redisClient == nil {
			return nil, noop, fmt.Errorf("redis transport requires a redis client")
		}
		return pubsub.NewRedisExpiryNotificationBus(redisClient, cfg.RedisChannel, log), noop, nil
	case TransportLog:
		return NewLogPublisher(log), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown notification transport %q", cfg.Transport)
	}
}
