package messaging

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/infrastructure/pubsub"
	"github.com/axonect/quotacycle/internal/shared/config"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

func TestNewPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	log := logger.NewNopLogger()

	t.Run("log transport", func(t *testing.T) {
		p, closeFn, err := NewPublisher(config.NotificationConfig{Transport: TransportLog}, nil, log)
		require.NoError(t, err)
		assert.IsType(t, &LogPublisher{}, p)
		assert.NoError(t, p.Publish(context.Background(), notification.BucketExpiryNotification{Username: "alice"}))
		assert.NoError(t, closeFn())
	})

	t.Run("redis transport", func(t *testing.T) {
		p, _, err := NewPublisher(config.NotificationConfig{Transport: TransportRedis, RedisChannel: "expiry"}, client, log)
		require.NoError(t, err)
		assert.IsType(t, &pubsub.RedisExpiryNotificationBus{}, p)
	})

	t.Run("redis transport without client", func(t *testing.T) {
		_, closeFn, err := NewPublisher(config.NotificationConfig{Transport: TransportRedis}, nil, log)
		assert.Error(t, err)
		assert.NotNil(t, closeFn)
	})

	t.Run("unknown transport", func(t *testing.T) {
		_, _, err := NewPublisher(config.NotificationConfig{Transport: "smtp"}, nil, log)
		assert.Error(t, err)
	})
}
