package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

func TestRedisExpiryNotificationBus_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bus := NewRedisExpiryNotificationBus(client, "", logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan notification.BucketExpiryNotification, 1)
	done := make(chan error, 1)
	go func() {
		done <- bus.Subscribe(ctx, func(_ context.Context, n notification.BucketExpiryNotification) {
			received <- n
		})
	}()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultExpiryChannel)[DefaultExpiryChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, notification.BucketExpiryNotification{
		Username:         "alice",
		BucketInstanceID: 42,
		DaysToExpire:     3,
	}))

	select {
	case n := <-received:
		assert.Equal(t, "alice", n.Username)
		assert.Equal(t, int64(42), n.BucketInstanceID)
		assert.Equal(t, 3, n.DaysToExpire)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notification")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestRedisExpiryNotificationBus_PublishFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mr.SetError("ERR simulated outage")
	bus := NewRedisExpiryNotificationBus(client, "custom", logger.NewNopLogger())
	assert.Error(t, bus.Publish(context.Background(), notification.BucketExpiryNotification{Username: "alice"}))
}
