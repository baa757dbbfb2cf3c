package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/axonect/quotacycle/internal/domain/session"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const (
	userKeyPrefix  = "user:"
	groupKeyPrefix = "group:"

	defaultSessionReadTimeout  = 5 * time.Second
	defaultSessionWriteTimeout = 8 * time.Second
	sessionRetryBaseDelay      = 100 * time.Millisecond
	sessionRetryJitter         = 50 * time.Millisecond // backoff range: 100-150ms
)

// SessionCache reads and writes the AAA session documents of subscribers
type SessionCache interface {
	Get(ctx context.Context, username string) (*session.UserSessionData, error)
	Put(ctx context.Context, data *session.UserSessionData) error
	GetGroup(ctx context.Context, username string) (string, error)
	Delete(ctx context.Context, username string) error
	DeleteGroup(ctx context.Context, username string) error
	Exists(ctx context.Context, username string) (bool, error)
}

// SessionCacheOptions bounds every redis round trip; Retries counts extra attempts.
type SessionCacheOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Retries      int
}

// RedisSessionCache implements SessionCache with one JSON document per user
type RedisSessionCache struct {
	client *redis.Client
	opts   SessionCacheOptions
	logger logger.Interface
}

// NewRedisSessionCache creates a new Redis-based session cache
func NewRedisSessionCache(client *redis.Client, opts SessionCacheOptions, logger logger.Interface) *RedisSessionCache {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultSessionReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultSessionWriteTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &RedisSessionCache{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

func userKey(username string) string  { return userKeyPrefix + username }
func groupKey(username string) string { return groupKeyPrefix + username }

// Get returns the session document, or nil when the user has none.
func (c *RedisSessionCache) Get(ctx context.Context, username string) (*session.UserSessionData, error) {
	var raw []byte
	err := c.withRetry(ctx, "get", c.opts.ReadTimeout, func(ctx context.Context) error {
		b, err := c.client.Get(ctx, userKey(username)).Bytes()
		if err == redis.Nil {
			raw = nil
			return nil
		}
		if err != nil {
			return err
		}
		raw = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil // Cache miss
	}

	var data session.UserSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode session of %s: %w", username, err)
	}
	return &data, nil
}

// Put prunes stale balances and writes the user document together with the group entry.
func (c *RedisSessionCache) Put(ctx context.Context, data *session.UserSessionData) error {
	if data == nil || data.UserName == "" {
		return fmt.Errorf("session data requires a user name")
	}

	if removed := data.PruneExpired(biztime.Now()); removed > 0 {
		c.logger.Debugw("pruned expired balances", "username", data.UserName, "removed", removed)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session of %s: %w", data.UserName, err)
	}

	return c.withRetry(ctx, "put", c.opts.WriteTimeout, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return c.client.Set(gctx, userKey(data.UserName), raw, 0).Err()
		})
		if data.HasGroup() {
			g.Go(func() error {
				return c.client.Set(gctx, groupKey(data.UserName), data.GroupEntry(), 0).Err()
			})
		}
		return g.Wait()
	})
}

func (c *RedisSessionCache) GetGroup(ctx context.Context, username string) (string, error) {
	var entry string
	err := c.withRetry(ctx, "get_group", c.opts.ReadTimeout, func(ctx context.Context) error {
		v, err := c.client.Get(ctx, groupKey(username)).Result()
		if err == redis.Nil {
			entry = ""
			return nil
		}
		entry = v
		return err
	})
	return entry, err
}

// Delete removes both the user document and the group entry.
func (c *RedisSessionCache) Delete(ctx context.Context, username string) error {
	return c.withRetry(ctx, "delete", c.opts.WriteTimeout, func(ctx context.Context) error {
		return c.client.Del(ctx, userKey(username), groupKey(username)).Err()
	})
}

func (c *RedisSessionCache) DeleteGroup(ctx context.Context, username string) error {
	return c.withRetry(ctx, "delete_group", c.opts.WriteTimeout, func(ctx context.Context) error {
		return c.client.Del(ctx, groupKey(username)).Err()
	})
}

func (c *RedisSessionCache) Exists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := c.withRetry(ctx, "exists", c.opts.ReadTimeout, func(ctx context.Context) error {
		v, err := c.client.Exists(ctx, userKey(username)).Result()
		n = v
		return err
	})
	return n > 0, err
}

// withRetry runs fn under a per-attempt timeout, sleeping a jittered backoff between attempts.
func (c *RedisSessionCache) withRetry(ctx context.Context, op string, timeout time.Duration, fn func(ctx context.Context) error) error {
	attempts := c.opts.Retries + 1

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := sessionRetryBaseDelay + rand.N(sessionRetryJitter)
			select {
			case <-ctx.Done():
				return fmt.Errorf("session cache %s cancelled: %w", op, ctx.Err())
			case <-time.After(delay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		err = fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		c.logger.Warnw("session cache operation failed", "operation", op, "attempt", i+1, "error", err)
	}
	return fmt.Errorf("session cache %s failed after %d attempts: %w", op, attempts, err)
}
