package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/axonect/quotacycle/internal/shared/logger"
)

// ReferenceKind names one family of cached reference data.
type ReferenceKind string

const (
	KindPlan     ReferenceKind = "plan"
	KindTemplate ReferenceKind = "template"
	KindBucket   ReferenceKind = "bucket"
	KindQOS      ReferenceKind = "qos"
)

// ReferenceKinds lists every cache name in a stable order.
func ReferenceKinds() []ReferenceKind {
	return []ReferenceKind{KindPlan, KindTemplate, KindBucket, KindQOS}
}

// ParseReferenceKind resolves a cache name as used by the management API.
func ParseReferenceKind(name string) (ReferenceKind, bool) {
	for _, k := range ReferenceKinds() {
		if strings.EqualFold(string(k), name) {
			return k, true
		}
	}
	return "", false
}

const (
	defaultReferencePrefix = "ref:"
	defaultReferenceTTL    = 30 * time.Minute
	referenceTTLJitter     = 0.1 // up to +10% of the base TTL (anti-stampede)
	scanBatchSize          = 500
)

// ReferenceCacheOptions configures key prefix and per-kind time to live.
type ReferenceCacheOptions struct {
	Prefix string
	TTLs   map[ReferenceKind]time.Duration
}

type kindCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStatistics reports size and hit counters of one reference kind.
type CacheStatistics struct {
	Name       string  `json:"name"`
	Size       int64   `json:"size"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRatio   float64 `json:"hit_ratio"`
	TTLSeconds float64 `json:"ttl_seconds"`
}

// RedisReferenceCache stores catalog data as JSON under <prefix><kind>:<id>
type RedisReferenceCache struct {
	client   *redis.Client
	prefix   string
	ttls     map[ReferenceKind]time.Duration
	counters map[ReferenceKind]*kindCounters
	logger   logger.Interface
}

// NewRedisReferenceCache creates a new Redis-based reference cache
func NewRedisReferenceCache(client *redis.Client, opts ReferenceCacheOptions, logger logger.Interface) *RedisReferenceCache {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultReferencePrefix
	}

	ttls := make(map[ReferenceKind]time.Duration, len(ReferenceKinds()))
	counters := make(map[ReferenceKind]*kindCounters, len(ReferenceKinds()))
	for _, k := range ReferenceKinds() {
		ttl := opts.TTLs[k]
		if ttl <= 0 {
			ttl = defaultReferenceTTL
		}
		ttls[k] = ttl
		counters[k] = &kindCounters{}
	}

	return &RedisReferenceCache{
		client:   client,
		prefix:   prefix,
		ttls:     ttls,
		counters: counters,
		logger:   logger,
	}
}

func (c *RedisReferenceCache) key(kind ReferenceKind, id string) string {
	return c.prefix + string(kind) + ":" + id
}

func (c *RedisReferenceCache) pattern(kind ReferenceKind) string {
	return c.prefix + string(kind) + ":*"
}

func (c *RedisReferenceCache) ttl(kind ReferenceKind) time.Duration {
	base := c.ttls[kind]
	jitter := time.Duration(float64(base) * referenceTTLJitter)
	if jitter <= 0 {
		return base
	}
	return base + rand.N(jitter)
}

// getMany returns the raw values of ids in order; misses are nil.
func (c *RedisReferenceCache) getMany(ctx context.Context, kind ReferenceKind, ids []string) ([][]byte, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(kind, id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s cache: %w", kind, err)
	}

	out := make([][]byte, len(ids))
	var hits int64
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[i] = []byte(s)
			hits++
		}
	}
	c.counters[kind].hits.Add(hits)
	c.counters[kind].misses.Add(int64(len(ids)) - hits)
	return out, nil
}

func (c *RedisReferenceCache) setMany(ctx context.Context, kind ReferenceKind, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for id, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", kind, id, err)
		}
		pipe.Set(ctx, c.key(kind, id), raw, c.ttl(kind))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write %s cache: %w", kind, err)
	}
	return nil
}

// Keys returns the cached ids of kind.
func (c *RedisReferenceCache) Keys(ctx context.Context, kind ReferenceKind) ([]string, error) {
	var ids []string
	trim := c.prefix + string(kind) + ":"
	iter := c.client.Scan(ctx, 0, c.pattern(kind), scanBatchSize).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), trim))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s cache: %w", kind, err)
	}
	return ids, nil
}

func (c *RedisReferenceCache) Size(ctx context.Context, kind ReferenceKind) (int64, error) {
	ids, err := c.Keys(ctx, kind)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (c *RedisReferenceCache) Contains(ctx context.Context, kind ReferenceKind, id string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(kind, id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s cache: %w", kind, err)
	}
	return n > 0, nil
}

// Evict removes single entries and reports how many existed.
func (c *RedisReferenceCache) Evict(ctx context.Context, kind ReferenceKind, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(kind, id)
	}
	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to evict from %s cache: %w", kind, err)
	}
	return n, nil
}

// EvictPlan drops a plan together with its templates.
func (c *RedisReferenceCache) EvictPlan(ctx context.Context, planID string) (int64, error) {
	n, err := c.client.Del(ctx, c.key(KindPlan, planID), c.key(KindTemplate, planID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to evict plan %s: %w", planID, err)
	}
	return n, nil
}

// Clear drops every entry of kind.
func (c *RedisReferenceCache) Clear(ctx context.Context, kind ReferenceKind) (int64, error) {
	ids, err := c.Keys(ctx, kind)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for start := 0; start < len(ids); start += scanBatchSize {
		end := min(start+scanBatchSize, len(ids))
		n, err := c.Evict(ctx, kind, ids[start:end]...)
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	c.logger.Infow("reference cache cleared", "cache", kind, "deleted", deleted)
	return deleted, nil
}

func (c *RedisReferenceCache) ClearAll(ctx context.Context) (int64, error) {
	var total int64
	for _, k := range ReferenceKinds() {
		n, err := c.Clear(ctx, k)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *RedisReferenceCache) Statistics(ctx context.Context) ([]CacheStatistics, error) {
	stats := make([]CacheStatistics, 0, len(ReferenceKinds()))
	for _, k := range ReferenceKinds() {
		size, err := c.Size(ctx, k)
		if err != nil {
			return nil, err
		}
		hits := c.counters[k].hits.Load()
		misses := c.counters[k].misses.Load()
		s := CacheStatistics{
			Name:       string(k),
			Size:       size,
			Hits:       hits,
			Misses:     misses,
			TTLSeconds: c.ttls[k].Seconds(),
		}
		if hits+misses > 0 {
			s.HitRatio = float64(hits) / float64(hits+misses)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// cacheAside serves ids from the cache, loads the misses through load and writes them back.
// Cache failures degrade to a full load.
func cacheAside[K comparable, V any](
	ctx context.Context,
	c *RedisReferenceCache,
	kind ReferenceKind,
	ids []K,
	keyOf func(K) string,
	load func(ctx context.Context, ids []K) (map[K]V, error),
) (map[K]V, error) {
	result := make(map[K]V, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}

	missing := ids
	raw, err := c.getMany(ctx, kind, keys)
	if err != nil {
		c.logger.Warnw("reference cache read failed, loading from store", "cache", kind, "error", err)
	} else {
		missing = make([]K, 0, len(ids))
		for i, id := range ids {
			if raw[i] == nil {
				missing = append(missing, id)
				continue
			}
			var v V
			if err := json.Unmarshal(raw[i], &v); err != nil {
				c.logger.Warnw("dropping undecodable cache entry", "cache", kind, "key", keys[i], "error", err)
				missing = append(missing, id)
				continue
			}
			result[id] = v
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	loaded, err := load(ctx, missing)
	if err != nil {
		return nil, err
	}

	fill := make(map[string]any, len(loaded))
	for id, v := range loaded {
		result[id] = v
		fill[keyOf(id)] = v
	}
	if err := c.setMany(ctx, kind, fill); err != nil {
		c.logger.Warnw("reference cache write failed", "cache", kind, "error", err)
	}
	return result, nil
}
