package cache

import (
	"context"
	"strconv"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

func identity(s string) string { return s }

// CachedPlanRepository serves plans through the reference cache
type CachedPlanRepository struct {
	next  provisioning.PlanRepository
	cache *RedisReferenceCache
}

func NewCachedPlanRepository(next provisioning.PlanRepository, cache *RedisReferenceCache) provisioning.PlanRepository {
	return &CachedPlanRepository{next: next, cache: cache}
}

func (r *CachedPlanRepository) GetByPlanIDs(ctx context.Context, planIDs []string) ([]*provisioning.Plan, error) {
	found, err := cacheAside(ctx, r.cache, KindPlan, planIDs, identity,
		func(ctx context.Context, ids []string) (map[string]*provisioning.Plan, error) {
			plans, err := r.next.GetByPlanIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return mapper.IndexBy(plans, func(p *provisioning.Plan) string { return p.PlanID }), nil
		})
	if err != nil {
		return nil, err
	}
	return inOrder(planIDs, found), nil
}

// CachedPlanToBucketRepository caches the template list of each plan under the plan id.
// Plans without templates are not cached.
type CachedPlanToBucketRepository struct {
	next  provisioning.PlanToBucketRepository
	cache *RedisReferenceCache
}

func NewCachedPlanToBucketRepository(next provisioning.PlanToBucketRepository, cache *RedisReferenceCache) provisioning.PlanToBucketRepository {
	return &CachedPlanToBucketRepository{next: next, cache: cache}
}

func (r *CachedPlanToBucketRepository) GetByPlanIDs(ctx context.Context, planIDs []string) ([]*provisioning.PlanToBucket, error) {
	found, err := cacheAside(ctx, r.cache, KindTemplate, planIDs, identity,
		func(ctx context.Context, ids []string) (map[string][]*provisioning.PlanToBucket, error) {
			templates, err := r.next.GetByPlanIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return mapper.GroupBy(templates, func(t *provisioning.PlanToBucket) string { return t.PlanID }), nil
		})
	if err != nil {
		return nil, err
	}

	var out []*provisioning.PlanToBucket
	for _, id := range planIDs {
		out = append(out, found[id]...)
	}
	return out, nil
}

// CachedBucketRepository serves bucket definitions through the reference cache
type CachedBucketRepository struct {
	next  provisioning.BucketRepository
	cache *RedisReferenceCache
}

func NewCachedBucketRepository(next provisioning.BucketRepository, cache *RedisReferenceCache) provisioning.BucketRepository {
	return &CachedBucketRepository{next: next, cache: cache}
}

func (r *CachedBucketRepository) GetByBucketIDs(ctx context.Context, bucketIDs []string) ([]*provisioning.Bucket, error) {
	found, err := cacheAside(ctx, r.cache, KindBucket, bucketIDs, identity,
		func(ctx context.Context, ids []string) (map[string]*provisioning.Bucket, error) {
			buckets, err := r.next.GetByBucketIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return mapper.IndexBy(buckets, func(b *provisioning.Bucket) string { return b.BucketID }), nil
		})
	if err != nil {
		return nil, err
	}
	return inOrder(bucketIDs, found), nil
}

// CachedQOSProfileRepository serves QoS profiles through the reference cache
type CachedQOSProfileRepository struct {
	next  provisioning.QOSProfileRepository
	cache *RedisReferenceCache
}

func NewCachedQOSProfileRepository(next provisioning.QOSProfileRepository, cache *RedisReferenceCache) provisioning.QOSProfileRepository {
	return &CachedQOSProfileRepository{next: next, cache: cache}
}

func (r *CachedQOSProfileRepository) GetByIDs(ctx context.Context, ids []int64) ([]*provisioning.QOSProfile, error) {
	keyOf := func(id int64) string { return strconv.FormatInt(id, 10) }
	found, err := cacheAside(ctx, r.cache, KindQOS, ids, keyOf,
		func(ctx context.Context, ids []int64) (map[int64]*provisioning.QOSProfile, error) {
			profiles, err := r.next.GetByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return mapper.IndexBy(profiles, func(q *provisioning.QOSProfile) int64 { return q.ID }), nil
		})
	if err != nil {
		return nil, err
	}
	return inOrder(ids, found), nil
}

func inOrder[K comparable, V any](ids []K, found map[K]*V) []*V {
	out := make([]*V, 0, len(found))
	for _, id := range ids {
		if v, ok := found[id]; ok && v != nil {
			out = append(out, v)
		}
	}
	return out
}
