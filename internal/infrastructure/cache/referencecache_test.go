package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

type stubPlanRepo struct {
	plans map[string]*provisioning.Plan
	calls [][]string
	err   error
}

func (s *stubPlanRepo) GetByPlanIDs(_ context.Context, ids []string) ([]*provisioning.Plan, error) {
	s.calls = append(s.calls, append([]string(nil), ids...))
	if s.err != nil {
		return nil, s.err
	}
	var out []*provisioning.Plan
	for _, id := range ids {
		if p, ok := s.plans[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubTemplateRepo struct {
	templates []*provisioning.PlanToBucket
	calls     int
}

func (s *stubTemplateRepo) GetByPlanIDs(_ context.Context, ids []string) ([]*provisioning.PlanToBucket, error) {
	s.calls++
	var out []*provisioning.PlanToBucket
	for _, t := range s.templates {
		for _, id := range ids {
			if t.PlanID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

type stubQOSRepo struct {
	profiles []*provisioning.QOSProfile
	calls    int
}

func (s *stubQOSRepo) GetByIDs(_ context.Context, _ []int64) ([]*provisioning.QOSProfile, error) {
	s.calls++
	return s.profiles, nil
}

func newTestReferenceCache(t *testing.T) (*RedisReferenceCache, func(time.Duration)) {
	client, mr := setupTestRedis(t)
	c := NewRedisReferenceCache(client, ReferenceCacheOptions{
		TTLs: map[ReferenceKind]time.Duration{KindPlan: time.Minute},
	}, logger.NewNopLogger())
	return c, mr.FastForward
}

func TestCachedPlanRepository_CacheAside(t *testing.T) {
	c, fastForward := newTestReferenceCache(t)
	stub := &stubPlanRepo{plans: map[string]*provisioning.Plan{
		"P-1": {PlanID: "P-1", PlanName: "Home 100", RecurringFlag: true},
		"P-2": {PlanID: "P-2", PlanName: "Home 200"},
	}}
	repo := NewCachedPlanRepository(stub, c)
	ctx := context.Background()

	plans, err := repo.GetByPlanIDs(ctx, []string{"P-1", "P-2", "P-404"})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "P-1", plans[0].PlanID)
	require.Len(t, stub.calls, 1)

	plans, err = repo.GetByPlanIDs(ctx, []string{"P-1", "P-2"})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Home 100", plans[0].PlanName)
	assert.True(t, plans[0].RecurringFlag)
	assert.Len(t, stub.calls, 1, "served from cache")

	_, err = repo.GetByPlanIDs(ctx, []string{"P-1", "P-404"})
	require.NoError(t, err)
	require.Len(t, stub.calls, 2)
	assert.Equal(t, []string{"P-404"}, stub.calls[1], "only misses reach the store")

	fastForward(2 * time.Minute)
	_, err = repo.GetByPlanIDs(ctx, []string{"P-1"})
	require.NoError(t, err)
	assert.Len(t, stub.calls, 3, "entry expired after its TTL")

	stats, err := c.Statistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 4)
	assert.Equal(t, "plan", stats[0].Name)
	assert.Equal(t, int64(3), stats[0].Hits)
	assert.Equal(t, int64(5), stats[0].Misses)
}

func TestCachedPlanRepository_StoreErrorPropagates(t *testing.T) {
	c, _ := newTestReferenceCache(t)
	repo := NewCachedPlanRepository(&stubPlanRepo{err: errors.New("db down")}, c)

	_, err := repo.GetByPlanIDs(context.Background(), []string{"P-1"})
	assert.Error(t, err)
}

func TestCachedPlanToBucketRepository_GroupsByPlan(t *testing.T) {
	c, _ := newTestReferenceCache(t)
	stub := &stubTemplateRepo{templates: []*provisioning.PlanToBucket{
		{ID: 1, PlanID: "P-1", BucketID: "B-DATA"},
		{ID: 2, PlanID: "P-1", BucketID: "B-NIGHT"},
		{ID: 3, PlanID: "P-2", BucketID: "B-DATA"},
	}}
	repo := NewCachedPlanToBucketRepository(stub, c)
	ctx := context.Background()

	first, err := repo.GetByPlanIDs(ctx, []string{"P-1", "P-2"})
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := repo.GetByPlanIDs(ctx, []string{"P-1", "P-2"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)
}

func TestCachedQOSProfileRepository(t *testing.T) {
	c, _ := newTestReferenceCache(t)
	stub := &stubQOSRepo{profiles: []*provisioning.QOSProfile{{ID: 5, BNGCode: "QOS-100M"}}}
	repo := NewCachedQOSProfileRepository(stub, c)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := repo.GetByIDs(ctx, []int64{5})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "QOS-100M", got[0].BNGCode)
	}
	assert.Equal(t, 1, stub.calls)

	ok, err := c.Contains(ctx, KindQOS, "5")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisReferenceCache_Management(t *testing.T) {
	c, _ := newTestReferenceCache(t)
	ctx := context.Background()

	require.NoError(t, c.setMany(ctx, KindPlan, map[string]any{"P-1": 1, "P-2": 2}))
	require.NoError(t, c.setMany(ctx, KindTemplate, map[string]any{"P-1": []int{1}}))
	require.NoError(t, c.setMany(ctx, KindBucket, map[string]any{"B-1": 1}))

	keys, err := c.Keys(ctx, KindPlan)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"P-1", "P-2"}, keys)

	n, err := c.EvictPlan(ctx, "P-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	size, err := c.Size(ctx, KindPlan)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	n, err = c.Evict(ctx, KindBucket, "B-1", "B-404")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	total, err := c.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	kind, ok := ParseReferenceKind("QOS")
	assert.True(t, ok)
	assert.Equal(t, KindQOS, kind)
	_, ok = ParseReferenceKind("user")
	assert.False(t, ok)
}
