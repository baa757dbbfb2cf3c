package usecases

import (
	"context"

	"github.com/axonect/quotacycle/internal/application/provisioning/dto"
	"github.com/axonect/quotacycle/internal/infrastructure/cache"
	apperrors "github.com/axonect/quotacycle/internal/shared/errors"
	"github.com/axonect/quotacycle/internal/shared/logger"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

// CacheNameSession is the management name of the per-user session documents.
const CacheNameSession = "session"

// ManageCacheUseCase exposes inspection and eviction of the reference and session caches.
type ManageCacheUseCase struct {
	references ReferenceCacheAdmin
	sessions   SessionAdmin
	logger     logger.Interface
}

func NewManageCacheUseCase(references ReferenceCacheAdmin, sessions SessionAdmin, logger logger.Interface) *ManageCacheUseCase {
	return &ManageCacheUseCase{references: references, sessions: sessions, logger: logger}
}

func (uc *ManageCacheUseCase) kind(name string) (cache.ReferenceKind, error) {
	if uc.references == nil {
		return "", apperrors.NewNotFoundError("reference cache is disabled")
	}
	kind, ok := cache.ParseReferenceKind(name)
	if !ok {
		return "", apperrors.NewNotFoundError("cache not found", name)
	}
	return kind, nil
}

func (uc *ManageCacheUseCase) internal(op string, err error) error {
	uc.logger.Errorw("cache operation failed", "operation", op, "error", err)
	return apperrors.NewInternalError("cache operation failed", op)
}

// Names lists the reference caches followed by the session cache.
func (uc *ManageCacheUseCase) Names() []string {
	var names []string
	if uc.references != nil {
		names = mapper.MapSlice(cache.ReferenceKinds(), func(k cache.ReferenceKind) string { return string(k) })
	}
	if uc.sessions != nil {
		names = append(names, CacheNameSession)
	}
	return names
}

func (uc *ManageCacheUseCase) Statistics(ctx context.Context) ([]*dto.CacheStatisticsDTO, error) {
	if uc.references == nil {
		return []*dto.CacheStatisticsDTO{}, nil
	}
	stats, err := uc.references.Statistics(ctx)
	if err != nil {
		return nil, uc.internal("statistics", err)
	}
	return mapper.MapSlice(stats, func(s cache.CacheStatistics) *dto.CacheStatisticsDTO {
		return &dto.CacheStatisticsDTO{
			Name:       s.Name,
			Size:       s.Size,
			Hits:       s.Hits,
			Misses:     s.Misses,
			HitRatio:   s.HitRatio,
			TTLSeconds: s.TTLSeconds,
		}
	}), nil
}

func (uc *ManageCacheUseCase) Size(ctx context.Context, name string) (int64, error) {
	kind, err := uc.kind(name)
	if err != nil {
		return 0, err
	}
	n, err := uc.references.Size(ctx, kind)
	if err != nil {
		return 0, uc.internal("size", err)
	}
	return n, nil
}

func (uc *ManageCacheUseCase) Keys(ctx context.Context, name string) ([]string, error) {
	kind, err := uc.kind(name)
	if err != nil {
		return nil, err
	}
	keys, err := uc.references.Keys(ctx, kind)
	if err != nil {
		return nil, uc.internal("keys", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Contains also answers for the session cache, keyed by username.
func (uc *ManageCacheUseCase) Contains(ctx context.Context, name, key string) (bool, error) {
	if name == CacheNameSession && uc.sessions != nil {
		ok, err := uc.sessions.Exists(ctx, key)
		if err != nil {
			return false, uc.internal("contains", err)
		}
		return ok, nil
	}
	kind, err := uc.kind(name)
	if err != nil {
		return false, err
	}
	ok, err := uc.references.Contains(ctx, kind, key)
	if err != nil {
		return false, uc.internal("contains", err)
	}
	return ok, nil
}

func (uc *ManageCacheUseCase) EvictKey(ctx context.Context, name, key string) (*dto.CacheEvictionResponse, error) {
	if name == CacheNameSession {
		return uc.EvictUser(ctx, key)
	}
	kind, err := uc.kind(name)
	if err != nil {
		return nil, err
	}
	n, err := uc.references.Evict(ctx, kind, key)
	if err != nil {
		return nil, uc.internal("evict", err)
	}
	uc.logger.Infow("cache entry evicted", "cache", kind, "key", key, "evicted", n)
	return &dto.CacheEvictionResponse{Cache: string(kind), Key: key, Evicted: n}, nil
}

func (uc *ManageCacheUseCase) Clear(ctx context.Context, name string) (*dto.CacheEvictionResponse, error) {
	kind, err := uc.kind(name)
	if err != nil {
		return nil, err
	}
	n, err := uc.references.Clear(ctx, kind)
	if err != nil {
		return nil, uc.internal("clear", err)
	}
	uc.logger.Infow("cache cleared", "cache", kind, "evicted", n)
	return &dto.CacheEvictionResponse{Cache: string(kind), Evicted: n}, nil
}

// ClearAll empties every reference cache. Session documents are left alone.
func (uc *ManageCacheUseCase) ClearAll(ctx context.Context) (*dto.CacheEvictionResponse, error) {
	if uc.references == nil {
		return &dto.CacheEvictionResponse{Cache: "all"}, nil
	}
	n, err := uc.references.ClearAll(ctx)
	if err != nil {
		return nil, uc.internal("clear_all", err)
	}
	uc.logger.Infow("all reference caches cleared", "evicted", n)
	return &dto.CacheEvictionResponse{Cache: "all", Evicted: n}, nil
}

// EvictPlan drops a plan together with its bucket templates.
func (uc *ManageCacheUseCase) EvictPlan(ctx context.Context, planID string) (*dto.CacheEvictionResponse, error) {
	if uc.references == nil {
		return nil, apperrors.NewNotFoundError("reference cache is disabled")
	}
	n, err := uc.references.EvictPlan(ctx, planID)
	if err != nil {
		return nil, uc.internal("evict_plan", err)
	}
	uc.logger.Infow("plan evicted from cache", "plan_id", planID, "evicted", n)
	return &dto.CacheEvictionResponse{Cache: string(cache.KindPlan), Key: planID, Evicted: n}, nil
}

func (uc *ManageCacheUseCase) EvictBucket(ctx context.Context, bucketID string) (*dto.CacheEvictionResponse, error) {
	return uc.EvictKey(ctx, string(cache.KindBucket), bucketID)
}

// EvictUser removes the session document of username from both its user and group keys.
func (uc *ManageCacheUseCase) EvictUser(ctx context.Context, username string) (*dto.CacheEvictionResponse, error) {
	if uc.sessions == nil {
		return nil, apperrors.NewNotFoundError("session cache is disabled")
	}
	existed, err := uc.sessions.Exists(ctx, username)
	if err != nil {
		return nil, uc.internal("evict_user", err)
	}
	if err := uc.sessions.Delete(ctx, username); err != nil {
		return nil, uc.internal("evict_user", err)
	}
	resp := &dto.CacheEvictionResponse{Cache: CacheNameSession, Key: username}
	if existed {
		resp.Evicted = 1
	}
	uc.logger.Infow("session evicted", "username", username, "existed", existed)
	return resp, nil
}
