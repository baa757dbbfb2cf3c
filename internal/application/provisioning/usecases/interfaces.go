package usecases

import (
	"context"
	"time"

	"github.com/axonect/quotacycle/internal/domain/session"
	"github.com/axonect/quotacycle/internal/infrastructure/cache"
)

// TransactionManager runs a function as one unit of work. RunInNewTransaction commits
// independently of any transaction already carried by ctx.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	RunInNewTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionStore is the part of the session cache the provisioner writes through.
type SessionStore interface {
	Get(ctx context.Context, username string) (*session.UserSessionData, error)
	Put(ctx context.Context, data *session.UserSessionData) error
}

// SessionAdmin removes session documents on operator request.
type SessionAdmin interface {
	Delete(ctx context.Context, username string) error
	Exists(ctx context.Context, username string) (bool, error)
}

// ReferenceCacheAdmin is the management surface of the reference cache.
type ReferenceCacheAdmin interface {
	Keys(ctx context.Context, kind cache.ReferenceKind) ([]string, error)
	Size(ctx context.Context, kind cache.ReferenceKind) (int64, error)
	Contains(ctx context.Context, kind cache.ReferenceKind, id string) (bool, error)
	Evict(ctx context.Context, kind cache.ReferenceKind, ids ...string) (int64, error)
	EvictPlan(ctx context.Context, planID string) (int64, error)
	Clear(ctx context.Context, kind cache.ReferenceKind) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	Statistics(ctx context.Context) ([]cache.CacheStatistics, error)
}

// JobRecorder receives job level measurements.
type JobRecorder interface {
	ObserveRun(job string, started time.Time, err error)
	AddItems(job, outcome string, n int)
	CacheSyncError(operation string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveRun(string, time.Time, error) {}
func (noopRecorder) AddItems(string, string, int)        {}
func (noopRecorder) CacheSyncError(string)               {}

func recorderOrNoop(r JobRecorder) JobRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
