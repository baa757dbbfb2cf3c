package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/cache"
)

// passthroughTxManager runs fn directly; mocks need no real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) RunInNewTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockServiceInstanceRepository struct {
	mock.Mock
}

func (m *mockServiceInstanceRepository) FindDueForRenewal(ctx context.Context, window provisioning.RenewalWindow, afterID int64, limit int) ([]*provisioning.ServiceInstance, error) {
	args := m.Called(ctx, window, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*provisioning.ServiceInstance), args.Error(1)
}

func (m *mockServiceInstanceRepository) GetByIDs(ctx context.Context, ids []int64) ([]*provisioning.ServiceInstance, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*provisioning.ServiceInstance), args.Error(1)
}

func (m *mockServiceInstanceRepository) Update(ctx context.Context, svc *provisioning.ServiceInstance) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

type mockBucketInstanceRepository struct {
	mock.Mock
}

func (m *mockBucketInstanceRepository) GetByServiceIDs(ctx context.Context, serviceIDs []int64) ([]*provisioning.BucketInstance, error) {
	args := m.Called(ctx, serviceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*provisioning.BucketInstance), args.Error(1)
}

func (m *mockBucketInstanceRepository) SaveAll(ctx context.Context, buckets []*provisioning.BucketInstance) error {
	args := m.Called(ctx, buckets)
	return args.Error(0)
}

func (m *mockBucketInstanceRepository) FindIDsExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockBucketInstanceRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBucketInstanceRepository) FindExpiringBetween(ctx context.Context, from, to time.Time, afterID int64, limit int) ([]*provisioning.BucketInstance, error) {
	args := m.Called(ctx, from, to, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*provisioning.BucketInstance), args.Error(1)
}

type mockProcessingFailureRepository struct {
	mock.Mock
}

func (m *mockProcessingFailureRepository) Create(ctx context.Context, failure *provisioning.ProcessingFailure) error {
	args := m.Called(ctx, failure)
	return args.Error(0)
}

func (m *mockProcessingFailureRepository) GetByID(ctx context.Context, id int64) (*provisioning.ProcessingFailure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provisioning.ProcessingFailure), args.Error(1)
}

func (m *mockProcessingFailureRepository) Update(ctx context.Context, failure *provisioning.ProcessingFailure) error {
	args := m.Called(ctx, failure)
	return args.Error(0)
}

func (m *mockProcessingFailureRepository) List(ctx context.Context, filter provisioning.FailureFilter) ([]*provisioning.ProcessingFailure, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*provisioning.ProcessingFailure), args.Get(1).(int64), args.Error(2)
}

func (m *mockProcessingFailureRepository) FindRetryable(ctx context.Context, maxRetries int) ([]*provisioning.ProcessingFailure, error) {
	args := m.Called(ctx, maxRetries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*provisioning.ProcessingFailure), args.Error(1)
}

type mockNotificationTemplateRepository struct {
	mock.Mock
}

func (m *mockNotificationTemplateRepository) ListByMessageType(ctx context.Context, messageType notification.MessageType) ([]*notification.NotificationTemplate, error) {
	args := m.Called(ctx, messageType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.NotificationTemplate), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, n notification.BucketExpiryNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type mockReferenceCache struct {
	mock.Mock
}

func (m *mockReferenceCache) Keys(ctx context.Context, kind cache.ReferenceKind) ([]string, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockReferenceCache) Size(ctx context.Context, kind cache.ReferenceKind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReferenceCache) Contains(ctx context.Context, kind cache.ReferenceKind, id string) (bool, error) {
	args := m.Called(ctx, kind, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockReferenceCache) Evict(ctx context.Context, kind cache.ReferenceKind, ids ...string) (int64, error) {
	args := m.Called(ctx, kind, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReferenceCache) EvictPlan(ctx context.Context, planID string) (int64, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReferenceCache) Clear(ctx context.Context, kind cache.ReferenceKind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReferenceCache) ClearAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReferenceCache) Statistics(ctx context.Context) ([]cache.CacheStatistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cache.CacheStatistics), args.Error(1)
}

type mockSessionAdmin struct {
	mock.Mock
}

func (m *mockSessionAdmin) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *mockSessionAdmin) Exists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// countingRecorder keeps the last reported values per job and outcome.
type countingRecorder struct {
	runs       map[string]error
	items      map[string]int
	syncErrors map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		runs:       make(map[string]error),
		items:      make(map[string]int),
		syncErrors: make(map[string]int),
	}
}

func (r *countingRecorder) ObserveRun(job string, _ time.Time, err error) { r.runs[job] = err }
func (r *countingRecorder) AddItems(job, outcome string, n int)          { r.items[job+"/"+outcome] += n }
func (r *countingRecorder) CacheSyncError(operation string)              { r.syncErrors[operation]++ }
