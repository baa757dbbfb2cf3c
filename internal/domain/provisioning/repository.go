package provisioning

import (
	"context"
	"time"
)

// RenewalWindow selects recurring service instances whose next cycle starts in [Start, End)
// and whose expiry is after Start.
type RenewalWindow struct {
	Start time.Time
	End   time.Time
}

type ServiceInstanceRepository interface {
	// FindDueForRenewal returns up to limit due instances with id greater than afterID, ordered by id.
	FindDueForRenewal(ctx context.Context, window RenewalWindow, afterID int64, limit int) ([]*ServiceInstance, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*ServiceInstance, error)
	Update(ctx context.Context, svc *ServiceInstance) error
}

type SubscriberRepository interface {
	GetByUserNames(ctx context.Context, userNames []string) ([]*Subscriber, error)
}

type PlanRepository interface {
	GetByPlanIDs(ctx context.Context, planIDs []string) ([]*Plan, error)
}

type PlanToBucketRepository interface {
	GetByPlanIDs(ctx context.Context, planIDs []string) ([]*PlanToBucket, error)
}

type BucketRepository interface {
	GetByBucketIDs(ctx context.Context, bucketIDs []string) ([]*Bucket, error)
}

type QOSProfileRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*QOSProfile, error)
}

type BucketInstanceRepository interface {
	GetByServiceIDs(ctx context.Context, serviceIDs []int64) ([]*BucketInstance, error)
	// SaveAll inserts new instances and updates existing ones in one batch.
	SaveAll(ctx context.Context, buckets []*BucketInstance) error
	// FindIDsExpiredBefore returns up to limit ids of instances whose expiration is before cutoff.
	FindIDsExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	// FindExpiringBetween pages instances expiring in [from, to) by id.
	FindExpiringBetween(ctx context.Context, from, to time.Time, afterID int64, limit int) ([]*BucketInstance, error)
}

// FailureFilter narrows failure listings; zero values are ignored.
type FailureFilter struct {
	Username          string
	Status            ProcessingStatus
	BatchID           string
	ServiceInstanceID int64
	From              *time.Time
	To                *time.Time
	Page              int
	PageSize          int
}

type ProcessingFailureRepository interface {
	Create(ctx context.Context, failure *ProcessingFailure) error
	GetByID(ctx context.Context, id int64) (*ProcessingFailure, error)
	Update(ctx context.Context, failure *ProcessingFailure) error
	List(ctx context.Context, filter FailureFilter) ([]*ProcessingFailure, int64, error)
	// FindRetryable returns FAILED or PENDING_RETRY rows with fewer than maxRetries attempts.
	FindRetryable(ctx context.Context, maxRetries int) ([]*ProcessingFailure, error)
}
