package handlers

import (
	"context"

	"github.com/axonect/quotacycle/internal/application/provisioning/dto"
)

// Use case interfaces for the batch handlers - enable unit testing with mocks.

type renewalRunner interface {
	Run(ctx context.Context) (*dto.RenewalRunResult, error)
}

type countingJob interface {
	Execute(ctx context.Context) (int, error)
}

type failureLister interface {
	Execute(ctx context.Context, req dto.ListFailuresRequest) (*dto.ListFailuresResponse, error)
}

type retryableFailureLister interface {
	Execute(ctx context.Context, maxRetries int) ([]*dto.ProcessingFailureDTO, error)
}

type failureStatusUpdater interface {
	Execute(ctx context.Context, id int64, req dto.UpdateFailureStatusRequest) (*dto.ProcessingFailureDTO, error)
}

type cacheManager interface {
	Names() []string
	Statistics(ctx context.Context) ([]*dto.CacheStatisticsDTO, error)
	Size(ctx context.Context, name string) (int64, error)
	Keys(ctx context.Context, name string) ([]string, error)
	Contains(ctx context.Context, name, key string) (bool, error)
	EvictKey(ctx context.Context, name, key string) (*dto.CacheEvictionResponse, error)
	Clear(ctx context.Context, name string) (*dto.CacheEvictionResponse, error)
	ClearAll(ctx context.Context) (*dto.CacheEvictionResponse, error)
	EvictPlan(ctx context.Context, planID string) (*dto.CacheEvictionResponse, error)
	EvictUser(ctx context.Context, username string) (*dto.CacheEvictionResponse, error)
	EvictBucket(ctx context.Context, bucketID string) (*dto.CacheEvictionResponse, error)
}
