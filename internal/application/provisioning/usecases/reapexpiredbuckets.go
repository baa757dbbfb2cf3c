package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/metrics"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const DefaultReaperPageSize = 1000

// ReapExpiredBucketsUseCase deletes bucket instances that expired before today.
type ReapExpiredBucketsUseCase struct {
	bucketInstanceRepo provisioning.BucketInstanceRepository
	recorder           JobRecorder
	pageSize           int
	logger             logger.Interface
}

func NewReapExpiredBucketsUseCase(
	bucketInstanceRepo provisioning.BucketInstanceRepository,
	recorder JobRecorder,
	pageSize int,
	logger logger.Interface,
) *ReapExpiredBucketsUseCase {
	if pageSize <= 0 {
		pageSize = DefaultReaperPageSize
	}
	return &ReapExpiredBucketsUseCase{
		bucketInstanceRepo: bucketInstanceRepo,
		recorder:           recorderOrNoop(recorder),
		pageSize:           pageSize,
		logger:             logger,
	}
}

// Execute deletes page after page until no expired bucket is left and returns the total.
// The first page is re-queried every time since deleted rows leave the result set.
func (uc *ReapExpiredBucketsUseCase) Execute(ctx context.Context) (total int, err error) {
	started := time.Now()
	cutoff := biztime.StartOfDayUTC(biztime.Now())

	defer func() {
		uc.recorder.ObserveRun(metrics.JobReaper, started, err)
		uc.recorder.AddItems(metrics.JobReaper, metrics.OutcomeDeleted, total)
	}()

	uc.logger.Infow("expired bucket cleanup started", "cutoff", cutoff)

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		ids, err := uc.bucketInstanceRepo.FindIDsExpiredBefore(ctx, cutoff, uc.pageSize)
		if err != nil {
			return total, fmt.Errorf("failed to find expired buckets: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		deleted, err := uc.bucketInstanceRepo.DeleteByIDs(ctx, ids)
		if err != nil {
			return total, fmt.Errorf("failed to delete expired buckets: %w", err)
		}
		total += int(deleted)

		uc.logger.Debugw("expired bucket page deleted", "selected", len(ids), "deleted", deleted, "total", total)

		if deleted == 0 {
			// the selected rows are gone already; another pass would select them again
			break
		}
	}

	uc.logger.Infow("expired bucket cleanup completed",
		"deleted", total,
		"duration", time.Since(started),
	)
	return total, nil
}
