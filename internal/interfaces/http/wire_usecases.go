package http

import (
	"github.com/axonect/quotacycle/internal/application/provisioning/usecases"
	"github.com/axonect/quotacycle/internal/shared/db"
)

type allUseCases struct {
	renewal       *usecases.RenewRecurringServicesUseCase
	reaper        *usecases.ReapExpiredBucketsUseCase
	notification  *usecases.SendExpiryNotificationsUseCase
	listFailures  *usecases.ListFailuresUseCase
	retryable     *usecases.ListRetryableFailuresUseCase
	updateFailure *usecases.UpdateFailureStatusUseCase
	manageCache   *usecases.ManageCacheUseCase
}

func (c *Container) initUseCases() {
	r := c.repos
	txManager := db.NewTransactionManager(c.db)
	log := c.log.Named("provisioning")

	loader := usecases.NewBatchLoader(r.subscriberRepo, r.planRepo, r.planToBucketRepo, r.bucketRepo, r.qosRepo, r.bucketInstanceRepo, log)
	provisioner := usecases.NewCycleProvisioner(txManager, r.serviceRepo, r.bucketInstanceRepo, c.sessionCache, c.metrics, log)
	failures := usecases.NewFailureRecorder(txManager, r.failureRepo, log)

	// a nil *RedisReferenceCache must not leak into the interface as a non-nil value
	var references usecases.ReferenceCacheAdmin
	if c.referenceCache != nil {
		references = c.referenceCache
	}

	c.ucs = &allUseCases{
		renewal:       usecases.NewRenewRecurringServicesUseCase(r.serviceRepo, loader, provisioner, failures, c.metrics, c.cfg.Renewal.PageSize, log),
		reaper:        usecases.NewReapExpiredBucketsUseCase(r.bucketInstanceRepo, c.metrics, c.cfg.Reaper.PageSize, log),
		notification:  usecases.NewSendExpiryNotificationsUseCase(r.templateRepo, r.bucketInstanceRepo, r.serviceRepo, c.publisher, c.metrics, c.cfg.Notification.PageSize, c.log.Named("notification")),
		listFailures:  usecases.NewListFailuresUseCase(r.failureRepo, log),
		retryable:     usecases.NewListRetryableFailuresUseCase(r.failureRepo, log),
		updateFailure: usecases.NewUpdateFailureStatusUseCase(txManager, r.failureRepo, log),
		manageCache:   usecases.NewManageCacheUseCase(references, c.sessionCache, c.log.Named("cache")),
	}
}
