package http

import (
	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/cache"
	"github.com/axonect/quotacycle/internal/infrastructure/repository"
)

// repositories holds the store handles used by the use cases.
// Catalog repositories are wrapped by the reference cache when it is enabled.
type repositories struct {
	serviceRepo        provisioning.ServiceInstanceRepository
	subscriberRepo     provisioning.SubscriberRepository
	planRepo           provisioning.PlanRepository
	planToBucketRepo   provisioning.PlanToBucketRepository
	bucketRepo         provisioning.BucketRepository
	qosRepo            provisioning.QOSProfileRepository
	bucketInstanceRepo provisioning.BucketInstanceRepository
	failureRepo        provisioning.ProcessingFailureRepository
	templateRepo       notification.NotificationTemplateRepository
}

func (c *Container) initRepositories() {
	r := &repositories{
		serviceRepo:        repository.NewServiceInstanceRepository(c.db, c.log),
		subscriberRepo:     repository.NewSubscriberRepository(c.db),
		planRepo:           repository.NewPlanRepository(c.db),
		planToBucketRepo:   repository.NewPlanToBucketRepository(c.db),
		bucketRepo:         repository.NewBucketRepository(c.db),
		qosRepo:            repository.NewQOSProfileRepository(c.db),
		bucketInstanceRepo: repository.NewBucketInstanceRepository(c.db, c.log),
		failureRepo:        repository.NewProcessingFailureRepository(c.db),
		templateRepo:       repository.NewNotificationTemplateRepository(c.db),
	}

	if c.referenceCache != nil {
		r.planRepo = cache.NewCachedPlanRepository(r.planRepo, c.referenceCache)
		r.planToBucketRepo = cache.NewCachedPlanToBucketRepository(r.planToBucketRepo, c.referenceCache)
		r.bucketRepo = cache.NewCachedBucketRepository(r.bucketRepo, c.referenceCache)
		r.qosRepo = cache.NewCachedQOSProfileRepository(r.qosRepo, c.referenceCache)
	}

	c.repos = r
}
