package usecases

import (
	"context"
	"fmt"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/shared/logger"
	"github.com/axonect/quotacycle/internal/shared/mapper"
	"github.com/axonect/quotacycle/internal/shared/utils/setutil"
)

// PageIndex holds everything one page of service instances needs, keyed for lookup.
// It is built once per page and only read afterwards.
type PageIndex struct {
	Subscribers     map[string]*provisioning.Subscriber
	Plans           map[string]*provisioning.Plan
	BucketInstances map[int64][]*provisioning.BucketInstance
	Templates       map[string][]*provisioning.PlanToBucket
	Buckets         map[string]*provisioning.Bucket
	QOSProfiles     map[int64]*provisioning.QOSProfile
}

// Catalog exposes the bucket and QoS maps to the allocation calculator.
func (p *PageIndex) Catalog() provisioning.Catalog {
	return provisioning.Catalog{Buckets: p.Buckets, QOSProfiles: p.QOSProfiles}
}

// BatchLoader bulk-fetches the related rows of a page with one IN query per table.
type BatchLoader struct {
	subscriberRepo     provisioning.SubscriberRepository
	planRepo           provisioning.PlanRepository
	templateRepo       provisioning.PlanToBucketRepository
	bucketRepo         provisioning.BucketRepository
	qosRepo            provisioning.QOSProfileRepository
	bucketInstanceRepo provisioning.BucketInstanceRepository
	logger             logger.Interface
}

func NewBatchLoader(
	subscriberRepo provisioning.SubscriberRepository,
	planRepo provisioning.PlanRepository,
	templateRepo provisioning.PlanToBucketRepository,
	bucketRepo provisioning.BucketRepository,
	qosRepo provisioning.QOSProfileRepository,
	bucketInstanceRepo provisioning.BucketInstanceRepository,
	logger logger.Interface,
) *BatchLoader {
	return &BatchLoader{
		subscriberRepo:     subscriberRepo,
		planRepo:           planRepo,
		templateRepo:       templateRepo,
		bucketRepo:         bucketRepo,
		qosRepo:            qosRepo,
		bucketInstanceRepo: bucketInstanceRepo,
		logger:             logger,
	}
}

func (l *BatchLoader) Load(ctx context.Context, services []*provisioning.ServiceInstance) (*PageIndex, error) {
	usernames := setutil.Collect(services, (*provisioning.ServiceInstance).Username).ToSlice()
	planIDs := setutil.Collect(services, (*provisioning.ServiceInstance).PlanID).ToSlice()
	serviceIDs := setutil.Collect(services, (*provisioning.ServiceInstance).ID).ToSlice()

	subscribers, err := l.subscriberRepo.GetByUserNames(ctx, usernames)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}
	plans, err := l.planRepo.GetByPlanIDs(ctx, planIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}
	instances, err := l.bucketInstanceRepo.GetByServiceIDs(ctx, serviceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load bucket instances: %w", err)
	}
	templates, err := l.templateRepo.GetByPlanIDs(ctx, planIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan templates: %w", err)
	}

	bucketIDs := setutil.Collect(templates, func(t *provisioning.PlanToBucket) string { return t.BucketID }).ToSlice()
	buckets, err := l.bucketRepo.GetByBucketIDs(ctx, bucketIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load buckets: %w", err)
	}

	qosIDs := setutil.Collect(buckets, func(b *provisioning.Bucket) int64 { return b.QOSID }).ToSlice()
	profiles, err := l.qosRepo.GetByIDs(ctx, qosIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load qos profiles: %w", err)
	}

	idx := &PageIndex{
		Subscribers:     mapper.IndexBy(subscribers, func(s *provisioning.Subscriber) string { return s.UserName }),
		Plans:           mapper.IndexBy(plans, func(p *provisioning.Plan) string { return p.PlanID }),
		BucketInstances: mapper.GroupBy(instances, (*provisioning.BucketInstance).ServiceID),
		Templates:       mapper.GroupBy(templates, func(t *provisioning.PlanToBucket) string { return t.PlanID }),
		Buckets:         mapper.IndexBy(buckets, func(b *provisioning.Bucket) string { return b.BucketID }),
		QOSProfiles:     mapper.IndexBy(profiles, func(q *provisioning.QOSProfile) int64 { return q.ID }),
	}

	l.logger.Debugw("page index loaded",
		"services", len(services),
		"subscribers", len(idx.Subscribers),
		"plans", len(idx.Plans),
		"bucket_instances", len(instances),
		"templates", len(templates),
		"buckets", len(idx.Buckets),
		"qos_profiles", len(idx.QOSProfiles),
	)
	return idx, nil
}
