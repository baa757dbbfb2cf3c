package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	apperrors "github.com/axonect/quotacycle/internal/shared/errors"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// ProvisionOutcome reports what one service instance received for its new cycle.
type ProvisionOutcome struct {
	ServiceID      int64
	Created        int
	CarriedForward int
	Trimmed        int
	CacheSynced    bool
}

// CycleProvisioner advances one service instance into its next cycle and provisions its
// buckets inside a single transaction, then mirrors the new balances into the session cache.
type CycleProvisioner struct {
	txManager          TransactionManager
	serviceRepo        provisioning.ServiceInstanceRepository
	bucketInstanceRepo provisioning.BucketInstanceRepository
	sessions           SessionStore
	recorder           JobRecorder
	logger             logger.Interface
}

func NewCycleProvisioner(
	txManager TransactionManager,
	serviceRepo provisioning.ServiceInstanceRepository,
	bucketInstanceRepo provisioning.BucketInstanceRepository,
	sessions SessionStore,
	recorder JobRecorder,
	logger logger.Interface,
) *CycleProvisioner {
	return &CycleProvisioner{
		txManager:          txManager,
		serviceRepo:        serviceRepo,
		bucketInstanceRepo: bucketInstanceRepo,
		sessions:           sessions,
		recorder:           recorderOrNoop(recorder),
		logger:             logger,
	}
}

// Provision runs the cycle for svc using the reference data in idx. Returned errors are
// AppErrors classified as not found, policy conflict or internal.
func (p *CycleProvisioner) Provision(ctx context.Context, svc *provisioning.ServiceInstance, idx *PageIndex) (*ProvisionOutcome, error) {
	subscriber := idx.Subscribers[svc.Username()]
	if subscriber == nil {
		return nil, apperrors.NewNotFoundError("user not found", svc.Username())
	}
	plan := idx.Plans[svc.PlanID()]
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found", svc.PlanID())
	}
	if svc.NextCycleStartDate() == nil {
		return nil, apperrors.NewInternalError("failed to advance cycle", provisioning.ErrNoNextCycle.Error())
	}
	cycleStart := *svc.NextCycleStartDate()

	var alloc *provisioning.Allocation
	err := p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := svc.AdvanceCycle(plan, subscriber.Billing); err != nil {
			return apperrors.NewInternalError("failed to advance cycle", err.Error())
		}

		a, err := provisioning.Allocate(svc, idx.Templates[svc.PlanID()], idx.BucketInstances[svc.ID()], idx.Catalog(), cycleStart)
		if err != nil {
			return classifyAllocationError(svc, err)
		}

		if err := p.serviceRepo.Update(ctx, svc); err != nil {
			return apperrors.NewInternalError("failed to update service instance", err.Error())
		}
		if err := p.bucketInstanceRepo.SaveAll(ctx, a.ToSave()); err != nil {
			return apperrors.NewInternalError("failed to save bucket instances", err.Error())
		}
		alloc = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, bucketID := range alloc.MissingPrevious {
		p.logger.Infow("no current bucket to carry forward from",
			"service_id", svc.ID(),
			"bucket_id", bucketID,
		)
	}

	outcome := &ProvisionOutcome{
		ServiceID:      svc.ID(),
		Created:        len(alloc.Created()),
		CarriedForward: len(alloc.CarriedForward),
		Trimmed:        len(alloc.Trimmed),
	}
	outcome.CacheSynced = p.syncSession(ctx, svc, alloc.Created())

	p.logger.Debugw("service instance provisioned",
		"service_id", svc.ID(),
		"username", svc.Username(),
		"created", outcome.Created,
		"carried_forward", outcome.CarriedForward,
		"trimmed", outcome.Trimmed,
		"cache_synced", outcome.CacheSynced,
	)
	return outcome, nil
}

// syncSession appends the new balances to an existing session document. A subscriber
// without a document is skipped. Failures are logged and never fail the record.
func (p *CycleProvisioner) syncSession(ctx context.Context, svc *provisioning.ServiceInstance, created []*provisioning.BucketInstance) bool {
	if p.sessions == nil || len(created) == 0 {
		return false
	}

	data, err := p.sessions.Get(ctx, svc.Username())
	if err != nil {
		p.recorder.CacheSyncError("get")
		p.logger.Warnw("failed to read session cache",
			"username", svc.Username(),
			"service_id", svc.ID(),
			"error", err,
		)
		return false
	}
	if data == nil {
		p.logger.Debugw("no session document, skipping cache sync", "username", svc.Username())
		return false
	}

	data.AppendBalances(svc, created)
	if err := p.sessions.Put(ctx, data); err != nil {
		p.recorder.CacheSyncError("put")
		p.logger.Warnw("failed to write session cache",
			"username", svc.Username(),
			"service_id", svc.ID(),
			"error", err,
		)
		return false
	}
	return true
}

func classifyAllocationError(svc *provisioning.ServiceInstance, err error) error {
	var refErr *provisioning.ReferenceError
	switch {
	case errors.As(err, &refErr):
		return apperrors.NewPolicyConflictError(refErr.Err.Error(), fmt.Sprintf("%s referenced by plan %s", refErr.ID, svc.PlanID()))
	case errors.Is(err, provisioning.ErrNoExistingBuckets):
		return apperrors.NewNotFoundError(err.Error(), fmt.Sprintf("service %d", svc.ID()))
	case errors.Is(err, provisioning.ErrNoTemplates):
		return apperrors.NewNotFoundError(err.Error(), fmt.Sprintf("plan %s", svc.PlanID()))
	default:
		return apperrors.NewInternalError("failed to allocate buckets", err.Error())
	}
}
