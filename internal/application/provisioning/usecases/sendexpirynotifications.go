package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/metrics"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/logger"
	"github.com/axonect/quotacycle/internal/shared/mapper"
	"github.com/axonect/quotacycle/internal/shared/utils/setutil"
)

const DefaultNotificationPageSize = 500

// SendExpiryNotificationsUseCase warns subscribers about buckets that expire in N days,
// one pass per EXPIRE template.
type SendExpiryNotificationsUseCase struct {
	templateRepo       notification.NotificationTemplateRepository
	bucketInstanceRepo provisioning.BucketInstanceRepository
	serviceRepo        provisioning.ServiceInstanceRepository
	publisher          notification.Publisher
	recorder           JobRecorder
	pageSize           int
	logger             logger.Interface
}

func NewSendExpiryNotificationsUseCase(
	templateRepo notification.NotificationTemplateRepository,
	bucketInstanceRepo provisioning.BucketInstanceRepository,
	serviceRepo provisioning.ServiceInstanceRepository,
	publisher notification.Publisher,
	recorder JobRecorder,
	pageSize int,
	logger logger.Interface,
) *SendExpiryNotificationsUseCase {
	if pageSize <= 0 {
		pageSize = DefaultNotificationPageSize
	}
	return &SendExpiryNotificationsUseCase{
		templateRepo:       templateRepo,
		bucketInstanceRepo: bucketInstanceRepo,
		serviceRepo:        serviceRepo,
		publisher:          publisher,
		recorder:           recorderOrNoop(recorder),
		pageSize:           pageSize,
		logger:             logger,
	}
}

type notifyCounts struct {
	published int
	skipped   int
	failed    int
}

// Execute returns the number of notifications published.
func (uc *SendExpiryNotificationsUseCase) Execute(ctx context.Context) (published int, err error) {
	started := time.Now()
	var counts notifyCounts

	defer func() {
		published = counts.published
		uc.recorder.ObserveRun(metrics.JobNotification, started, err)
		uc.recorder.AddItems(metrics.JobNotification, metrics.OutcomePublished, counts.published)
		uc.recorder.AddItems(metrics.JobNotification, metrics.OutcomeSkipped, counts.skipped)
		uc.recorder.AddItems(metrics.JobNotification, metrics.OutcomeFailed, counts.failed)
		uc.logger.Infow("expiry notifications finished",
			"published", counts.published,
			"skipped", counts.skipped,
			"failed", counts.failed,
			"duration", time.Since(started),
			"error", err,
		)
	}()

	templates, err := uc.templateRepo.ListByMessageType(ctx, notification.MessageTypeExpire)
	if err != nil {
		return 0, fmt.Errorf("failed to load expiry templates: %w", err)
	}
	if len(templates) == 0 {
		uc.logger.Infow("no expiry templates configured")
		return 0, nil
	}

	today := biztime.StartOfDay(biztime.Now())
	for _, tpl := range templates {
		if tpl.DaysToExpire() == nil {
			uc.logger.Debugw("expiry template without days to expire skipped", "template_id", tpl.ID())
			continue
		}
		if err := uc.notifyForTemplate(ctx, tpl, today, &counts); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

func (uc *SendExpiryNotificationsUseCase) notifyForTemplate(ctx context.Context, tpl *notification.NotificationTemplate, today time.Time, counts *notifyCounts) error {
	days := *tpl.DaysToExpire()
	from, to := biztime.DayWindow(biztime.AddDays(today, days))

	uc.logger.Infow("processing expiry template",
		"template_id", tpl.ID(),
		"days_to_expire", days,
		"target_date", biztime.FormatDate(from),
	)

	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		buckets, err := uc.bucketInstanceRepo.FindExpiringBetween(ctx, from.UTC(), to.UTC(), afterID, uc.pageSize)
		if err != nil {
			return fmt.Errorf("failed to find buckets expiring on %s: %w", biztime.FormatDate(from), err)
		}
		if len(buckets) == 0 {
			return nil
		}
		afterID = buckets[len(buckets)-1].ID()

		serviceIDs := setutil.Collect(buckets, (*provisioning.BucketInstance).ServiceID).ToSlice()
		services, err := uc.serviceRepo.GetByIDs(ctx, serviceIDs)
		if err != nil {
			return fmt.Errorf("failed to load service instances: %w", err)
		}
		byID := mapper.IndexBy(services, (*provisioning.ServiceInstance).ID)

		for _, b := range buckets {
			svc := byID[b.ServiceID()]
			if svc == nil {
				counts.skipped++
				uc.logger.Debugw("bucket without service instance skipped",
					"bucket_instance_id", b.ID(),
					"service_id", b.ServiceID(),
				)
				continue
			}

			n := uc.build(tpl, svc, b, days)
			if err := uc.publisher.Publish(ctx, n); err != nil {
				counts.failed++
				uc.logger.Errorw("failed to publish expiry notification",
					"username", n.Username,
					"bucket_instance_id", n.BucketInstanceID,
					"template_id", n.TemplateID,
					"error", err,
				)
				continue
			}
			counts.published++
		}

		if len(buckets) < uc.pageSize {
			return nil
		}
	}
}

func (uc *SendExpiryNotificationsUseCase) build(tpl *notification.NotificationTemplate, svc *provisioning.ServiceInstance, b *provisioning.BucketInstance, days int) notification.BucketExpiryNotification {
	planName := svc.PlanName()
	if planName == "" {
		planName = notification.UnknownPlanName
	}
	return notification.BucketExpiryNotification{
		Username:         svc.Username(),
		ServiceID:        svc.ID(),
		BucketInstanceID: b.ID(),
		BucketID:         b.BucketID(),
		PlanName:         planName,
		DateOfExpiry:     b.Expiration(),
		DaysToExpire:     days,
		Message:          tpl.Render(planName, b.Expiration(), days),
		MessageType:      string(tpl.MessageType()),
		TemplateID:       tpl.ID(),
		NotificationTime: biztime.Now(),
		CurrentBalance:   b.CurrentBalance(),
		InitialBalance:   b.InitialBalance(),
	}
}
