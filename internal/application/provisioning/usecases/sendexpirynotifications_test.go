package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/metrics"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

func expiryTemplate(t *testing.T, id int64, days *int, content string) *notification.NotificationTemplate {
	t.Helper()
	tpl, err := notification.ReconstructNotificationTemplate(id, 1, notification.MessageTypeExpire, content, days, nil, time.Time{}, time.Time{})
	require.NoError(t, err)
	return tpl
}

func serviceFixture(t *testing.T, id int64, username, planName string) *provisioning.ServiceInstance {
	t.Helper()
	svc, err := provisioning.ReconstructServiceInstance(id, "PLAN-MONTHLY", planName, "PREPAID", username, true,
		nil, nil, nil, nil, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), "ACTIVE", false, "", time.Time{}, time.Time{})
	require.NoError(t, err)
	return svc
}

func bucketFixture(id, serviceID int64, expiration time.Time) *provisioning.BucketInstance {
	return provisioning.ReconstructBucketInstance(id, "DATA-DAY", serviceID, "DATA", "BNG-1",
		1, 300, 120, 180, false, 0, 0, 0, "00-24", 0, "", expiration, time.Time{})
}

func TestSendExpiryNotifications_PublishesPerBucket(t *testing.T) {
	now := time.Date(2025, 2, 14, 9, 0, 0, 0, biztime.Location())
	pinClock(t, now)
	three := 3
	from := time.Date(2025, 2, 17, 0, 0, 0, 0, biztime.Location())
	to := from.AddDate(0, 0, 1)
	expiry := from.Add(23*time.Hour + 59*time.Minute)

	templates := new(mockNotificationTemplateRepository)
	templates.On("ListByMessageType", mock.Anything, notification.MessageTypeExpire).Return([]*notification.NotificationTemplate{
		expiryTemplate(t, 1, nil, "ignored"),
		expiryTemplate(t, 7, &three, "{PLAN_NAME} expires on {DATE_OF_EXPIRY} ({DAYS_TO_EXPIRE} days)"),
	}, nil)

	buckets := new(mockBucketInstanceRepository)
	buckets.On("FindExpiringBetween", mock.Anything, from.UTC(), to.UTC(), int64(0), 2).
		Return([]*provisioning.BucketInstance{bucketFixture(11, 100, expiry), bucketFixture(12, 200, expiry)}, nil).Once()
	buckets.On("FindExpiringBetween", mock.Anything, from.UTC(), to.UTC(), int64(12), 2).
		Return([]*provisioning.BucketInstance{bucketFixture(13, 300, expiry)}, nil).Once()

	services := new(mockServiceInstanceRepository)
	services.On("GetByIDs", mock.Anything, []int64{100, 200}).
		Return([]*provisioning.ServiceInstance{serviceFixture(t, 100, "alice", "Monthly 300")}, nil)
	services.On("GetByIDs", mock.Anything, []int64{300}).
		Return([]*provisioning.ServiceInstance{serviceFixture(t, 300, "carol", "")}, nil)

	var published []notification.BucketExpiryNotification
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = append(published, args.Get(1).(notification.BucketExpiryNotification))
	}).Return(nil)

	rec := newCountingRecorder()
	uc := NewSendExpiryNotificationsUseCase(templates, buckets, services, publisher, rec, 2, logger.NewNopLogger())

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, published, 2)

	assert.Equal(t, "alice", published[0].Username)
	assert.Equal(t, "Monthly 300 expires on 2025-02-17 (3 days)", published[0].Message)
	assert.Equal(t, int64(7), published[0].TemplateID)
	assert.Equal(t, int64(120), published[0].CurrentBalance)
	assert.Equal(t, "EXPIRE", published[0].MessageType)

	assert.Equal(t, "carol", published[1].Username)
	assert.Equal(t, "Unknown Plan expires on 2025-02-17 (3 days)", published[1].Message)

	assert.Equal(t, 2, rec.items[metrics.JobNotification+"/"+metrics.OutcomePublished])
	assert.Equal(t, 1, rec.items[metrics.JobNotification+"/"+metrics.OutcomeSkipped])
	buckets.AssertExpectations(t)
}

func TestSendExpiryNotifications_PublishErrorsDoNotStopRun(t *testing.T) {
	one := 1
	templates := new(mockNotificationTemplateRepository)
	templates.On("ListByMessageType", mock.Anything, notification.MessageTypeExpire).
		Return([]*notification.NotificationTemplate{expiryTemplate(t, 2, &one, "")}, nil)

	expiry := biztime.AddDays(biztime.Now(), 1)
	buckets := new(mockBucketInstanceRepository)
	buckets.On("FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything, int64(0), 10).
		Return([]*provisioning.BucketInstance{bucketFixture(1, 100, expiry), bucketFixture(2, 100, expiry)}, nil).Once()

	services := new(mockServiceInstanceRepository)
	services.On("GetByIDs", mock.Anything, []int64{100}).
		Return([]*provisioning.ServiceInstance{serviceFixture(t, 100, "alice", "Monthly 300")}, nil)

	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(n notification.BucketExpiryNotification) bool {
		return n.BucketInstanceID == 1
	})).Return(errors.New("broker unavailable"))
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(n notification.BucketExpiryNotification) bool {
		return n.BucketInstanceID == 2 && n.Message == notification.DefaultExpiryMessage
	})).Return(nil)

	rec := newCountingRecorder()
	uc := NewSendExpiryNotificationsUseCase(templates, buckets, services, publisher, rec, 10, logger.NewNopLogger())

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, rec.items[metrics.JobNotification+"/"+metrics.OutcomeFailed])
	publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestSendExpiryNotifications_NoTemplates(t *testing.T) {
	templates := new(mockNotificationTemplateRepository)
	templates.On("ListByMessageType", mock.Anything, notification.MessageTypeExpire).Return(nil, nil)

	buckets := new(mockBucketInstanceRepository)
	uc := NewSendExpiryNotificationsUseCase(templates, buckets, new(mockServiceInstanceRepository), new(mockPublisher), nil, 0, logger.NewNopLogger())

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	buckets.AssertNotCalled(t, "FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
