package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/domain/session"
	"github.com/axonect/quotacycle/internal/infrastructure/cache"
	"github.com/axonect/quotacycle/internal/infrastructure/metrics"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/infrastructure/repository"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/db"
	apperrors "github.com/axonect/quotacycle/internal/shared/errors"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// renewalEnv wires the renewal job against sqlite and miniredis.
type renewalEnv struct {
	db       *gorm.DB
	redis    *redis.Client
	mr       *miniredis.Miniredis
	recorder *countingRecorder
	uc       *RenewRecurringServicesUseCase
}

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, biztime.Location())
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}

func newRenewalEnv(t *testing.T, pageSize int) *renewalEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	log := logger.NewNopLogger()
	txManager := db.NewTransactionManager(gdb)
	serviceRepo := repository.NewServiceInstanceRepository(gdb, log)
	bucketInstanceRepo := repository.NewBucketInstanceRepository(gdb, log)
	rec := newCountingRecorder()

	loader := NewBatchLoader(
		repository.NewSubscriberRepository(gdb),
		repository.NewPlanRepository(gdb),
		repository.NewPlanToBucketRepository(gdb),
		repository.NewBucketRepository(gdb),
		repository.NewQOSProfileRepository(gdb),
		bucketInstanceRepo,
		log,
	)
	sessions := cache.NewRedisSessionCache(client, cache.SessionCacheOptions{}, log)
	provisioner := NewCycleProvisioner(txManager, serviceRepo, bucketInstanceRepo, sessions, rec, log)
	failures := NewFailureRecorder(txManager, repository.NewProcessingFailureRepository(gdb), log)

	return &renewalEnv{
		db:       gdb,
		redis:    client,
		mr:       mr,
		recorder: rec,
		uc:       NewRenewRecurringServicesUseCase(serviceRepo, loader, provisioner, failures, rec, pageSize, log),
	}
}

// seedCatalog creates QoS 1, bucket DATA-DAY and a monthly plan whose single template carries
// forward with maxCarryForward 500 and totalCarryForward 800.
func (e *renewalEnv) seedCatalog(t *testing.T) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.QOSProfileModel{ID: 1, BNGCode: "BNG-10M", QOSProfileName: "10M"}).Error)
	require.NoError(t, e.db.Create(&models.BucketModel{BucketID: "DATA-DAY", BucketName: "Day data", BucketType: "DATA", QOSID: 1, Priority: 1, TimeWindow: "00-24"}).Error)
	require.NoError(t, e.db.Create(&models.PlanModel{PlanID: "PLAN-MONTHLY", PlanName: "Monthly 300", PlanType: "PREPAID", RecurringFlag: true, RecurringPeriod: "MONTHLY", Status: "ACTIVE"}).Error)
	require.NoError(t, e.db.Create(&models.PlanToBucketModel{
		PlanID:               "PLAN-MONTHLY",
		BucketID:             "DATA-DAY",
		InitialQuota:         300,
		CarryForward:         true,
		MaxCarryForward:      500,
		TotalCarryForward:    800,
		CarryForwardValidity: 60,
	}).Error)
}

func (e *renewalEnv) addSubscriber(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.SubscriberModel{UserID: "U-" + username, UserName: username, GroupID: "1", Billing: "3", Status: "ACTIVE"}).Error)
}

func (e *renewalEnv) addService(t *testing.T, id int64, username, planID string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.ServiceInstanceModel{
		ID:                 id,
		PlanID:             planID,
		PlanName:           "Monthly 300",
		PlanType:           "PREPAID",
		RecurringFlag:      true,
		Username:           username,
		NextCycleStartDate: utcPtr(localDate(2025, 2, 15)),
		ServiceStartDate:   utcPtr(localDate(2025, 1, 15)),
		ExpiryDate:         localDate(2025, 12, 31).UTC(),
		Status:             "ACTIVE",
	}).Error)
}

func (e *renewalEnv) addBucket(t *testing.T, id, serviceID int64, bucketType string, balance int64, expiration time.Time) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.BucketInstanceModel{
		ID:             id,
		BucketID:       "DATA-DAY",
		ServiceID:      serviceID,
		BucketType:     bucketType,
		InitialBalance: balance,
		CurrentBalance: balance,
		Expiration:     expiration.UTC(),
	}).Error)
}

func (e *renewalEnv) buckets(t *testing.T, serviceID int64, bucketType string) []models.BucketInstanceModel {
	t.Helper()
	var out []models.BucketInstanceModel
	require.NoError(t, e.db.Where("service_id = ? AND bucket_type = ?", serviceID, bucketType).
		Order("expiration ASC, id ASC").Find(&out).Error)
	return out
}

func (e *renewalEnv) failures(t *testing.T) []models.ProcessingFailureModel {
	t.Helper()
	var out []models.ProcessingFailureModel
	require.NoError(t, e.db.Order("id ASC").Find(&out).Error)
	return out
}

func balances(list []models.BucketInstanceModel) []int64 {
	out := make([]int64, 0, len(list))
	for _, b := range list {
		out = append(out, b.CurrentBalance)
	}
	return out
}

func TestRenewRecurringServices_CarryForwardTrimsToCap(t *testing.T) {
	pinClock(t, time.Date(2025, 2, 14, 0, 30, 0, 0, biztime.Location()))
	env := newRenewalEnv(t, 10)
	env.seedCatalog(t)
	env.addSubscriber(t, "alice")
	env.addService(t, 100, "alice", "PLAN-MONTHLY")

	env.addBucket(t, 1, 100, "DATA", 400, localDate(2025, 2, 14))
	env.addBucket(t, 2, 100, provisioning.BucketTypeCarryForward, 300, localDate(2025, 3, 1))
	env.addBucket(t, 3, 100, provisioning.BucketTypeCarryForward, 250, localDate(2025, 3, 20))

	require.NoError(t, env.mr.Set("user:alice", `{"userName":"alice","groupId":"1","balance":[],"sessions":[]}`))

	result, err := env.uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.NotEmpty(t, result.BatchID)

	cf := env.buckets(t, 100, provisioning.BucketTypeCarryForward)
	assert.Equal(t, []int64{150, 250, 400}, balances(cf))
	assert.Equal(t, localDate(2025, 4, 16).UTC(), cf[2].Expiration.UTC())

	fresh := env.buckets(t, 100, "DATA")
	require.Len(t, fresh, 2)
	assert.Equal(t, int64(300), fresh[1].CurrentBalance)

	var svc models.ServiceInstanceModel
	require.NoError(t, env.db.First(&svc, 100).Error)
	require.NotNil(t, svc.NextCycleStartDate)
	assert.Equal(t, localDate(2025, 3, 15).UTC(), svc.NextCycleStartDate.UTC())
	assert.Equal(t, localDate(2025, 3, 14).UTC(), svc.ServiceCycleEndDate.UTC())

	raw, err := env.mr.Get("user:alice")
	require.NoError(t, err)
	var doc session.UserSessionData
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Len(t, doc.Balance, 2)

	assert.Empty(t, env.failures(t))
	assert.Equal(t, 1, env.recorder.items[metrics.JobRenewal+"/"+metrics.OutcomeSucceeded])
}

func TestRenewRecurringServices_RecordLevelFailures(t *testing.T) {
	pinClock(t, time.Date(2025, 2, 14, 0, 30, 0, 0, biztime.Location()))
	env := newRenewalEnv(t, 2)
	env.seedCatalog(t)
	require.NoError(t, env.db.Create(&models.PlanModel{PlanID: "PLAN-BROKEN", PlanName: "Broken", RecurringFlag: true}).Error)
	require.NoError(t, env.db.Create(&models.PlanToBucketModel{PlanID: "PLAN-BROKEN", BucketID: "NO-SUCH", InitialQuota: 10}).Error)
	env.addSubscriber(t, "alice")
	env.addSubscriber(t, "bob")

	env.addService(t, 100, "alice", "PLAN-GONE")
	env.addService(t, 101, "ghost", "PLAN-MONTHLY")
	env.addService(t, 102, "bob", "PLAN-BROKEN")
	env.addBucket(t, 1, 102, "DATA", 50, localDate(2025, 2, 14))
	env.addService(t, 103, "bob", "PLAN-MONTHLY")
	env.addBucket(t, 2, 103, "DATA", 0, localDate(2025, 2, 14))

	result, err := env.uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 3, result.Failed)

	rows := env.failures(t)
	require.Len(t, rows, 3)
	byService := map[int64]models.ProcessingFailureModel{}
	for _, r := range rows {
		byService[r.ServiceInstanceID] = r
		assert.Equal(t, result.BatchID, r.BatchID)
		assert.Equal(t, string(provisioning.StatusFailed), r.ProcessingStatus)
	}

	assert.Equal(t, string(apperrors.ErrorTypeNotFound), byService[100].ErrorType)
	assert.Contains(t, byService[100].ErrorMessage, "plan not found")
	assert.Contains(t, byService[101].ErrorMessage, "user not found")
	assert.Equal(t, string(apperrors.ErrorTypePolicyConflict), byService[102].ErrorType)
	assert.Contains(t, string(byService[102].AdditionalInfo), "2025-02-15")

	t.Run("failed records keep their cycle", func(t *testing.T) {
		for _, id := range []int64{100, 101, 102} {
			var svc models.ServiceInstanceModel
			require.NoError(t, env.db.First(&svc, id).Error)
			assert.Equal(t, localDate(2025, 2, 15).UTC(), svc.NextCycleStartDate.UTC(), "service %d", id)
		}
		assert.Len(t, env.buckets(t, 102, "DATA"), 1)
	})

	t.Run("zero balance carries nothing forward", func(t *testing.T) {
		assert.Empty(t, env.buckets(t, 103, provisioning.BucketTypeCarryForward))
		assert.Len(t, env.buckets(t, 103, "DATA"), 2)
	})
}

func TestRenewRecurringServices_NoPreviousBucketIsNotAFailure(t *testing.T) {
	pinClock(t, time.Date(2025, 2, 14, 0, 30, 0, 0, biztime.Location()))
	env := newRenewalEnv(t, 10)
	env.seedCatalog(t)
	env.addSubscriber(t, "alice")
	env.addService(t, 100, "alice", "PLAN-MONTHLY")
	env.addBucket(t, 1, 100, provisioning.BucketTypeCarryForward, 80, localDate(2025, 3, 1))

	result, err := env.uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Empty(t, env.failures(t))
	assert.Equal(t, []int64{80}, balances(env.buckets(t, 100, provisioning.BucketTypeCarryForward)))
	assert.Len(t, env.buckets(t, 100, "DATA"), 1)
}

// A renewed service leaves the due window, so a second run on the same day finds nothing.
// Nothing else guards against duplicates: once the row is due again the buckets are
// provisioned a second time.
func TestRenewRecurringServices_RerunIsNotIdempotent(t *testing.T) {
	pinClock(t, time.Date(2025, 2, 14, 0, 30, 0, 0, biztime.Location()))
	env := newRenewalEnv(t, 10)
	env.seedCatalog(t)
	env.addSubscriber(t, "alice")
	env.addService(t, 100, "alice", "PLAN-MONTHLY")
	env.addBucket(t, 1, 100, "DATA", 200, localDate(2025, 2, 14))
	ctx := context.Background()

	_, err := env.uc.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, env.buckets(t, 100, "DATA"), 2)
	assert.Len(t, env.buckets(t, 100, provisioning.BucketTypeCarryForward), 1)

	again, err := env.uc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Processed)
	assert.Len(t, env.buckets(t, 100, "DATA"), 2)

	require.NoError(t, env.db.Model(&models.ServiceInstanceModel{ID: 100}).
		Update("next_cycle_start_date", localDate(2025, 2, 15).UTC()).Error)

	third, err := env.uc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Succeeded)
	assert.Len(t, env.buckets(t, 100, "DATA"), 3)
	assert.Len(t, env.buckets(t, 100, provisioning.BucketTypeCarryForward), 2)
}

func TestRenewRecurringServices_SessionCacheOutageDoesNotFailRecord(t *testing.T) {
	pinClock(t, time.Date(2025, 2, 14, 0, 30, 0, 0, biztime.Location()))
	env := newRenewalEnv(t, 10)
	env.seedCatalog(t)
	env.addSubscriber(t, "alice")
	env.addService(t, 100, "alice", "PLAN-MONTHLY")
	env.addBucket(t, 1, 100, "DATA", 200, localDate(2025, 2, 14))
	env.mr.SetError("ERR simulated outage")

	result, err := env.uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, env.recorder.syncErrors["get"])
	assert.Empty(t, env.failures(t))
}

func TestRenewRecurringServices_StopsWhenRunDeadlinePasses(t *testing.T) {
	pinClock(t, time.Date(2025, 2, 14, 0, 30, 0, 0, biztime.Location()))
	env := newRenewalEnv(t, 10)
	env.seedCatalog(t)
	env.addSubscriber(t, "alice")
	for id := int64(100); id < 103; id++ {
		env.addService(t, id, "alice", "PLAN-MONTHLY")
		env.addBucket(t, id, id, "DATA", 200, localDate(2025, 2, 14))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, env.db.Callback().Create().After("gorm:create").Register("test:deadline", func(tx *gorm.DB) {
		if tx.Statement.Table == (models.BucketInstanceModel{}).TableName() {
			cancel()
		}
	}))

	result, err := env.uc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Failed)
	assert.LessOrEqual(t, result.Processed, 1)
	assert.Empty(t, env.failures(t))

	for _, id := range []int64{101, 102} {
		var svc models.ServiceInstanceModel
		require.NoError(t, env.db.First(&svc, id).Error)
		assert.Equal(t, localDate(2025, 2, 15).UTC(), svc.NextCycleStartDate.UTC(), "service %d", id)
	}
}
