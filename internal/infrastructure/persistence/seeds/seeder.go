package seeds

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// Result counts the rows upserted per table.
type Result struct {
	QOSProfiles      int `json:"qos_profiles"`
	Buckets          int `json:"buckets"`
	Plans            int `json:"plans"`
	Templates        int `json:"templates"`
	Subscribers      int `json:"subscribers"`
	ServiceInstances int `json:"service_instances"`
	ExpiryTemplates  int `json:"expiry_templates"`
}

// Seeder upserts a Catalog in one transaction, parents before children.
type Seeder struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSeeder(db *gorm.DB, log logger.Interface) *Seeder {
	return &Seeder{db: db, logger: log.Named("seeder")}
}

func (s *Seeder) Seed(ctx context.Context, catalog *Catalog) (*Result, error) {
	result := &Result{}
	now := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			fn   func(tx *gorm.DB) (int, error)
		}{
			{"qos_profiles", func(tx *gorm.DB) (int, error) { return upsertQOSProfiles(tx, catalog.QOSProfiles) }},
			{"buckets", func(tx *gorm.DB) (int, error) { return upsertBuckets(tx, catalog.Buckets) }},
			{"plans", func(tx *gorm.DB) (int, error) { return upsertPlans(tx, catalog.Plans, now) }},
			{"templates", func(tx *gorm.DB) (int, error) { return upsertTemplates(tx, catalog.Plans, now) }},
			{"subscribers", func(tx *gorm.DB) (int, error) { return upsertSubscribers(tx, catalog.Subscribers, now) }},
			{"service_instances", func(tx *gorm.DB) (int, error) { return upsertServiceInstances(tx, catalog, now) }},
			{"expiry_templates", func(tx *gorm.DB) (int, error) { return upsertExpiryTemplates(tx, catalog.ExpiryTemplates, now) }},
		}

		counts := []*int{
			&result.QOSProfiles, &result.Buckets, &result.Plans, &result.Templates,
			&result.Subscribers, &result.ServiceInstances, &result.ExpiryTemplates,
		}

		for i, step := range steps {
			n, err := step.fn(tx)
			if err != nil {
				return fmt.Errorf("failed to seed %s: %w", step.name, err)
			}
			*counts[i] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("seed completed",
		"qos_profiles", result.QOSProfiles,
		"buckets", result.Buckets,
		"plans", result.Plans,
		"templates", result.Templates,
		"subscribers", result.Subscribers,
		"service_instances", result.ServiceInstances,
		"expiry_templates", result.ExpiryTemplates,
	)
	return result, nil
}

func upsert[T any](tx *gorm.DB, rows []T, conflict clause.OnConflict) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := tx.Clauses(conflict).Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func byColumns(names ...string) clause.OnConflict {
	cols := make([]clause.Column, len(names))
	for i, n := range names {
		cols[i] = clause.Column{Name: n}
	}
	return clause.OnConflict{Columns: cols, UpdateAll: true}
}

func upsertQOSProfiles(tx *gorm.DB, seeds []QOSProfileSeed) (int, error) {
	rows := make([]models.QOSProfileModel, len(seeds))
	for i, q := range seeds {
		rows[i] = models.QOSProfileModel{
			ID:             q.ID,
			BNGCode:        q.BNGCode,
			QOSProfileName: q.Name,
			UpLink:         q.UpLink,
			DownLink:       q.DownLink,
			IsDefault:      q.IsDefault,
		}
	}
	return upsert(tx, rows, byColumns("id"))
}

func upsertBuckets(tx *gorm.DB, seeds []BucketSeed) (int, error) {
	rows := make([]models.BucketModel, len(seeds))
	for i, b := range seeds {
		rows[i] = models.BucketModel{
			BucketID:   b.BucketID,
			BucketName: b.Name,
			BucketType: b.Type,
			QOSID:      b.QOSID,
			Priority:   b.Priority,
			TimeWindow: b.TimeWindow,
		}
	}
	return upsert(tx, rows, byColumns("bucket_id"))
}

func upsertPlans(tx *gorm.DB, seeds []PlanSeed, now time.Time) (int, error) {
	rows := make([]models.PlanModel, len(seeds))
	for i, p := range seeds {
		rows[i] = models.PlanModel{
			PlanID:          p.PlanID,
			PlanName:        p.Name,
			PlanType:        p.Type,
			RecurringFlag:   p.Recurring,
			RecurringPeriod: p.RecurringPeriod,
			Status:          p.Status,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}
	conflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "plan_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_name", "plan_type", "recurring_flag", "recurring_period", "status", "updated_at",
		}),
	}
	return upsert(tx, rows, conflict)
}

// upsertTemplates keys templates by their explicit id; templates without one are appended.
func upsertTemplates(tx *gorm.DB, plans []PlanSeed, now time.Time) (int, error) {
	var keyed, appended []models.PlanToBucketModel
	for _, p := range plans {
		for _, t := range p.Templates {
			row := models.PlanToBucketModel{
				ID:                     t.ID,
				PlanID:                 p.PlanID,
				BucketID:               t.BucketID,
				InitialQuota:           t.InitialQuota,
				CarryForward:           t.CarryForward,
				MaxCarryForward:        t.MaxCarryForward,
				TotalCarryForward:      t.TotalCarryForward,
				CarryForwardValidity:   t.CarryForwardValidity,
				ConsumptionLimit:       t.ConsumptionLimit,
				ConsumptionLimitWindow: t.ConsumptionLimitWindow,
				CreatedAt:              now,
				UpdatedAt:              now,
			}
			if t.ID == 0 {
				appended = append(appended, row)
				continue
			}
			keyed = append(keyed, row)
		}
	}

	n, err := upsert(tx, keyed, byColumns("id"))
	if err != nil {
		return 0, err
	}
	if len(appended) > 0 {
		if err := tx.Create(&appended).Error; err != nil {
			return 0, err
		}
	}
	return n + len(appended), nil
}

func upsertSubscribers(tx *gorm.DB, seeds []SubscriberSeed, now time.Time) (int, error) {
	rows := make([]models.SubscriberModel, len(seeds))
	for i, u := range seeds {
		rows[i] = models.SubscriberModel{
			UserID:         u.UserID,
			UserName:       u.UserName,
			GroupID:        u.GroupID,
			Billing:        u.Billing,
			Concurrency:    u.Concurrency,
			SessionTimeout: u.SessionTimeout,
			Status:         u.Status,
			CreatedDate:    now,
			UpdatedDate:    now,
		}
	}
	return upsert(tx, rows, byColumns("user_id"))
}

// upsertServiceInstances copies plan name and type from the catalog, or from the store when the
// plan is not part of this file.
func upsertServiceInstances(tx *gorm.DB, catalog *Catalog, now time.Time) (int, error) {
	if len(catalog.ServiceInstances) == 0 {
		return 0, nil
	}

	plans := make(map[string]models.PlanModel, len(catalog.Plans))
	for _, p := range catalog.Plans {
		plans[p.PlanID] = models.PlanModel{PlanID: p.PlanID, PlanName: p.Name, PlanType: p.Type}
	}

	rows := make([]models.ServiceInstanceModel, len(catalog.ServiceInstances))
	for i, s := range catalog.ServiceInstances {
		plan, ok := plans[s.PlanID]
		if !ok {
			if err := tx.Where("plan_id = ?", s.PlanID).First(&plan).Error; err != nil {
				return 0, fmt.Errorf("service instance %d references plan %s: %w", s.ID, s.PlanID, err)
			}
			plans[s.PlanID] = plan
		}

		rows[i] = models.ServiceInstanceModel{
			ID:                    s.ID,
			PlanID:                s.PlanID,
			PlanName:              plan.PlanName,
			PlanType:              plan.PlanType,
			RecurringFlag:         s.Recurring,
			Username:              s.Username,
			ServiceCycleStartDate: s.CycleStart.ptr(),
			ServiceCycleEndDate:   s.CycleEnd.ptr(),
			NextCycleStartDate:    s.NextCycleStart.ptr(),
			ServiceStartDate:      s.ServiceStart.ptr(),
			ExpiryDate:            s.Expiry.Time.UTC(),
			Status:                s.Status,
			IsGroup:               s.IsGroup,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
	}
	return upsert(tx, rows, byColumns("id"))
}

func upsertExpiryTemplates(tx *gorm.DB, seeds []ExpiryTemplateSeed, now time.Time) (int, error) {
	rows := make([]models.NotificationTemplateModel, len(seeds))
	for i, t := range seeds {
		messageType := t.MessageType
		if messageType == "" {
			messageType = "EXPIRE"
		}
		rows[i] = models.NotificationTemplateModel{
			ID:              t.ID,
			SuperTemplateID: t.SuperTemplateID,
			MessageType:     messageType,
			MessageContent:  t.Content,
			DaysToExpire:    t.DaysToExpire,
			QuotaPercentage: t.QuotaPercentage,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}
	return upsert(tx, rows, byColumns("id"))
}
