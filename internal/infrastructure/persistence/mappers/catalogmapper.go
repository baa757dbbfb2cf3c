package mappers

import (
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
)

// Reference data has no invariants of its own, so these are plain field copies.

func PlanToEntity(m *models.PlanModel) *provisioning.Plan {
	return &provisioning.Plan{
		ID:              m.ID,
		PlanID:          m.PlanID,
		PlanName:        m.PlanName,
		PlanType:        m.PlanType,
		RecurringFlag:   m.RecurringFlag,
		RecurringPeriod: m.RecurringPeriod,
		Status:          m.Status,
	}
}

func PlanToModel(p *provisioning.Plan) *models.PlanModel {
	return &models.PlanModel{
		ID:              p.ID,
		PlanID:          p.PlanID,
		PlanName:        p.PlanName,
		PlanType:        p.PlanType,
		RecurringFlag:   p.RecurringFlag,
		RecurringPeriod: p.RecurringPeriod,
		Status:          p.Status,
	}
}

func PlanToBucketToEntity(m *models.PlanToBucketModel) *provisioning.PlanToBucket {
	return &provisioning.PlanToBucket{
		ID:                     m.ID,
		PlanID:                 m.PlanID,
		BucketID:               m.BucketID,
		InitialQuota:           m.InitialQuota,
		CarryForward:           m.CarryForward,
		MaxCarryForward:        m.MaxCarryForward,
		TotalCarryForward:      m.TotalCarryForward,
		CarryForwardValidity:   m.CarryForwardValidity,
		ConsumptionLimit:       m.ConsumptionLimit,
		ConsumptionLimitWindow: m.ConsumptionLimitWindow,
	}
}

func PlanToBucketToModel(p *provisioning.PlanToBucket) *models.PlanToBucketModel {
	return &models.PlanToBucketModel{
		ID:                     p.ID,
		PlanID:                 p.PlanID,
		BucketID:               p.BucketID,
		InitialQuota:           p.InitialQuota,
		CarryForward:           p.CarryForward,
		MaxCarryForward:        p.MaxCarryForward,
		TotalCarryForward:      p.TotalCarryForward,
		CarryForwardValidity:   p.CarryForwardValidity,
		ConsumptionLimit:       p.ConsumptionLimit,
		ConsumptionLimitWindow: p.ConsumptionLimitWindow,
	}
}

func BucketToEntity(m *models.BucketModel) *provisioning.Bucket {
	return &provisioning.Bucket{
		BucketID:   m.BucketID,
		BucketName: m.BucketName,
		BucketType: m.BucketType,
		QOSID:      m.QOSID,
		Priority:   m.Priority,
		TimeWindow: m.TimeWindow,
	}
}

func BucketToModel(b *provisioning.Bucket) *models.BucketModel {
	return &models.BucketModel{
		BucketID:   b.BucketID,
		BucketName: b.BucketName,
		BucketType: b.BucketType,
		QOSID:      b.QOSID,
		Priority:   b.Priority,
		TimeWindow: b.TimeWindow,
	}
}

func QOSProfileToEntity(m *models.QOSProfileModel) *provisioning.QOSProfile {
	return &provisioning.QOSProfile{
		ID:        m.ID,
		BNGCode:   m.BNGCode,
		Name:      m.QOSProfileName,
		UpLink:    m.UpLink,
		DownLink:  m.DownLink,
		IsDefault: m.IsDefault,
	}
}

func QOSProfileToModel(q *provisioning.QOSProfile) *models.QOSProfileModel {
	return &models.QOSProfileModel{
		ID:             q.ID,
		BNGCode:        q.BNGCode,
		QOSProfileName: q.Name,
		UpLink:         q.UpLink,
		DownLink:       q.DownLink,
		IsDefault:      q.IsDefault,
	}
}

func SubscriberToEntity(m *models.SubscriberModel) *provisioning.Subscriber {
	return &provisioning.Subscriber{
		UserID:         m.UserID,
		UserName:       m.UserName,
		Billing:        m.Billing,
		GroupID:        m.GroupID,
		Concurrency:    m.Concurrency,
		SessionTimeout: m.SessionTimeout,
		Status:         m.Status,
	}
}

func SubscriberToModel(s *provisioning.Subscriber) *models.SubscriberModel {
	return &models.SubscriberModel{
		UserID:         s.UserID,
		UserName:       s.UserName,
		Billing:        s.Billing,
		GroupID:        s.GroupID,
		Concurrency:    s.Concurrency,
		SessionTimeout: s.SessionTimeout,
		Status:         s.Status,
	}
}
