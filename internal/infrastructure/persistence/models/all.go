package models

// All lists every model managed by AutoMigrate, parents before children.
func All() []any {
	return []any{
		&QOSProfileModel{},
		&BucketModel{},
		&PlanModel{},
		&PlanToBucketModel{},
		&SubscriberModel{},
		&ServiceInstanceModel{},
		&BucketInstanceModel{},
		&ProcessingFailureModel{},
		&NotificationTemplateModel{},
	}
}
