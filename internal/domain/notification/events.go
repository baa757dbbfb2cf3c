package notification

import (
	"context"
	"time"
)

// BucketExpiryNotification is published once per bucket approaching expiry.
type BucketExpiryNotification struct {
	Username         string    `json:"username"`
	ServiceID        int64     `json:"service_id"`
	BucketInstanceID int64     `json:"bucket_instance_id"`
	BucketID         string    `json:"bucket_id"`
	PlanName         string    `json:"plan_name"`
	DateOfExpiry     time.Time `json:"date_of_expiry"`
	DaysToExpire     int       `json:"days_to_expire"`
	Message          string    `json:"message"`
	MessageType      string    `json:"message_type"`
	TemplateID       int64     `json:"template_id"`
	NotificationTime time.Time `json:"notification_time"`
	CurrentBalance   int64     `json:"current_balance"`
	InitialBalance   int64     `json:"initial_balance"`
}

// Publisher delivers expiry notifications to the messaging transport.
type Publisher interface {
	Publish(ctx context.Context, n BucketExpiryNotification) error
}
