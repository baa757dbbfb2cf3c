package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/axonect/quotacycle/internal/shared/biztime"
)

// MessageType distinguishes expiry templates from quota-threshold templates.
type MessageType string

const (
	MessageTypeExpire MessageType = "EXPIRE"
	MessageTypeQuota  MessageType = "QUOTA"
)

const (
	PlaceholderPlanName     = "{PLAN_NAME}"
	PlaceholderDateOfExpiry = "{DATE_OF_EXPIRY}"
	PlaceholderDaysToExpire = "{DAYS_TO_EXPIRE}"

	DefaultExpiryMessage = "Your plan will expire soon. Please renew to continue services."
	UnknownPlanName      = "Unknown Plan"
)

// NotificationTemplate is a child template of a super template; EXPIRE templates fire
// DaysToExpire days before a bucket expires.
type NotificationTemplate struct {
	id              int64
	superTemplateID int64
	messageType     MessageType
	messageContent  string
	daysToExpire    *int
	quotaPercentage *int
	createdAt       time.Time
	updatedAt       time.Time
}

func ReconstructNotificationTemplate(
	id, superTemplateID int64,
	messageType MessageType,
	messageContent string,
	daysToExpire, quotaPercentage *int,
	createdAt, updatedAt time.Time,
) (*NotificationTemplate, error) {
	if id == 0 {
		return nil, fmt.Errorf("template ID cannot be zero")
	}
	return &NotificationTemplate{
		id:              id,
		superTemplateID: superTemplateID,
		messageType:     messageType,
		messageContent:  messageContent,
		daysToExpire:    daysToExpire,
		quotaPercentage: quotaPercentage,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func (t *NotificationTemplate) ID() int64                { return t.id }
func (t *NotificationTemplate) SuperTemplateID() int64   { return t.superTemplateID }
func (t *NotificationTemplate) MessageType() MessageType { return t.messageType }
func (t *NotificationTemplate) MessageContent() string   { return t.messageContent }
func (t *NotificationTemplate) DaysToExpire() *int       { return t.daysToExpire }
func (t *NotificationTemplate) QuotaPercentage() *int    { return t.quotaPercentage }
func (t *NotificationTemplate) CreatedAt() time.Time     { return t.createdAt }
func (t *NotificationTemplate) UpdatedAt() time.Time     { return t.updatedAt }

// Render substitutes the plan name, expiry date and days-to-expire placeholders.
// A template without content falls back to DefaultExpiryMessage.
func (t *NotificationTemplate) Render(planName string, expiry time.Time, daysToExpire int) string {
	if t == nil || strings.TrimSpace(t.messageContent) == "" {
		return DefaultExpiryMessage
	}
	if planName == "" {
		planName = UnknownPlanName
	}
	return strings.NewReplacer(
		PlaceholderPlanName, planName,
		PlaceholderDateOfExpiry, biztime.FormatDate(expiry),
		PlaceholderDaysToExpire, strconv.Itoa(daysToExpire),
	).Replace(t.messageContent)
}
