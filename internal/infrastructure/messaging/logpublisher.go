// Package messaging selects the transport expiry notifications are delivered on.
package messaging

import (
	"context"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// LogPublisher only logs notifications; used when no broker is available.
type LogPublisher struct {
	logger logger.Interface
}

func NewLogPublisher(logger logger.Interface) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, n notification.BucketExpiryNotification) error {
	p.logger.Infow("expiry notification",
		"username", n.Username,
		"bucket_instance_id", n.BucketInstanceID,
		"days_to_expire", n.DaysToExpire,
		"message", n.Message,
	)
	return nil
}
