package notification

import "context"

type NotificationTemplateRepository interface {
	// ListByMessageType returns templates of the given type ordered by days to expire.
	ListByMessageType(ctx context.Context, messageType MessageType) ([]*NotificationTemplate, error)
}
