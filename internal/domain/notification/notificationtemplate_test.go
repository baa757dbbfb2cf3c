package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/shared/biztime"
)

func intPtr(v int) *int { return &v }

func TestNotificationTemplate_Render(t *testing.T) {
	expiry := time.Date(2024, 3, 31, 23, 59, 0, 0, biztime.Location())
	tpl, err := ReconstructNotificationTemplate(1, 3, MessageTypeExpire,
		"{PLAN_NAME} expires on {DATE_OF_EXPIRY}, {DAYS_TO_EXPIRE} days left", intPtr(3), nil, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "Home 100 expires on 2024-03-31, 3 days left", tpl.Render("Home 100", expiry, 3))
	assert.Equal(t, "Unknown Plan expires on 2024-03-31, 3 days left", tpl.Render("", expiry, 3))
}

func TestNotificationTemplate_RenderDefaults(t *testing.T) {
	var missing *NotificationTemplate
	assert.Equal(t, DefaultExpiryMessage, missing.Render("Home", time.Now(), 1))

	empty, err := ReconstructNotificationTemplate(2, 3, MessageTypeExpire, "  ", intPtr(1), nil, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, DefaultExpiryMessage, empty.Render("Home", time.Now(), 1))
}
