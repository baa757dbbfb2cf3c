package provisioning

import (
	"strings"
	"time"

	"github.com/axonect/quotacycle/internal/shared/biztime"
)

// ValidityDays returns the length in days of a cycle starting at cycleStart.
// Daily and weekly plans win over billing; calendar-month billing uses the length of the
// month containing cycleStart; anything else runs until the same day next month.
func ValidityDays(recurringPeriod, billing string, cycleStart time.Time) int {
	switch {
	case strings.EqualFold(recurringPeriod, RecurringPeriodDaily):
		return 1
	case strings.EqualFold(recurringPeriod, RecurringPeriodWeekly):
		return 7
	case billing == BillingDaily || billing == BillingCalendarMonth:
		return biztime.DaysInMonth(cycleStart)
	default:
		return biztime.DaysBetween(cycleStart, biztime.AddMonthsClamped(cycleStart, 1))
	}
}
