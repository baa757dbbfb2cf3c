package provisioning

const (
	// BucketTypeCarryForward marks a bucket instance that holds balance rolled over from a previous cycle.
	BucketTypeCarryForward = "CARRY_FORWARD_BUCKET"

	RecurringPeriodDaily  = "DAILY"
	RecurringPeriodWeekly = "WEEKLY"

	// Subscriber billing codes that bill by calendar month.
	BillingDaily         = "1"
	BillingCalendarMonth = "2"
)
