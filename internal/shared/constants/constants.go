package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderXRequestID = "X-Request-ID"

	// Database table names
	TableServiceInstances      = "SERVICE_INSTANCE"
	TablePlans                 = "PLAN"
	TablePlanToBuckets         = "PLAN_TO_BUCKET"
	TableBuckets               = "BUCKET"
	TableQOSProfiles           = "QOS_PROFILE"
	TableBucketInstances       = "BUCKET_INSTANCE"
	TableSubscribers           = "AAA_USER"
	TableProcessingFailures    = "SERVICE_PROCESSING_FAILURE"
	TableNotificationTemplates = "CHILD_TEMPLATE_TABLE"

	ErrMsgInternalServerError = "Internal server error occurred"
)
