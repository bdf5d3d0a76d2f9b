package config

// EnvPrefix is the envconfig prefix shared by every PropFlow binary.
const EnvPrefix = "propflow"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv   = "PROPFLOW_APP_ENV"
	EnvPort     = "PROPFLOW_APP_PORT"
	EnvDBDSN    = "PROPFLOW_DB_DSN"
	EnvDBHost   = "PROPFLOW_DB_HOST"
	EnvDBUser   = "PROPFLOW_DB_USER"
	EnvDBName   = "PROPFLOW_DB_NAME"
	EnvRedisURL = "PROPFLOW_REDIS_URL"

	EnvJWTSecret  = "PROPFLOW_JWT_SECRET"
	EnvJWTIssuer  = "PROPFLOW_JWT_ISSUER"
	EnvJWTExpMins = "PROPFLOW_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "PROPFLOW_GCP_PROJECT_ID"

	EnvApprovalThreshold   = "PROPFLOW_REFUNDS_APPROVAL_THRESHOLD"
	EnvConfirmationTimeout = "PROPFLOW_REFUNDS_CONFIRMATION_TIMEOUT"

	EnvPubSubDisbursementTopic        = "PROPFLOW_PUBSUB_DISBURSEMENT_TOPIC"
	EnvPubSubDisbursementSubscription = "PROPFLOW_PUBSUB_DISBURSEMENT_SUBSCRIPTION"
	EnvPubSubNotificationTopic        = "PROPFLOW_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSubscription = "PROPFLOW_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
