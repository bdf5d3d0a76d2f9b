package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Refunds       RefundsConfig
	Rail          RailConfig
	Notifications NotificationsConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Refunds.ensureThreshold(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROPFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"PROPFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PROPFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROPFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PROPFLOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PROPFLOW_DB_DSN"`
	Driver string `envconfig:"PROPFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PROPFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"PROPFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PROPFLOW_DB_USER"`
	LegacyPassword string `envconfig:"PROPFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"PROPFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"PROPFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROPFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROPFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROPFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROPFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PROPFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PROPFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"PROPFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROPFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROPFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROPFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROPFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROPFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROPFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PROPFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PROPFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PROPFLOW_JWT_EXPIRATION_MINUTES" required:"true"`
}

// RefundsConfig carries the business policy values the workflow must not hardcode.
type RefundsConfig struct {
	// ApprovalThreshold is the refundable amount above which an elevated
	// approval is required before disbursement. Parsed as fixed-point decimal.
	ApprovalThreshold string `envconfig:"PROPFLOW_REFUNDS_APPROVAL_THRESHOLD" default:"3000.00"`
	// ConfirmationTimeout bounds how long a checkout may sit in
	// refund_processing before the reconciliation sweep flags it.
	ConfirmationTimeout time.Duration `envconfig:"PROPFLOW_REFUNDS_CONFIRMATION_TIMEOUT" default:"48h"`

	threshold decimal.Decimal
}

func (r *RefundsConfig) ensureThreshold() error {
	value, err := decimal.NewFromString(strings.TrimSpace(r.ApprovalThreshold))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvApprovalThreshold, err)
	}
	if value.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvApprovalThreshold)
	}
	r.threshold = value
	return nil
}

// Threshold returns the parsed approval threshold.
func (r RefundsConfig) Threshold() decimal.Decimal {
	return r.threshold
}

// RailConfig points at the bank's disbursement API.
type RailConfig struct {
	BaseURL string        `envconfig:"PROPFLOW_RAIL_BASE_URL"`
	APIKey  string        `envconfig:"PROPFLOW_RAIL_API_KEY"`
	Timeout time.Duration `envconfig:"PROPFLOW_RAIL_TIMEOUT" default:"30s"`
}

type NotificationsConfig struct {
	RetentionDays int `envconfig:"PROPFLOW_NOTIFICATIONS_RETENTION_DAYS" default:"90"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PROPFLOW_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PROPFLOW_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"PROPFLOW_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PROPFLOW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DisbursementTopic        string `envconfig:"PROPFLOW_PUBSUB_DISBURSEMENT_TOPIC" required:"true"`
	DisbursementSubscription string `envconfig:"PROPFLOW_PUBSUB_DISBURSEMENT_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"PROPFLOW_PUBSUB_NOTIFICATION_TOPIC" default:"pf-checkout-events"`
	NotificationSubscription string `envconfig:"PROPFLOW_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PROPFLOW_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PROPFLOW_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PROPFLOW_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
