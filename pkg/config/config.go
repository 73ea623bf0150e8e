package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "MMPIZZA"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "MMPIZZA_APP_ENV"
	EnvPort   = "MMPIZZA_APP_PORT"
	EnvDBDSN  = "MMPIZZA_DB_DSN"
	EnvDBHost = "MMPIZZA_DB_HOST"
	EnvDBUser = "MMPIZZA_DB_USER"
	EnvDBName = "MMPIZZA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Admin        AdminConfig
	Password     PasswordConfig
	Stripe       StripeConfig
	Mailer       MailerConfig
	Feed         FeedConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"MMPIZZA_APP_ENV" required:"true"`
	Port         string   `envconfig:"MMPIZZA_APP_PORT" required:"true"`
	BaseURL      string   `envconfig:"MMPIZZA_APP_BASE_URL" default:"http://localhost:4321"`
	CORSOrigins  []string `envconfig:"MMPIZZA_CORS_ORIGINS" default:"http://localhost:4321,http://localhost:3000"`
	LogLevel     string   `envconfig:"MMPIZZA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MMPIZZA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MMPIZZA_DB_DSN"`
	Driver string `envconfig:"MMPIZZA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MMPIZZA_DB_HOST"`
	LegacyPort     int    `envconfig:"MMPIZZA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MMPIZZA_DB_USER"`
	LegacyPassword string `envconfig:"MMPIZZA_DB_PASSWORD"`
	LegacyName     string `envconfig:"MMPIZZA_DB_NAME"`
	LegacySSLMode  string `envconfig:"MMPIZZA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MMPIZZA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MMPIZZA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"MMPIZZA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MMPIZZA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MMPIZZA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MMPIZZA_REDIS_ADDR"`
	Password     string        `envconfig:"MMPIZZA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MMPIZZA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MMPIZZA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MMPIZZA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MMPIZZA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MMPIZZA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MMPIZZA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig tunes the persisted shopper cart.
type CartConfig struct {
	TTL time.Duration `envconfig:"MMPIZZA_CART_TTL" default:"168h"`
}

// CheckoutConfig tunes order submission.
type CheckoutConfig struct {
	PickupLeadTime time.Duration `envconfig:"MMPIZZA_CHECKOUT_PICKUP_LEAD_TIME" default:"20m"`
}

// AdminConfig holds the shared dashboard passphrase and the token settings
// minted once the passphrase gate is passed.
type AdminConfig struct {
	Passphrase        string `envconfig:"MMPIZZA_ADMIN_PASSPHRASE" required:"true"`
	JWTSecret         string `envconfig:"MMPIZZA_ADMIN_JWT_SECRET" required:"true"`
	JWTIssuer         string `envconfig:"MMPIZZA_ADMIN_JWT_ISSUER" default:"mmpizza"`
	ExpirationMinutes int    `envconfig:"MMPIZZA_ADMIN_JWT_EXPIRATION_MINUTES" default:"720"`

	LoginWindow  time.Duration `envconfig:"MMPIZZA_ADMIN_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit int           `envconfig:"MMPIZZA_ADMIN_LOGIN_IP_LIMIT" default:"10"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MMPIZZA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MMPIZZA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MMPIZZA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MMPIZZA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MMPIZZA_ARGON_KEY_LEN" default:"32"`
}

type StripeConfig struct {
	APIKey string `envconfig:"MMPIZZA_STRIPE_API_KEY"`
	Secret string `envconfig:"MMPIZZA_STRIPE_SECRET"`
	Env    string `envconfig:"MMPIZZA_STRIPE_ENV" default:"test"`

	WebhookEventTTL time.Duration `envconfig:"MMPIZZA_STRIPE_WEBHOOK_EVENT_TTL" default:"24h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type MailerConfig struct {
	APIKey      string `envconfig:"MMPIZZA_SENDGRID_API_KEY"`
	FromName    string `envconfig:"MMPIZZA_MAIL_FROM_NAME" default:"M&M Factory Pizza"`
	FromEmail   string `envconfig:"MMPIZZA_MAIL_FROM_EMAIL"`
	AdminEmail  string `envconfig:"MMPIZZA_MAIL_ADMIN_EMAIL"`
	CallbackNum string `envconfig:"MMPIZZA_MAIL_PHONE" default:"(555) 123-4567"`
}

// FeedConfig tunes the orders change-feed listener reconnect window.
type FeedConfig struct {
	MinReconnect time.Duration `envconfig:"MMPIZZA_FEED_MIN_RECONNECT" default:"1s"`
	MaxReconnect time.Duration `envconfig:"MMPIZZA_FEED_MAX_RECONNECT" default:"1m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MMPIZZA_AUTO_MIGRATE" default:"false"`
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
