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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	Club          ClubConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
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
	Env          string `envconfig:"GHALA_APP_ENV" required:"true"`
	Port         string `envconfig:"GHALA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GHALA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GHALA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GHALA_DB_DSN"`
	Driver string `envconfig:"GHALA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GHALA_DB_HOST"`
	LegacyPort     int    `envconfig:"GHALA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GHALA_DB_USER"`
	LegacyPassword string `envconfig:"GHALA_DB_PASSWORD"`
	LegacyName     string `envconfig:"GHALA_DB_NAME"`
	LegacySSLMode  string `envconfig:"GHALA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GHALA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GHALA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GHALA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GHALA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GHALA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GHALA_REDIS_ADDR"`
	Password     string        `envconfig:"GHALA_REDIS_PASSWORD"`
	DB           int           `envconfig:"GHALA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GHALA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GHALA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GHALA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GHALA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GHALA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GHALA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GHALA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GHALA_JWT_EXPIRATION_MINUTES" default:"720"`
}

type AuthRateLimitConfig struct {
	LoginWindow   time.Duration `envconfig:"GHALA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPinLimit int           `envconfig:"GHALA_AUTH_RATE_LIMIT_LOGIN_PIN_LIMIT" default:"5"`
	LoginIPLimit  int           `envconfig:"GHALA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// ClubConfig carries the association-wide billing constants.
type ClubConfig struct {
	GuestFee   decimal.Decimal `envconfig:"GHALA_GUEST_FEE" default:"3.00"`
	MonthlyFee decimal.Decimal `envconfig:"GHALA_MONTHLY_FEE" default:"30.00"`
}

type FeatureFlagsConfig struct {
	AutoMigrate  bool `envconfig:"GHALA_AUTO_MIGRATE" default:"false"`
	SeedDefaults bool `envconfig:"GHALA_SEED_DEFAULTS" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GHALA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GHALA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GHALA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ChangesTopic        string `envconfig:"GHALA_PUBSUB_CHANGES_TOPIC" default:"ghala-changes"`
	ChangesSubscription string `envconfig:"GHALA_PUBSUB_CHANGES_SUBSCRIPTION"`
}

// Enabled reports whether the change feed should be wired at all.
func (p PubSubConfig) Enabled(gcp GCPConfig) bool {
	return strings.TrimSpace(gcp.ProjectID) != "" && strings.TrimSpace(p.ChangesTopic) != ""
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
