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
	Roll          RollConfig
	RollRateLimit RollRateLimitConfig
	Cart          CartConfig
	FeatureFlags  FeatureFlagsConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MERCADITO_APP_ENV" required:"true"`
	Port         string `envconfig:"MERCADITO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MERCADITO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCADITO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MERCADITO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MERCADITO_DB_DSN"`
	Driver string `envconfig:"MERCADITO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MERCADITO_DB_HOST"`
	LegacyPort     int    `envconfig:"MERCADITO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERCADITO_DB_USER"`
	LegacyPassword string `envconfig:"MERCADITO_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERCADITO_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERCADITO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCADITO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCADITO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCADITO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCADITO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCADITO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERCADITO_REDIS_ADDR"`
	Password     string        `envconfig:"MERCADITO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCADITO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCADITO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCADITO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCADITO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCADITO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCADITO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MERCADITO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MERCADITO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MERCADITO_JWT_EXPIRATION_MINUTES" required:"true"`
}

// RollConfig tunes the dice-discount roll engine.
type RollConfig struct {
	CooldownWindow time.Duration `envconfig:"MERCADITO_ROLL_COOLDOWN_WINDOW" default:"15m"`
	LockTTL        time.Duration `envconfig:"MERCADITO_ROLL_LOCK_TTL" default:"5s"`
	RetentionDays  int           `envconfig:"MERCADITO_ROLL_RETENTION_DAYS" default:"30"`
}

type RollRateLimitConfig struct {
	Window time.Duration `envconfig:"MERCADITO_ROLL_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"MERCADITO_ROLL_RATE_LIMIT" default:"10"`
}

// CartConfig tunes cart pricing behaviour.
type CartConfig struct {
	FreeShippingThreshold string `envconfig:"MERCADITO_FREE_SHIPPING_THRESHOLD" default:"100000"`
}

// FreeShippingThresholdAmount parses the configured threshold; invalid values
// fall back to the store default of 100000 base units.
func (c CartConfig) FreeShippingThresholdAmount() decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.FreeShippingThreshold))
	if err != nil || amount.IsNegative() {
		return decimal.NewFromInt(100000)
	}
	return amount
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MERCADITO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MERCADITO_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"MERCADITO_CRON_INTERVAL" default:"24h"`
}

// IsSQLite reports whether the embedded sqlite driver is selected, either
// through MERCADITO_DB_DRIVER or the MERCADITO_USE_SQLITE dev flag.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLitePath
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
