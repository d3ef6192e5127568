package config

const EnvPrefix = "MERCADITO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultSQLitePath is the DSN used when sqlite mode is on and no explicit
// DSN is configured.
const DefaultSQLitePath = "file:mercadito.db"

const (
	EnvAppEnv     = "MERCADITO_APP_ENV"
	EnvPort       = "MERCADITO_APP_PORT"
	EnvDBDSN      = "MERCADITO_DB_DSN"
	EnvDBHost     = "MERCADITO_DB_HOST"
	EnvDBUser     = "MERCADITO_DB_USER"
	EnvDBName     = "MERCADITO_DB_NAME"
	EnvRedisURL   = "MERCADITO_REDIS_URL"
	EnvJWTSecret  = "MERCADITO_JWT_SECRET"
	EnvJWTIssuer  = "MERCADITO_JWT_ISSUER"
	EnvJWTExpMins = "MERCADITO_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
