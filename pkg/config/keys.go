package config

// EnvPrefix is handed to envconfig; every field tag already carries the full key.
const EnvPrefix = "KANBAN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "KANBAN_APP_ENV"
	EnvLogLevel     = "KANBAN_LOG_LEVEL"
	EnvLogFormat    = "KANBAN_LOG_FORMAT"
	EnvLogWarnStack = "KANBAN_LOG_WARN_STACK"

	EnvDBDSN      = "KANBAN_DB_DSN"
	EnvDBDriver   = "KANBAN_DB_DRIVER"
	EnvDBHost     = "KANBAN_DB_HOST"
	EnvDBPort     = "KANBAN_DB_PORT"
	EnvDBUser     = "KANBAN_DB_USER"
	EnvDBPassword = "KANBAN_DB_PASSWORD"
	EnvDBName     = "KANBAN_DB_NAME"
	EnvDBSSLMode  = "KANBAN_DB_SSLMODE"

	EnvAutoMigrate = "KANBAN_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
