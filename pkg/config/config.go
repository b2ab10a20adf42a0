package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
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
	Env          string `envconfig:"KANBAN_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"KANBAN_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"KANBAN_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"KANBAN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KANBAN_DB_DSN"`
	Driver string `envconfig:"KANBAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KANBAN_DB_HOST"`
	LegacyPort     int    `envconfig:"KANBAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KANBAN_DB_USER"`
	LegacyPassword string `envconfig:"KANBAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"KANBAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"KANBAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KANBAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KANBAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KANBAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KANBAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KANBAN_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DriverPostgres:
	case DriverSQLite:
		if db.DSN == "" {
			return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}

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
