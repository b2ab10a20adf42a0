package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/angelmondragon/kanban-memberships/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir holds one migration set per dialect, in postgres/ and sqlite/.
const DefaultDir = "pkg/migrate/migrations"

// Dialect is a goose dialect name with a matching migration set.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// Dialects lists every dialect that ships a migration set.
var Dialects = []Dialect{DialectPostgres, DialectSQLite}

// DialectFor maps the configured DB driver onto the goose dialect.
func DialectFor(cfg config.DBConfig) Dialect {
	if cfg.IsSQLite() {
		return DialectSQLite
	}
	return DialectPostgres
}

// Dir returns the migration set for d under base.
func (d Dialect) Dir(base string) string {
	if d == DialectSQLite {
		return filepath.Join(base, "sqlite")
	}
	return filepath.Join(base, "postgres")
}

func (d Dialect) String() string {
	return string(d)
}

// Run executes a goose command against the dialect's migration set under base.
func Run(ctx context.Context, db *sql.DB, dialect Dialect, base, command string, args ...string) error {
	dir, err := prepare(db, dialect, base)
	if err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect Dialect, base, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	dir, err := prepare(db, dialect, base)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		err = goose.UpToContext(ctx, db, dir, target)
	default:
		err = goose.DownToContext(ctx, db, dir, target)
	}
	if err != nil {
		return fmt.Errorf("goose %s migrate to %d: %w", dialect, target, err)
	}
	return nil
}

func prepare(db *sql.DB, dialect Dialect, base string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("db is required")
	}
	if base == "" {
		return "", fmt.Errorf("dir is required")
	}
	if err := goose.SetDialect(dialect.String()); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	return dialect.Dir(base), nil
}
