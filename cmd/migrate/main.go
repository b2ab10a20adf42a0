package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/kanban-memberships/pkg/config"
	"github.com/angelmondragon/kanban-memberships/pkg/db"
	"github.com/angelmondragon/kanban-memberships/pkg/logger"
	"github.com/angelmondragon/kanban-memberships/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "base directory holding the postgres/ and sqlite/ migration sets")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate touch only the filesystem and work for every dialect.
	switch opts.cmd {
	case "create":
		exitOn(logg, context.Background(), "create migration", create(opts))
		return
	case "validate":
		exitOn(logg, context.Background(), "validate migrations", migrate.ValidateDir(opts.dir))
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	exitOn(logg, context.Background(), "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dialect := migrate.DialectFor(cfg.DB)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"cmd":     opts.cmd,
		"dir":     dialect.Dir(opts.dir),
		"dialect": dialect.String(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(logg, ctx, "open database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	exitOn(logg, ctx, "open sql database", err)

	switch opts.cmd {
	case "up", "down", "status":
		err = migrate.Run(ctx, sqlDB, dialect, opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			err = fmt.Errorf("missing -version for version command")
			break
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, dialect, opts.dir, opts.version)
	default:
		err = fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
	exitOn(logg, ctx, "goose "+opts.cmd, err)
	logg.Info(ctx, "migrations finished")
}

func create(opts options) error {
	if opts.name == "" {
		return fmt.Errorf("missing -name for create")
	}
	paths, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now())
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Println("created migration:", path)
	}
	return nil
}

func exitOn(logg *logger.Logger, ctx context.Context, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, step+" failed", err)
	os.Exit(1)
}
