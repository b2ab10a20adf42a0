package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/kanban-memberships/internal/boards"
	"github.com/angelmondragon/kanban-memberships/internal/memberships"
	"github.com/angelmondragon/kanban-memberships/internal/users"
	"github.com/angelmondragon/kanban-memberships/pkg/config"
	"github.com/angelmondragon/kanban-memberships/pkg/db"
	pkgerrors "github.com/angelmondragon/kanban-memberships/pkg/errors"
	"github.com/angelmondragon/kanban-memberships/pkg/logger"
	"github.com/angelmondragon/kanban-memberships/pkg/metrics"
	"github.com/angelmondragon/kanban-memberships/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "memberships"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "memberships",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := dbClient.Ping(ctx); err != nil {
		logg.Error(ctx, "database ping failed", err)
		os.Exit(pkgerrors.ExitCode(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ping database")))
	}
	if cfg.App.IsProd() && cfg.DB.IsSQLite() {
		logg.Warn(ctx, "sqlite driver configured in production")
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	svc, err := memberships.NewService(
		memberships.NewRepository(conn),
		usersRepo,
		boards.NewRepository(conn),
		logg,
		metrics.NewMembershipMetrics(prometheus.DefaultRegisterer),
	)
	if err != nil {
		logg.Error(ctx, "failed to build memberships service", err)
		os.Exit(1)
	}

	cli := &runner{
		memberships: svc,
		users:       usersRepo,
		client:      dbClient,
		logg:        logg,
		out:         os.Stdout,
	}
	if err := cli.run(ctx, os.Args[1:]); err != nil {
		os.Exit(pkgerrors.ExitCode(err))
	}
}
