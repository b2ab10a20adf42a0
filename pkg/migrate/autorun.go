package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/kanban-memberships/pkg/config"
	"github.com/angelmondragon/kanban-memberships/pkg/db"
	"github.com/angelmondragon/kanban-memberships/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := DialectFor(cfg.DB)
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": dialect.Dir(DefaultDir), "dialect": dialect.String()})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, dialect, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
