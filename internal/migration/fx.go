package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/config"
	"github.com/smallbiznis/quoteflow/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, log *zap.Logger) error {
		if err := RunMigrations(context.Background(), conn); err != nil {
			return err
		}
		if !cfg.SeedOnStart {
			return nil
		}
		if err := seed.EnsureReferenceData(conn, node); err != nil {
			return err
		}
		log.Named("migrations").Info("reference data ensured")
		return nil
	}),
)
