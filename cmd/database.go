package cmd

import (
	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/internal/logger"
	"github.com/aixblock/rewards-engine/pkg/postgres"
	"github.com/aixblock/rewards-engine/pkg/postgres/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runDatabaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Create or update the database schema without starting the engine",
	Run: func(cmd *cobra.Command, args []string) {
		initRunCmd(cmd)
		cfg := config.NewConfig()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		pgConfig := postgres.PostgresConfigFromDbConfig(&cfg.DatabaseConfig)

		pg, err := postgres.NewPostgres(pgConfig)
		if err != nil {
			l.Fatal("Failed to setup postgres connection", zap.Error(err))
		}

		grm, err := postgres.NewGormFromPostgresConnection(pg.Db)
		if err != nil {
			l.Fatal("Failed to create gorm instance", zap.Error(err))
		}

		migrator := migrations.NewMigrator(pg.Db, grm, l, cfg)
		if err := migrator.MigrateAll(); err != nil {
			l.Fatal("Failed to migrate", zap.Error(err))
		}

		l.Sugar().Infow("Database schema is up to date")
	},
}
