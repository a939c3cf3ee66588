package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/internal/logger"
	"github.com/aixblock/rewards-engine/internal/version"
	"github.com/aixblock/rewards-engine/pkg/coordinator"
	"github.com/aixblock/rewards-engine/pkg/distributionQueue"
	"github.com/aixblock/rewards-engine/pkg/eventBus"
	"github.com/aixblock/rewards-engine/pkg/metrics"
	"github.com/aixblock/rewards-engine/pkg/metrics/prometheus"
	"github.com/aixblock/rewards-engine/pkg/postgres"
	"github.com/aixblock/rewards-engine/pkg/postgres/migrations"
	"github.com/aixblock/rewards-engine/pkg/rpcServer"
	"github.com/aixblock/rewards-engine/pkg/service/rewardsDataService"
	"github.com/aixblock/rewards-engine/pkg/shutdown"
	pgStorage "github.com/aixblock/rewards-engine/pkg/storage/postgres"
	"github.com/aixblock/rewards-engine/pkg/transfer/postgresTransfer"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rewards engine",
	Run: func(cmd *cobra.Command, args []string) {
		initRunCmd(cmd)
		cfg := config.NewConfig()

		ctx := context.Background()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		l.Sugar().Infow("rewards engine",
			zap.String("version", version.GetVersion()),
			zap.String("commit", version.GetCommit()),
		)

		eb := eventBus.NewEventBus(l)

		metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
		if err != nil {
			l.Sugar().Fatal("Failed to setup metrics sink", zap.Error(err))
		}

		sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, metricsClients)
		if err != nil {
			l.Sugar().Fatal("Failed to setup metrics sink", zap.Error(err))
		}

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

		store := pgStorage.NewPostgresRewardsStore(grm, l, cfg)
		transferor := postgresTransfer.NewPostgresTransferor(grm, l)

		c := coordinator.NewCoordinator(store, transferor, eb, sink, clockwork.NewRealClock(), l, cfg)

		queue := distributionQueue.NewDistributionQueue(c, l)
		go queue.Process()

		rds := rewardsDataService.NewRewardsDataService(store, transferor, l, cfg)

		rpc := rpcServer.NewRpcServer(&rpcServer.RpcServerConfig{
			HttpPort: cfg.RpcConfig.HttpPort,
		}, queue, rds, sink, l, cfg)

		// RPC channel to notify the RPC server to shutdown gracefully
		rpcChannel := make(chan bool)
		if err := rpc.Start(ctx, rpcChannel); err != nil {
			l.Sugar().Fatalw("Failed to start RPC server", zap.Error(err))
		}

		promChan := make(chan bool)
		if cfg.PrometheusConfig.Enabled {
			pServer := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.PrometheusConfig.Port,
			}, l)
			if err := pServer.Start(promChan); err != nil {
				l.Sugar().Fatalw("Failed to start prometheus server", zap.Error(err))
			}
		}

		l.Sugar().Info("Started rewards engine")

		gracefulShutdown := shutdown.CreateGracefulShutdownChannel()

		done := make(chan bool)
		shutdown.ListenForShutdown(gracefulShutdown, done, func() {
			l.Sugar().Info("Shutting down...")
			rpcChannel <- true
			queue.Close()
			close(done)
		}, time.Second*5, l)
	},
}

func initRunCmd(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(f.Name); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}

	})
}
