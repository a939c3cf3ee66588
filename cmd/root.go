package cmd

import (
	"os"
	"strings"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "rewards-engine",
	Short: "The rewards engine tracks contributions and distributes reward tokens proportionally",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)

	rootCmd.PersistentFlags().String(config.DatabaseHost, "localhost", `PostgreSQL host`)
	rootCmd.PersistentFlags().Int(config.DatabasePort, 5432, `PostgreSQL port`)
	rootCmd.PersistentFlags().String(config.DatabaseUser, "rewards", `PostgreSQL username`)
	rootCmd.PersistentFlags().String(config.DatabasePassword, "", `PostgreSQL password`)
	rootCmd.PersistentFlags().String(config.DatabaseDbName, "rewards", `PostgreSQL database name`)
	rootCmd.PersistentFlags().String(config.DatabaseSchemaName, "", `PostgreSQL schema name (default "public")`)
	rootCmd.PersistentFlags().String(config.DatabaseSSLMode, "disable", `PostgreSQL SSL mode`)

	rootCmd.PersistentFlags().Uint64(config.RewardsMonthlyThreshold, 500, `Default monthly point threshold for new configs`)
	rootCmd.PersistentFlags().Uint64(config.RewardsReserveRatio, 5000, `Default reserve ratio in basis points for new configs`)
	rootCmd.PersistentFlags().Uint64(config.RewardsMaxPointsPerType, 1000, `Default per-type monthly point cap for new configs`)

	rootCmd.PersistentFlags().Int(config.RpcHttpPort, 7101, `http rpc port`)

	rootCmd.PersistentFlags().Bool(config.StatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.StatsdUrl, "", `e.g. "localhost:8125"`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	// setup sub commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runVersionCmd)
	rootCmd.AddCommand(runDatabaseCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})

}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}
