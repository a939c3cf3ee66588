package config

import (
	"regexp"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "REWARDS"

// Flag name constants. Each one doubles as the viper lookup key after
// kebab-to-snake normalization.
const (
	Debug = "debug"

	DatabaseHost       = "database.host"
	DatabasePort       = "database.port"
	DatabaseUser       = "database.user"
	DatabasePassword   = "database.password"
	DatabaseDbName     = "database.db_name"
	DatabaseSchemaName = "database.schema_name"
	DatabaseSSLMode    = "database.ssl_mode"

	RewardsMonthlyThreshold = "rewards.monthly-threshold"
	RewardsReserveRatio     = "rewards.reserve-ratio"
	RewardsMaxPointsPerType = "rewards.max-points-per-type"

	RpcHttpPort = "rpc.http-port"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"

	StatsdEnabled = "datadog.statsd.enabled"
	StatsdUrl     = "datadog.statsd.url"
)

type Config struct {
	Debug bool

	DatabaseConfig   DatabaseConfig
	RewardsConfig    RewardsConfig
	RpcConfig        RpcConfig
	PrometheusConfig PrometheusConfig
	StatsdConfig     StatsdConfig
}

type DatabaseConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	DbName     string
	SchemaName string
	SSLMode    string
}

// RewardsConfig carries the program-level defaults applied when a new points
// config is initialized without explicit values.
type RewardsConfig struct {
	MonthlyThreshold uint64
	ReserveRatio     uint64
	MaxPointsPerType uint64
}

type RpcConfig struct {
	HttpPort int
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type StatsdConfig struct {
	Enabled bool
	Url     string
}

// NewConfig hydrates a Config from viper, which in turn is populated from
// flags and environment variables bound in cmd.
func NewConfig() *Config {
	return &Config{
		Debug: viper.GetBool(KebabToSnakeCase(Debug)),

		DatabaseConfig: DatabaseConfig{
			Host:       viper.GetString(KebabToSnakeCase(DatabaseHost)),
			Port:       viper.GetInt(KebabToSnakeCase(DatabasePort)),
			User:       viper.GetString(KebabToSnakeCase(DatabaseUser)),
			Password:   viper.GetString(KebabToSnakeCase(DatabasePassword)),
			DbName:     viper.GetString(KebabToSnakeCase(DatabaseDbName)),
			SchemaName: viper.GetString(KebabToSnakeCase(DatabaseSchemaName)),
			SSLMode:    viper.GetString(KebabToSnakeCase(DatabaseSSLMode)),
		},

		RewardsConfig: RewardsConfig{
			MonthlyThreshold: viper.GetUint64(KebabToSnakeCase(RewardsMonthlyThreshold)),
			ReserveRatio:     viper.GetUint64(KebabToSnakeCase(RewardsReserveRatio)),
			MaxPointsPerType: viper.GetUint64(KebabToSnakeCase(RewardsMaxPointsPerType)),
		},

		RpcConfig: RpcConfig{
			HttpPort: viper.GetInt(KebabToSnakeCase(RpcHttpPort)),
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(KebabToSnakeCase(PrometheusEnabled)),
			Port:    viper.GetInt(KebabToSnakeCase(PrometheusPort)),
		},

		StatsdConfig: StatsdConfig{
			Enabled: viper.GetBool(KebabToSnakeCase(StatsdEnabled)),
			Url:     viper.GetString(KebabToSnakeCase(StatsdUrl)),
		},
	}
}

var kebabRegex = regexp.MustCompile(`[-.]+`)

// KebabToSnakeCase converts flag names like "database.db-name" into the
// snake_case keys viper uses for env binding.
func KebabToSnakeCase(str string) string {
	return kebabRegex.ReplaceAllString(str, "_")
}
