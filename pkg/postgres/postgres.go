package postgres

import (
	"database/sql"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/internal/tests"
	"github.com/aixblock/rewards-engine/pkg/postgres/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSSLMode = "disable"

var validSSLModes = []string{
	"disable",
	"require",
	"verify-ca",
	"verify-full",
}

// PostgresConfig contains all configuration parameters needed to establish
// a connection to a PostgreSQL database.
type PostgresConfig struct {
	Host                string
	Port                int
	Username            string
	Password            string
	DbName              string
	CreateDbIfNotExists bool
	SchemaName          string
	SSLMode             string
}

// Postgres represents a connection to a PostgreSQL database.
type Postgres struct {
	Db *sql.DB
}

// GetTestPostgresDatabase creates a test database with migrations applied.
// It returns the test database name, a sql.DB connection, a gorm.DB
// connection, and any error encountered.
func GetTestPostgresDatabase(cfg config.DatabaseConfig, gCfg *config.Config, l *zap.Logger) (
	string,
	*sql.DB,
	*gorm.DB,
	error,
) {
	testDbName, pg, grm, err := GetTestPostgresDatabaseWithoutMigrations(cfg, l)
	if err != nil {
		return testDbName, nil, nil, err
	}

	migrator := migrations.NewMigrator(pg, grm, l, gCfg)
	if err = migrator.MigrateAll(); err != nil {
		return testDbName, nil, nil, err
	}

	return testDbName, pg, grm, nil
}

// GetTestPostgresDatabaseWithoutMigrations creates a test database without
// applying migrations.
func GetTestPostgresDatabaseWithoutMigrations(cfg config.DatabaseConfig, l *zap.Logger) (
	string,
	*sql.DB,
	*gorm.DB,
	error,
) {
	testDbName, err := tests.GenerateTestDbName()
	if err != nil {
		return testDbName, nil, nil, err
	}
	cfg.DbName = testDbName

	pgConfig := PostgresConfigFromDbConfig(&cfg)
	pgConfig.CreateDbIfNotExists = true

	pg, err := NewPostgres(pgConfig)
	if err != nil {
		return testDbName, nil, nil, err
	}

	grm, err := NewGormFromPostgresConnection(pg.Db)
	if err != nil {
		return testDbName, nil, nil, err
	}

	return testDbName, pg.Db, grm, nil
}

// PostgresConfigFromDbConfig converts a DatabaseConfig to a PostgresConfig.
func PostgresConfigFromDbConfig(dbCfg *config.DatabaseConfig) *PostgresConfig {
	return &PostgresConfig{
		Host:       dbCfg.Host,
		Port:       dbCfg.Port,
		Username:   dbCfg.User,
		Password:   dbCfg.Password,
		DbName:     dbCfg.DbName,
		SchemaName: dbCfg.SchemaName,
		SSLMode:    dbCfg.SSLMode,
	}
}

// getPostgresRootConnection establishes a connection to the PostgreSQL
// server's root 'postgres' database for administrative operations.
func getPostgresRootConnection(cfg *PostgresConfig) (*sql.DB, error) {
	postgresConnStr, err := getPostgresConnectionString(&PostgresConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		DbName:   "postgres",
		SSLMode:  cfg.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection string: %v", err)
	}

	postgresDB, err := sql.Open("postgres", postgresConnStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to postgres database: %v", err)
	}
	return postgresDB, nil
}

// getPostgresConnectionString builds a PostgreSQL connection string from the
// provided configuration.
func getPostgresConnectionString(cfg *PostgresConfig) (string, error) {
	authString := ""
	sslMode := defaultSSLMode

	if cfg.Username != "" {
		authString = fmt.Sprintf("%s user=%s", authString, cfg.Username)
	}
	if cfg.Password != "" {
		authString = fmt.Sprintf("%s password=%s", authString, cfg.Password)
	}

	if cfg.SSLMode != "" {
		if !slices.Contains(validSSLModes, cfg.SSLMode) {
			return "", fmt.Errorf("invalid ssl mode: %s. Must be one of: %s", cfg.SSLMode, strings.Join(validSSLModes, ", "))
		}
		sslMode = cfg.SSLMode
	}

	baseString := fmt.Sprintf("host=%s %s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		cfg.Host,
		authString,
		cfg.DbName,
		cfg.Port,
		sslMode,
	)

	if cfg.SchemaName != "" {
		baseString = fmt.Sprintf("%s search_path=%s", baseString, cfg.SchemaName)
	}
	return baseString, nil
}

// DeleteTestDatabase drops a test database.
func DeleteTestDatabase(cfg *PostgresConfig, dbName string) error {
	postgresDB, err := getPostgresRootConnection(cfg)
	if err != nil {
		return err
	}
	defer postgresDB.Close()

	query := fmt.Sprintf("DROP DATABASE %s", dbName)
	_, err = postgresDB.Exec(query)
	if err != nil {
		return fmt.Errorf("error dropping database: %v", err)
	}
	return nil
}

// CreateDatabaseIfNotExists creates a new database if it doesn't already exist.
func CreateDatabaseIfNotExists(cfg *PostgresConfig) error {
	postgresDB, err := getPostgresRootConnection(cfg)
	if err != nil {
		return err
	}
	defer postgresDB.Close()

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = '%s');`, cfg.DbName)
	err = postgresDB.QueryRow(query).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking if database exists: %v", err)
	}

	if !exists {
		query = fmt.Sprintf("CREATE DATABASE %s", cfg.DbName)
		_, err = postgresDB.Exec(query)
		if err != nil {
			return fmt.Errorf("error creating database: %v", err)
		}
	}
	return nil
}

// NewPostgres creates a new Postgres instance with an established database
// connection.
func NewPostgres(cfg *PostgresConfig) (*Postgres, error) {
	if cfg.CreateDbIfNotExists {
		if err := CreateDatabaseIfNotExists(cfg); err != nil {
			return nil, fmt.Errorf("failed to create database if not exists %+v", err)
		}
	}
	connectString, err := getPostgresConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", connectString)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database %+v", err)
	}

	return &Postgres{
		Db: db,
	}, nil
}

// NewGormFromPostgresConnection creates a new GORM DB instance from an
// existing PostgreSQL connection.
func NewGormFromPostgresConnection(pgDb *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: pgDb,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup database %+v", err)
	}

	return db, nil
}

// TeardownTestDatabase closes the database connection and drops the test
// database.
func TeardownTestDatabase(dbname string, cfg *config.Config, db *gorm.DB, l *zap.Logger) {
	rawDb, _ := db.DB()
	_ = rawDb.Close()

	pgConfig := PostgresConfigFromDbConfig(&cfg.DatabaseConfig)

	if err := DeleteTestDatabase(pgConfig, dbname); err != nil {
		l.Sugar().Errorw("Failed to delete test database", "error", err)
	}
}

// IsDuplicateKeyError checks if an error is a PostgreSQL duplicate key
// violation error.
func IsDuplicateKeyError(err error) bool {
	r := regexp.MustCompile(`duplicate key value violates unique constraint`)

	return r.MatchString(err.Error())
}
