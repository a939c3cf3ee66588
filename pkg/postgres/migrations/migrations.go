package migrations

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aixblock/rewards-engine/internal/config"
	_202605121030_bootstrapDb "github.com/aixblock/rewards-engine/pkg/postgres/migrations/202605121030_bootstrapDb"
	_202605261415_reserveAccounts "github.com/aixblock/rewards-engine/pkg/postgres/migrations/202605261415_reserveAccounts"
	_202606101102_contributorClaimPeriod "github.com/aixblock/rewards-engine/pkg/postgres/migrations/202606101102_contributorClaimPeriod"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ISqlMigration is implemented by every migration directory in this package.
type ISqlMigration interface {
	Up(db *sql.DB, grm *gorm.DB) error
	GetName() string
}

type Migrator struct {
	Db           *sql.DB
	GDb          *gorm.DB
	Logger       *zap.Logger
	globalConfig *config.Config
}

func NewMigrator(db *sql.DB, gDb *gorm.DB, l *zap.Logger, cfg *config.Config) *Migrator {
	m := &Migrator{
		Db:           db,
		GDb:          gDb,
		Logger:       l,
		globalConfig: cfg,
	}
	m.initMigrationTable()
	return m
}

func (m *Migrator) initMigrationTable() {
	query := `CREATE TABLE IF NOT EXISTS migrations (
		name text primary key,
		created_at timestamp with time zone default current_timestamp
	)`
	if _, err := m.Db.Exec(query); err != nil {
		m.Logger.Sugar().Fatalw("Failed to create migrations table", zap.Error(err))
	}
}

// MigrateAll runs every registered migration in order, skipping those that
// have already been applied.
func (m *Migrator) MigrateAll() error {
	migrations := []ISqlMigration{
		&_202605121030_bootstrapDb.Migration{},
		&_202605261415_reserveAccounts.Migration{},
		&_202606101102_contributorClaimPeriod.Migration{},
	}

	for _, migration := range migrations {
		if err := m.Migrate(migration); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) Migrate(migration ISqlMigration) error {
	name := migration.GetName()

	migrated, err := m.hasRunMigration(name)
	if err != nil {
		return fmt.Errorf("failed to check migration status for '%s': %w", name, err)
	}
	if migrated {
		return nil
	}

	if err = migration.Up(m.Db, m.GDb); err != nil {
		m.Logger.Sugar().Errorw("Failed to run migration", zap.String("name", name), zap.Error(err))
		return err
	}

	if err = m.recordMigration(name); err != nil {
		return err
	}
	m.Logger.Sugar().Debugw("Ran migration", zap.String("name", name))
	return nil
}

func (m *Migrator) hasRunMigration(name string) (bool, error) {
	var count int
	err := m.Db.QueryRow(`SELECT count(*) FROM migrations WHERE name = $1`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *Migrator) recordMigration(name string) error {
	_, err := m.Db.Exec(`INSERT INTO migrations (name, created_at) VALUES ($1, $2)`, name, time.Now())
	return err
}
