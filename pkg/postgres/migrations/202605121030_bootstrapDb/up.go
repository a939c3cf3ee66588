package _202605121030_bootstrapDb

import (
	"database/sql"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS points_configs (
			id varchar primary key,
			authority varchar not null,
			monthly_threshold numeric not null,
			max_points_per_type numeric not null,
			reserve_ratio numeric not null,
			current_period numeric not null default 0,
			period_total_points numeric not null default 0,
			last_calculation_time timestamp with time zone not null,
			created_at timestamp with time zone default current_timestamp,
			updated_at timestamp with time zone default current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS contributors (
			id varchar primary key,
			authority varchar not null,
			total_points numeric not null default 0,
			current_month_points numeric not null default 0,
			tokens_claimed numeric not null default 0,
			last_claim_time timestamp with time zone,
			contribution_count numeric not null default 0,
			is_verified boolean not null default false,
			created_at timestamp with time zone default current_timestamp,
			updated_at timestamp with time zone default current_timestamp
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uidx_contributors_authority ON contributors (authority)`,
		`CREATE TABLE IF NOT EXISTS contributions (
			id varchar primary key,
			contributor_id varchar not null,
			sequence numeric not null,
			contribution_type integer not null,
			points numeric not null,
			timestamp timestamp with time zone not null,
			metadata text not null default '',
			is_verified boolean not null default false,
			period numeric not null
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contributions_contributor ON contributions (contributor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contributions_period ON contributions (period)`,
		`CREATE TABLE IF NOT EXISTS distribution_periods (
			config_id varchar not null,
			period numeric not null,
			total_tokens numeric not null default 0,
			tokens_distributed numeric not null default 0,
			total_points numeric not null default 0,
			is_completed boolean not null default false,
			start_time timestamp with time zone,
			end_time timestamp with time zone,
			primary key (config_id, period)
		)`,
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202605121030_bootstrapDb"
}
