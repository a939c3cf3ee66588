package _202605261415_reserveAccounts

import (
	"database/sql"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reserve_accounts (
			config_id varchar primary key,
			balance numeric not null default 0,
			updated_at timestamp with time zone default current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS reward_pools (
			config_id varchar primary key,
			balance numeric not null default 0,
			updated_at timestamp with time zone default current_timestamp
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
	return "202605261415_reserveAccounts"
}
