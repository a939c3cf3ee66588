package _202606101102_contributorClaimPeriod

import (
	"database/sql"

	"gorm.io/gorm"
)

type Migration struct {
}

// Claim tracking by period id. Comparing raw timestamps alone lets a
// contributor claim twice when periods close faster than the wallclock
// granularity, so each contributor records the period they last claimed in.
func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`ALTER TABLE contributors ADD COLUMN IF NOT EXISTS last_claim_period numeric not null default 0`,
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202606101102_contributorClaimPeriod"
}
