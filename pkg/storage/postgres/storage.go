package postgres

import (
	"errors"
	"fmt"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresRewardsStore persists engine entities through gorm. Mutating
// operations are expected to run inside Atomically so shared counters keep
// single-writer discipline.
type PostgresRewardsStore struct {
	Db           *gorm.DB
	Logger       *zap.Logger
	GlobalConfig *config.Config
}

func NewPostgresRewardsStore(db *gorm.DB, l *zap.Logger, cfg *config.Config) *PostgresRewardsStore {
	return &PostgresRewardsStore{
		Db:           db,
		Logger:       l,
		GlobalConfig: cfg,
	}
}

func (s *PostgresRewardsStore) CreatePointsConfig(pc *rewardsTypes.PointsConfig) (*rewardsTypes.PointsConfig, error) {
	created := *pc
	res := s.Db.Model(&rewardsTypes.PointsConfig{}).Clauses(clause.Returning{}).Create(&created)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to insert points config '%s': %w", pc.Id, res.Error)
	}
	return &created, nil
}

func (s *PostgresRewardsStore) GetPointsConfig(id string) (*rewardsTypes.PointsConfig, error) {
	var pc rewardsTypes.PointsConfig
	res := s.Db.Where("id = ?", id).First(&pc)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, rewardsTypes.ErrNotFound
		}
		return nil, res.Error
	}
	return &pc, nil
}

func (s *PostgresRewardsStore) UpdatePointsConfig(pc *rewardsTypes.PointsConfig) error {
	res := s.Db.Model(&rewardsTypes.PointsConfig{}).
		Where("id = ?", pc.Id).
		Select("*").
		Omit("id", "created_at").
		Updates(pc)
	if res.Error != nil {
		return fmt.Errorf("failed to update points config '%s': %w", pc.Id, res.Error)
	}
	if res.RowsAffected == 0 {
		return rewardsTypes.ErrNotFound
	}
	return nil
}

func (s *PostgresRewardsStore) CreateContributor(c *rewardsTypes.Contributor) (*rewardsTypes.Contributor, error) {
	created := *c
	res := s.Db.Model(&rewardsTypes.Contributor{}).Clauses(clause.Returning{}).Create(&created)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to insert contributor '%s': %w", c.Id, res.Error)
	}
	return &created, nil
}

func (s *PostgresRewardsStore) GetContributor(id string) (*rewardsTypes.Contributor, error) {
	var c rewardsTypes.Contributor
	res := s.Db.Where("id = ?", id).First(&c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, rewardsTypes.ErrNotFound
		}
		return nil, res.Error
	}
	return &c, nil
}

func (s *PostgresRewardsStore) GetContributorByAuthority(authority string) (*rewardsTypes.Contributor, error) {
	var c rewardsTypes.Contributor
	res := s.Db.Where("authority = ?", authority).First(&c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, rewardsTypes.ErrNotFound
		}
		return nil, res.Error
	}
	return &c, nil
}

func (s *PostgresRewardsStore) UpdateContributor(c *rewardsTypes.Contributor) error {
	res := s.Db.Model(&rewardsTypes.Contributor{}).
		Where("id = ?", c.Id).
		Select("*").
		Omit("id", "created_at").
		Updates(c)
	if res.Error != nil {
		return fmt.Errorf("failed to update contributor '%s': %w", c.Id, res.Error)
	}
	if res.RowsAffected == 0 {
		return rewardsTypes.ErrNotFound
	}
	return nil
}

func (s *PostgresRewardsStore) ListContributors() ([]*rewardsTypes.Contributor, error) {
	contributors := make([]*rewardsTypes.Contributor, 0)
	res := s.Db.Order("created_at asc").Find(&contributors)
	if res.Error != nil {
		return nil, res.Error
	}
	return contributors, nil
}

func (s *PostgresRewardsStore) InsertContribution(c *rewardsTypes.Contribution) (*rewardsTypes.Contribution, error) {
	created := *c
	res := s.Db.Model(&rewardsTypes.Contribution{}).Clauses(clause.Returning{}).Create(&created)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to insert contribution '%s' slot %d: %w", c.ContributorId, c.Sequence, res.Error)
	}
	return &created, nil
}

func (s *PostgresRewardsStore) ListContributionsForContributor(contributorId string) ([]*rewardsTypes.Contribution, error) {
	contributions := make([]*rewardsTypes.Contribution, 0)
	res := s.Db.Where("contributor_id = ?", contributorId).Order("sequence asc").Find(&contributions)
	if res.Error != nil {
		return nil, res.Error
	}
	return contributions, nil
}

func (s *PostgresRewardsStore) ListContributionsForPeriod(period uint64) ([]*rewardsTypes.Contribution, error) {
	contributions := make([]*rewardsTypes.Contribution, 0)
	res := s.Db.Where("period = ?", period).Order("timestamp asc").Find(&contributions)
	if res.Error != nil {
		return nil, res.Error
	}
	return contributions, nil
}

func (s *PostgresRewardsStore) GetDistributionPeriod(configId string, period uint64) (*rewardsTypes.DistributionPeriod, error) {
	var dp rewardsTypes.DistributionPeriod
	res := s.Db.Where("config_id = ? AND period = ?", configId, period).First(&dp)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, rewardsTypes.ErrNotFound
		}
		return nil, res.Error
	}
	return &dp, nil
}

func (s *PostgresRewardsStore) UpsertDistributionPeriod(dp *rewardsTypes.DistributionPeriod) error {
	res := s.Db.Model(&rewardsTypes.DistributionPeriod{}).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "config_id"},
			{Name: "period"},
		},
		UpdateAll: true,
	}).Create(dp)
	if res.Error != nil {
		return fmt.Errorf("failed to upsert distribution period '%s'/%d: %w", dp.ConfigId, dp.Period, res.Error)
	}
	return nil
}

func (s *PostgresRewardsStore) ListDistributionPeriods(configId string) ([]*rewardsTypes.DistributionPeriod, error) {
	periods := make([]*rewardsTypes.DistributionPeriod, 0)
	res := s.Db.Where("config_id = ?", configId).Order("period asc").Find(&periods)
	if res.Error != nil {
		return nil, res.Error
	}
	return periods, nil
}

func (s *PostgresRewardsStore) GetReserveAccount(configId string) (*rewardsTypes.ReserveAccount, error) {
	var ra rewardsTypes.ReserveAccount
	res := s.Db.Where("config_id = ?", configId).First(&ra)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, rewardsTypes.ErrNotFound
		}
		return nil, res.Error
	}
	return &ra, nil
}

func (s *PostgresRewardsStore) UpsertReserveAccount(ra *rewardsTypes.ReserveAccount) error {
	res := s.Db.Model(&rewardsTypes.ReserveAccount{}).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "config_id"},
		},
		UpdateAll: true,
	}).Create(ra)
	if res.Error != nil {
		return fmt.Errorf("failed to upsert reserve account '%s': %w", ra.ConfigId, res.Error)
	}
	return nil
}

// Atomically runs fn against a store bound to a single gorm transaction.
func (s *PostgresRewardsStore) Atomically(fn func(txStore storage.RewardsStore) error) error {
	return s.Db.Transaction(func(tx *gorm.DB) error {
		txStore := &PostgresRewardsStore{
			Db:           tx,
			Logger:       s.Logger,
			GlobalConfig: s.GlobalConfig,
		}
		return fn(txStore)
	})
}
