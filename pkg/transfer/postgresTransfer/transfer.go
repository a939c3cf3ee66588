package postgresTransfer

import (
	"time"

	"github.com/aixblock/rewards-engine/internal/types/numbers"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/storage"
	pgStorage "github.com/aixblock/rewards-engine/pkg/storage/postgres"
	"github.com/aixblock/rewards-engine/pkg/transfer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type poolRow struct {
	ConfigId  string
	Balance   uint64
	UpdatedAt time.Time
}

func (poolRow) TableName() string {
	return "reward_pools"
}

// PostgresTransferor keeps pool balances in the reward_pools table.
type PostgresTransferor struct {
	Db     *gorm.DB
	Logger *zap.Logger
}

func NewPostgresTransferor(db *gorm.DB, l *zap.Logger) *PostgresTransferor {
	return &PostgresTransferor{
		Db:     db,
		Logger: l,
	}
}

func (t *PostgresTransferor) GetBalance(configId string) (uint64, error) {
	var row poolRow
	res := t.Db.Model(&poolRow{}).Where("config_id = ?", configId).First(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, res.Error
	}
	return row.Balance, nil
}

func (t *PostgresTransferor) Credit(configId string, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, rewardsTypes.ErrInvalidInput
	}

	balance, err := t.GetBalance(configId)
	if err != nil {
		return 0, err
	}
	newBalance, err := numbers.CheckedAddU64(balance, amount)
	if err != nil {
		return 0, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "crediting pool")
	}

	row := &poolRow{ConfigId: configId, Balance: newBalance, UpdatedAt: time.Now()}
	res := t.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_id"}},
		UpdateAll: true,
	}).Create(row)
	if res.Error != nil {
		return 0, res.Error
	}
	return newBalance, nil
}

func (t *PostgresTransferor) Debit(configId string, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, rewardsTypes.ErrInvalidInput
	}

	balance, err := t.GetBalance(configId)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return 0, rewardsTypes.ErrInsufficientBalance
	}
	newBalance := balance - amount

	res := t.Db.Model(&poolRow{}).
		Where("config_id = ?", configId).
		Updates(map[string]interface{}{"balance": newBalance, "updated_at": time.Now()})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, rewardsTypes.ErrNotFound
	}
	return newBalance, nil
}

// JoinTx rebinds the transferor to the gorm transaction behind a
// postgres-backed store view.
func (t *PostgresTransferor) JoinTx(txStore storage.RewardsStore) (transfer.Transferor, bool) {
	pgStore, ok := txStore.(*pgStorage.PostgresRewardsStore)
	if !ok {
		return nil, false
	}
	return &PostgresTransferor{Db: pgStore.Db, Logger: t.Logger}, true
}

var _ transfer.Transferor = (*PostgresTransferor)(nil)
var _ transfer.TxJoiner = (*PostgresTransferor)(nil)
