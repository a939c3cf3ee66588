package rewards

import (
	"time"

	"github.com/aixblock/rewards-engine/internal/types/numbers"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Reserve sizes the releasable portion of a pool and keeps the withheld
// balance accounted. Custodial movement of value is the transfer
// collaborator's job; this component only updates numbers.
type Reserve struct {
	logger *zap.Logger
}

func NewReserve(l *zap.Logger) *Reserve {
	return &Reserve{
		logger: l,
	}
}

// ComputeRelease returns how much of poolSize may be distributed. A period
// that meets the monthly threshold releases the full pool; otherwise the
// release is floor(poolSize * reserveRatio / 10000). Truncation is the
// policy, never rounding.
func (r *Reserve) ComputeRelease(totalPoints, monthlyThreshold, reserveRatio, poolSize uint64) (uint64, error) {
	if totalPoints >= monthlyThreshold {
		return poolSize, nil
	}

	releasable, err := numbers.MulDivFloorU64(poolSize, reserveRatio, rewardsTypes.MaxReserveRatio)
	if err != nil {
		return 0, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, err.Error())
	}
	return releasable, nil
}

// Deposit credits the reserve balance.
func (r *Reserve) Deposit(
	account *rewardsTypes.ReserveAccount,
	amount uint64,
	now time.Time,
) (*rewardsTypes.ReserveAccount, error) {
	if amount == 0 {
		return nil, errors.Wrap(rewardsTypes.ErrInvalidInput, "deposit amount must be greater than zero")
	}

	updated := *account
	balance, err := numbers.CheckedAddU64(updated.Balance, amount)
	if err != nil {
		return nil, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "reserve balance")
	}
	updated.Balance = balance
	updated.UpdatedAt = now
	return &updated, nil
}

// Withdraw debits the reserve balance, failing when the balance cannot cover
// the amount.
func (r *Reserve) Withdraw(
	account *rewardsTypes.ReserveAccount,
	amount uint64,
	now time.Time,
) (*rewardsTypes.ReserveAccount, error) {
	if amount == 0 {
		return nil, errors.Wrap(rewardsTypes.ErrInvalidInput, "withdrawal amount must be greater than zero")
	}
	if amount > account.Balance {
		return nil, rewardsTypes.ErrInsufficientReserve
	}

	updated := *account
	updated.Balance -= amount
	updated.UpdatedAt = now
	return &updated, nil
}

// UpdateConfig applies an optional new reserve ratio and/or monthly
// threshold. Nil leaves a field unchanged.
func (r *Reserve) UpdateConfig(
	config *rewardsTypes.PointsConfig,
	newRatio *uint64,
	newThreshold *uint64,
) (*rewardsTypes.PointsConfig, error) {
	updated := *config

	if newRatio != nil {
		if *newRatio > rewardsTypes.MaxReserveRatio {
			return nil, rewardsTypes.ErrInvalidRatio
		}
		updated.ReserveRatio = *newRatio
	}
	if newThreshold != nil {
		if *newThreshold < rewardsTypes.MinPoints {
			return nil, rewardsTypes.ErrInvalidThreshold
		}
		updated.MonthlyThreshold = *newThreshold
	}
	return &updated, nil
}
