package rewards

import (
	"time"

	"github.com/aixblock/rewards-engine/internal/types/numbers"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Ledger applies contribution and payout mutations to a contributor. Inputs
// are never mutated; every method returns a fresh copy so a failed operation
// leaves the caller's snapshot untouched.
type Ledger struct {
	logger *zap.Logger
}

func NewLedger(l *zap.Logger) *Ledger {
	return &Ledger{
		logger: l,
	}
}

// Record accrues points from one contribution. All three counters must be
// updatable or the whole record fails; the contribution is not recorded if
// the ledger update cannot be applied atomically.
func (lg *Ledger) Record(contributor *rewardsTypes.Contributor, points uint64) (*rewardsTypes.Contributor, error) {
	updated := *contributor

	totalPoints, err := numbers.CheckedAddU64(updated.TotalPoints, points)
	if err != nil {
		return nil, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "total points")
	}
	monthPoints, err := numbers.CheckedAddU64(updated.CurrentMonthPoints, points)
	if err != nil {
		return nil, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "current month points")
	}
	count, err := numbers.CheckedAddU64(updated.ContributionCount, 1)
	if err != nil {
		return nil, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "contribution count")
	}

	updated.TotalPoints = totalPoints
	updated.CurrentMonthPoints = monthPoints
	updated.ContributionCount = count
	return &updated, nil
}

// ResetMonthly zeroes the open-period counter. Idempotent; lifetime counters
// are untouched.
func (lg *Ledger) ResetMonthly(contributor *rewardsTypes.Contributor) *rewardsTypes.Contributor {
	updated := *contributor
	updated.CurrentMonthPoints = 0
	return &updated
}

// ApplyPayout credits a payout to the contributor and closes out their
// monthly counter. A contributor is paid at most once per period: the guard
// compares the recorded claim period against the paying period. A zero claim
// time marks a contributor that has never claimed, which is what lets the
// first claim through in period 0.
func (lg *Ledger) ApplyPayout(
	contributor *rewardsTypes.Contributor,
	amount uint64,
	period uint64,
	now time.Time,
) (*rewardsTypes.Contributor, error) {
	if !contributor.LastClaimTime.IsZero() && contributor.LastClaimPeriod == period {
		return nil, rewardsTypes.ErrAlreadyClaimedThisPeriod
	}

	updated := *contributor

	claimed, err := numbers.CheckedAddU64(updated.TokensClaimed, amount)
	if err != nil {
		return nil, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "tokens claimed")
	}

	updated.TokensClaimed = claimed
	updated.LastClaimTime = now
	updated.LastClaimPeriod = period
	updated.CurrentMonthPoints = 0
	return &updated, nil
}
