package rewards

import (
	"time"

	"github.com/aixblock/rewards-engine/internal/types/numbers"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Distributor orchestrates one contributor's payout for the open period: it
// sizes the releasable pool through the reserve policy, computes the
// proportional share, applies the ledger mutation, and updates the
// distribution-period aggregate.
type Distributor struct {
	logger  *zap.Logger
	reserve *Reserve
	ledger  *Ledger
}

func NewDistributor(reserve *Reserve, ledger *Ledger, l *zap.Logger) *Distributor {
	return &Distributor{
		logger:  l,
		reserve: reserve,
		ledger:  ledger,
	}
}

// PayoutResult carries every state change of a single payout so the caller
// can persist them as one atomic unit.
type PayoutResult struct {
	Amount      uint64
	Contributor *rewardsTypes.Contributor
	Period      *rewardsTypes.DistributionPeriod
}

// Payout computes and applies one contributor's share of the pool for the
// currently open period.
//
// The share is floor(releasable * contributorPoints / periodTotalPoints) with
// a widened intermediate; the sum of all shares in a period may fall short of
// the releasable pool by up to one unit per contributor. The residual dust
// stays undistributed.
//
// periodRecord is the existing aggregate for (config, current period), or nil
// on the first payout of the period, in which case the record is created and
// TotalTokens seeded from the observed pool balance. When the record exists,
// the release is sized from its TotalTokens snapshot rather than poolSize, so
// every share in a period is a fraction of the same pool.
func (d *Distributor) Payout(
	contributor *rewardsTypes.Contributor,
	config *rewardsTypes.PointsConfig,
	periodRecord *rewardsTypes.DistributionPeriod,
	poolSize uint64,
	now time.Time,
) (*PayoutResult, error) {
	if !contributor.LastClaimTime.IsZero() && contributor.LastClaimPeriod == config.CurrentPeriod {
		return nil, rewardsTypes.ErrAlreadyClaimedThisPeriod
	}

	if contributor.CurrentMonthPoints == 0 || config.PeriodTotalPoints == 0 {
		return nil, rewardsTypes.ErrInsufficientBalance
	}

	// Release sizing uses the pool snapshot taken at the first payout of
	// the period.
	sizingPool := poolSize
	if periodRecord != nil {
		sizingPool = periodRecord.TotalTokens
	}

	releasable, err := d.reserve.ComputeRelease(
		config.PeriodTotalPoints,
		config.MonthlyThreshold,
		config.ReserveRatio,
		sizingPool,
	)
	if err != nil {
		return nil, err
	}

	amount, err := numbers.MulDivFloorU64(releasable, contributor.CurrentMonthPoints, config.PeriodTotalPoints)
	if err != nil {
		return nil, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, err.Error())
	}
	if amount == 0 {
		return nil, rewardsTypes.ErrInsufficientBalance
	}

	updatedContributor, err := d.ledger.ApplyPayout(contributor, amount, config.CurrentPeriod, now)
	if err != nil {
		return nil, err
	}

	updatedPeriod, err := d.applyToPeriodRecord(periodRecord, config, amount, poolSize, now)
	if err != nil {
		return nil, err
	}

	d.logger.Sugar().Debugw("Computed payout",
		zap.String("contributorId", contributor.Id),
		zap.Uint64("period", config.CurrentPeriod),
		zap.Uint64("amount", amount),
		zap.Uint64("releasable", releasable),
	)

	return &PayoutResult{
		Amount:      amount,
		Contributor: updatedContributor,
		Period:      updatedPeriod,
	}, nil
}

func (d *Distributor) applyToPeriodRecord(
	periodRecord *rewardsTypes.DistributionPeriod,
	config *rewardsTypes.PointsConfig,
	amount uint64,
	poolSize uint64,
	now time.Time,
) (*rewardsTypes.DistributionPeriod, error) {
	var updated rewardsTypes.DistributionPeriod
	if periodRecord == nil {
		updated = rewardsTypes.DistributionPeriod{
			ConfigId:    config.Id,
			Period:      config.CurrentPeriod,
			TotalTokens: poolSize,
			StartTime:   now,
		}
	} else {
		updated = *periodRecord
	}

	distributed, err := numbers.CheckedAddU64(updated.TokensDistributed, amount)
	if err != nil {
		return nil, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "tokens distributed")
	}
	updated.TokensDistributed = distributed
	updated.TotalPoints = config.PeriodTotalPoints
	return &updated, nil
}
