package rewards

import (
	"time"

	"github.com/aixblock/rewards-engine/internal/types/numbers"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Accountant drives the period lifecycle for one points config: accrual of
// the running period total and the close that advances the period counter.
// Closing is the only place period advancement happens.
type Accountant struct {
	logger *zap.Logger
}

func NewAccountant(l *zap.Logger) *Accountant {
	return &Accountant{
		logger: l,
	}
}

// Accrue adds points to the running total of the open period.
func (a *Accountant) Accrue(config *rewardsTypes.PointsConfig, points uint64) (*rewardsTypes.PointsConfig, error) {
	updated := *config

	total, err := numbers.CheckedAddU64(updated.PeriodTotalPoints, points)
	if err != nil {
		return nil, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "period total points")
	}
	updated.PeriodTotalPoints = total
	return &updated, nil
}

// ClosePeriod evaluates the open period against the threshold and advances
// the period counter. The close is rejected until a full period length has
// elapsed since the previous close; exactly at the boundary it is accepted.
// Payouts for the closed period must have been issued before closing, since
// the running total resets to zero here.
func (a *Accountant) ClosePeriod(
	config *rewardsTypes.PointsConfig,
	now time.Time,
) (*rewardsTypes.PointsConfig, *rewardsTypes.DistributionDecision, error) {
	if now.Sub(config.LastCalculationTime) < rewardsTypes.PeriodLength {
		return nil, nil, rewardsTypes.ErrPeriodNotElapsed
	}
	if config.PeriodTotalPoints == 0 {
		return nil, nil, rewardsTypes.ErrNoContributions
	}

	nextPeriod, err := numbers.CheckedAddU64(config.CurrentPeriod, 1)
	if err != nil {
		return nil, nil, rewardsTypes.ErrPeriodOverflow
	}

	decision := &rewardsTypes.DistributionDecision{
		ClosedPeriod:   config.CurrentPeriod,
		NextPeriod:     nextPeriod,
		TotalPoints:    config.PeriodTotalPoints,
		MeetsThreshold: config.PeriodTotalPoints >= config.MonthlyThreshold,
		ClosedAt:       now,
	}

	if !decision.MeetsThreshold {
		a.logger.Sugar().Infow("Period below monthly threshold, reserve ratio applies",
			zap.Uint64("period", config.CurrentPeriod),
			zap.Uint64("totalPoints", config.PeriodTotalPoints),
			zap.Uint64("monthlyThreshold", config.MonthlyThreshold),
		)
	}

	updated := *config
	updated.CurrentPeriod = nextPeriod
	updated.PeriodTotalPoints = 0
	updated.LastCalculationTime = now
	return &updated, decision, nil
}
