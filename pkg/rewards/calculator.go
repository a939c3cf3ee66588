// Package rewards implements the points-and-distribution accounting core:
// scoring contributions, accruing per-contributor and per-period totals,
// closing periods, sizing the releasable pool against the reserve policy, and
// computing proportional payouts. Every component here is pure: state is
// passed in, new state is returned, and persistence belongs to the caller.
package rewards

import (
	"github.com/aixblock/rewards-engine/internal/types/numbers"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Calculator converts a contribution into points. It holds no state.
type Calculator struct {
	logger *zap.Logger
}

func NewCalculator(l *zap.Logger) *Calculator {
	return &Calculator{
		logger: l,
	}
}

// ClampImpactScore forces an impact score into [1, 5]. Values outside the
// range are clamped here, not rejected; rejection is a boundary concern.
func (c *Calculator) ClampImpactScore(score uint8) uint8 {
	if score < rewardsTypes.MinImpactScore {
		return rewardsTypes.MinImpactScore
	}
	if score > rewardsTypes.MaxImpactScore {
		return rewardsTypes.MaxImpactScore
	}
	return score
}

// ScoreContribution computes base * clamped impact score, capped at
// maxPointsPerType.
func (c *Calculator) ScoreContribution(
	contributionType rewardsTypes.ContributionType,
	impactScore uint8,
	maxPointsPerType uint64,
) (uint64, error) {
	base := contributionType.BasePoints()
	multiplier := uint64(c.ClampImpactScore(impactScore))

	points, err := numbers.CheckedMulU64(base, multiplier)
	if err != nil {
		return 0, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, err.Error())
	}

	if points > maxPointsPerType {
		points = maxPointsPerType
	}
	return points, nil
}
