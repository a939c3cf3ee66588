package rewards

import (
	"testing"
	"time"

	"github.com/aixblock/rewards-engine/internal/logger"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/stretchr/testify/assert"
)

func setupDistributor() *Distributor {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	return NewDistributor(NewReserve(l), NewLedger(l), l)
}

func Test_Distributor(t *testing.T) {
	d := setupDistributor()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	newConfig := func(totalPoints uint64) *rewardsTypes.PointsConfig {
		return &rewardsTypes.PointsConfig{
			Id:                "config-1",
			MonthlyThreshold:  500,
			ReserveRatio:      5000,
			MaxPointsPerType:  1000,
			CurrentPeriod:     1,
			PeriodTotalPoints: totalPoints,
		}
	}

	t.Run("Proportional share with reserve withholding", func(t *testing.T) {
		// 300 of 500 threshold -> releasable is 50% of the 1000 pool; the
		// contributor holds 60 of 300 points -> floor(500*60/300) = 100.
		contributor := &rewardsTypes.Contributor{
			Id:                 "contributor-1",
			CurrentMonthPoints: 60,
		}

		result, err := d.Payout(contributor, newConfig(300), nil, 1000, now)
		assert.Nil(t, err)
		assert.Equal(t, uint64(100), result.Amount)
		assert.Equal(t, uint64(100), result.Contributor.TokensClaimed)
		assert.Equal(t, uint64(0), result.Contributor.CurrentMonthPoints)
		assert.Equal(t, uint64(1), result.Contributor.LastClaimPeriod)
	})

	t.Run("Full release at threshold", func(t *testing.T) {
		contributor := &rewardsTypes.Contributor{
			Id:                 "contributor-1",
			CurrentMonthPoints: 250,
		}

		result, err := d.Payout(contributor, newConfig(500), nil, 1000, now)
		assert.Nil(t, err)
		assert.Equal(t, uint64(500), result.Amount)
	})

	t.Run("First payout seeds the period record", func(t *testing.T) {
		contributor := &rewardsTypes.Contributor{
			Id:                 "contributor-1",
			CurrentMonthPoints: 60,
		}

		result, err := d.Payout(contributor, newConfig(300), nil, 1000, now)
		assert.Nil(t, err)
		assert.Equal(t, uint64(1), result.Period.Period)
		assert.Equal(t, uint64(1000), result.Period.TotalTokens)
		assert.Equal(t, uint64(100), result.Period.TokensDistributed)
		assert.Equal(t, uint64(300), result.Period.TotalPoints)
		assert.Equal(t, now, result.Period.StartTime)
	})

	t.Run("Later payouts accumulate on the period record", func(t *testing.T) {
		config := newConfig(300)
		first := &rewardsTypes.Contributor{Id: "a", CurrentMonthPoints: 60}
		second := &rewardsTypes.Contributor{Id: "b", CurrentMonthPoints: 90}

		r1, err := d.Payout(first, config, nil, 1000, now)
		assert.Nil(t, err)

		r2, err := d.Payout(second, config, r1.Period, 1000, now.Add(time.Second))
		assert.Nil(t, err)
		assert.Equal(t, uint64(150), r2.Amount)
		assert.Equal(t, uint64(250), r2.Period.TokensDistributed)
		// TotalTokens keeps the balance observed at the first payout.
		assert.Equal(t, uint64(1000), r2.Period.TotalTokens)
	})

	t.Run("Later payouts size shares from the period snapshot", func(t *testing.T) {
		// 90 + 50 of 140 points below the 500 threshold -> releasable is 50%
		// of the 1000 pool. The second share stays floor(500*50/140) = 178
		// even though the live pool already lost the first 321.
		config := newConfig(140)
		first := &rewardsTypes.Contributor{Id: "a", CurrentMonthPoints: 90}
		second := &rewardsTypes.Contributor{Id: "b", CurrentMonthPoints: 50}

		r1, err := d.Payout(first, config, nil, 1000, now)
		assert.Nil(t, err)
		assert.Equal(t, uint64(321), r1.Amount)

		r2, err := d.Payout(second, config, r1.Period, 1000-r1.Amount, now.Add(time.Second))
		assert.Nil(t, err)
		assert.Equal(t, uint64(178), r2.Amount)
		assert.Equal(t, uint64(499), r2.Period.TokensDistributed)
		assert.Equal(t, uint64(1000), r2.Period.TotalTokens)
	})

	t.Run("Sum of floored shares never exceeds the releasable pool", func(t *testing.T) {
		// Three contributors with points that do not divide the pool evenly.
		config := newConfig(700)
		config.MonthlyThreshold = 700
		pool := uint64(1000)

		points := []uint64{333, 333, 34}
		var distributed uint64
		var periodRecord *rewardsTypes.DistributionPeriod

		for i, p := range points {
			contributor := &rewardsTypes.Contributor{
				Id:                 string(rune('a' + i)),
				CurrentMonthPoints: p,
			}
			result, err := d.Payout(contributor, config, periodRecord, pool, now.Add(time.Duration(i)*time.Second))
			assert.Nil(t, err)
			distributed += result.Amount
			periodRecord = result.Period
		}

		assert.LessOrEqual(t, distributed, pool)
		// Floor residual is bounded by one unit per contributor.
		assert.GreaterOrEqual(t, distributed, pool-uint64(len(points)))
	})

	t.Run("Second payout in the same period is rejected", func(t *testing.T) {
		config := newConfig(300)
		contributor := &rewardsTypes.Contributor{Id: "a", CurrentMonthPoints: 60}

		result, err := d.Payout(contributor, config, nil, 1000, now)
		assert.Nil(t, err)

		_, err = d.Payout(result.Contributor, config, result.Period, 1000, now.Add(time.Minute))
		assert.ErrorIs(t, err, rewardsTypes.ErrAlreadyClaimedThisPeriod)
	})

	t.Run("Payout allowed again after the period advances", func(t *testing.T) {
		config := newConfig(300)
		contributor := &rewardsTypes.Contributor{Id: "a", CurrentMonthPoints: 60}

		result, err := d.Payout(contributor, config, nil, 1000, now)
		assert.Nil(t, err)

		nextConfig := newConfig(200)
		nextConfig.CurrentPeriod = 2
		paid := result.Contributor
		paid.CurrentMonthPoints = 40

		next, err := d.Payout(paid, nextConfig, nil, 1000, now.Add(time.Hour))
		assert.Nil(t, err)
		assert.Equal(t, uint64(2), next.Contributor.LastClaimPeriod)
	})

	t.Run("First payout in period zero is not mistaken for a prior claim", func(t *testing.T) {
		config := newConfig(300)
		config.CurrentPeriod = 0
		contributor := &rewardsTypes.Contributor{Id: "a", CurrentMonthPoints: 60}

		result, err := d.Payout(contributor, config, nil, 1000, now)
		assert.Nil(t, err)
		assert.Equal(t, uint64(100), result.Amount)

		_, err = d.Payout(result.Contributor, config, result.Period, 1000, now.Add(time.Minute))
		assert.ErrorIs(t, err, rewardsTypes.ErrAlreadyClaimedThisPeriod)
	})

	t.Run("Zero contributor points fails with insufficient balance", func(t *testing.T) {
		contributor := &rewardsTypes.Contributor{Id: "a", CurrentMonthPoints: 0}
		_, err := d.Payout(contributor, newConfig(300), nil, 1000, now)
		assert.ErrorIs(t, err, rewardsTypes.ErrInsufficientBalance)
	})

	t.Run("Zero period total fails with insufficient balance", func(t *testing.T) {
		contributor := &rewardsTypes.Contributor{Id: "a", CurrentMonthPoints: 10}
		_, err := d.Payout(contributor, newConfig(0), nil, 1000, now)
		assert.ErrorIs(t, err, rewardsTypes.ErrInsufficientBalance)
	})

	t.Run("Share rounding to zero fails rather than issuing nothing", func(t *testing.T) {
		// 1 of 1000 points against a 100 token releasable pool floors to 0.
		config := newConfig(1000)
		config.MonthlyThreshold = 1000
		contributor := &rewardsTypes.Contributor{Id: "a", CurrentMonthPoints: 1}
		_, err := d.Payout(contributor, config, nil, 100, now)
		assert.ErrorIs(t, err, rewardsTypes.ErrInsufficientBalance)
	})
}
