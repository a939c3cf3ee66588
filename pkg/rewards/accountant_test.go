package rewards

import (
	"math"
	"testing"
	"time"

	"github.com/aixblock/rewards-engine/internal/logger"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/stretchr/testify/assert"
)

func Test_Accountant(t *testing.T) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	a := NewAccountant(l)

	opened := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	newConfig := func(totalPoints uint64) *rewardsTypes.PointsConfig {
		return &rewardsTypes.PointsConfig{
			Id:                  "config-1",
			MonthlyThreshold:    500,
			ReserveRatio:        5000,
			CurrentPeriod:       1,
			PeriodTotalPoints:   totalPoints,
			LastCalculationTime: opened,
		}
	}

	t.Run("Accrue adds to the running total", func(t *testing.T) {
		config := newConfig(100)
		updated, err := a.Accrue(config, 50)
		assert.Nil(t, err)
		assert.Equal(t, uint64(150), updated.PeriodTotalPoints)
		assert.Equal(t, uint64(100), config.PeriodTotalPoints)
	})

	t.Run("Accrue fails on overflow", func(t *testing.T) {
		config := newConfig(math.MaxUint64)
		_, err := a.Accrue(config, 1)
		assert.ErrorIs(t, err, rewardsTypes.ErrArithmeticOverflow)
	})

	t.Run("Close rejected before the period elapses", func(t *testing.T) {
		config := newConfig(600)
		_, _, err := a.ClosePeriod(config, opened.Add(rewardsTypes.PeriodLength-time.Second))
		assert.ErrorIs(t, err, rewardsTypes.ErrPeriodNotElapsed)
	})

	t.Run("Close accepted exactly at the boundary", func(t *testing.T) {
		config := newConfig(600)
		updated, decision, err := a.ClosePeriod(config, opened.Add(rewardsTypes.PeriodLength))
		assert.Nil(t, err)
		assert.True(t, decision.MeetsThreshold)
		assert.Equal(t, uint64(1), decision.ClosedPeriod)
		assert.Equal(t, uint64(2), updated.CurrentPeriod)
	})

	t.Run("Close rejected with no contributions", func(t *testing.T) {
		config := newConfig(0)
		_, _, err := a.ClosePeriod(config, opened.Add(rewardsTypes.PeriodLength))
		assert.ErrorIs(t, err, rewardsTypes.ErrNoContributions)
	})

	t.Run("Close resets totals and stamps the close time", func(t *testing.T) {
		closeTime := opened.Add(rewardsTypes.PeriodLength + time.Hour)
		config := newConfig(300)

		updated, decision, err := a.ClosePeriod(config, closeTime)
		assert.Nil(t, err)
		assert.False(t, decision.MeetsThreshold)
		assert.Equal(t, uint64(300), decision.TotalPoints)
		assert.Equal(t, uint64(0), updated.PeriodTotalPoints)
		assert.Equal(t, closeTime, updated.LastCalculationTime)

		// A second close right away is rejected; the window restarted.
		_, _, err = a.ClosePeriod(updated, closeTime.Add(time.Hour))
		assert.ErrorIs(t, err, rewardsTypes.ErrPeriodNotElapsed)
	})

	t.Run("Close fails when the period counter cannot advance", func(t *testing.T) {
		config := newConfig(600)
		config.CurrentPeriod = math.MaxUint64
		_, _, err := a.ClosePeriod(config, opened.Add(rewardsTypes.PeriodLength))
		assert.ErrorIs(t, err, rewardsTypes.ErrPeriodOverflow)
	})
}
