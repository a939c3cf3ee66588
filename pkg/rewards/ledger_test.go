package rewards

import (
	"math"
	"testing"
	"time"

	"github.com/aixblock/rewards-engine/internal/logger"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/stretchr/testify/assert"
)

func Test_Ledger(t *testing.T) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	lg := NewLedger(l)

	t.Run("Record accrues both counters and the contribution count", func(t *testing.T) {
		contributor := &rewardsTypes.Contributor{
			Id:                 "contributor-1",
			TotalPoints:        100,
			CurrentMonthPoints: 40,
			ContributionCount:  3,
		}

		updated, err := lg.Record(contributor, 60)
		assert.Nil(t, err)
		assert.Equal(t, uint64(160), updated.TotalPoints)
		assert.Equal(t, uint64(100), updated.CurrentMonthPoints)
		assert.Equal(t, uint64(4), updated.ContributionCount)

		// The input snapshot is untouched.
		assert.Equal(t, uint64(100), contributor.TotalPoints)
	})

	t.Run("Record fails atomically on overflow", func(t *testing.T) {
		contributor := &rewardsTypes.Contributor{
			TotalPoints:        math.MaxUint64,
			CurrentMonthPoints: 0,
		}

		updated, err := lg.Record(contributor, 1)
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, rewardsTypes.ErrArithmeticOverflow)
	})

	t.Run("ResetMonthly is idempotent", func(t *testing.T) {
		contributor := &rewardsTypes.Contributor{
			TotalPoints:        500,
			CurrentMonthPoints: 120,
		}

		once := lg.ResetMonthly(contributor)
		assert.Equal(t, uint64(0), once.CurrentMonthPoints)
		assert.Equal(t, uint64(500), once.TotalPoints)

		twice := lg.ResetMonthly(once)
		assert.Equal(t, uint64(0), twice.CurrentMonthPoints)
		assert.Equal(t, uint64(500), twice.TotalPoints)
	})

	t.Run("ApplyPayout credits tokens and closes out the month", func(t *testing.T) {
		now := time.Now()
		contributor := &rewardsTypes.Contributor{
			CurrentMonthPoints: 60,
			TokensClaimed:      10,
		}

		updated, err := lg.ApplyPayout(contributor, 100, 1, now)
		assert.Nil(t, err)
		assert.Equal(t, uint64(110), updated.TokensClaimed)
		assert.Equal(t, uint64(0), updated.CurrentMonthPoints)
		assert.Equal(t, uint64(1), updated.LastClaimPeriod)
		assert.Equal(t, now, updated.LastClaimTime)
	})

	t.Run("ApplyPayout rejects a second claim for the same period", func(t *testing.T) {
		now := time.Now()
		contributor := &rewardsTypes.Contributor{
			CurrentMonthPoints: 60,
		}

		updated, err := lg.ApplyPayout(contributor, 100, 1, now)
		assert.Nil(t, err)

		_, err = lg.ApplyPayout(updated, 100, 1, now.Add(time.Minute))
		assert.ErrorIs(t, err, rewardsTypes.ErrAlreadyClaimedThisPeriod)
	})

	t.Run("ApplyPayout allows a claim in the next period", func(t *testing.T) {
		now := time.Now()
		contributor := &rewardsTypes.Contributor{
			CurrentMonthPoints: 60,
			LastClaimPeriod:    1,
			LastClaimTime:      now.Add(-time.Minute),
		}

		updated, err := lg.ApplyPayout(contributor, 50, 2, now)
		assert.Nil(t, err)
		assert.Equal(t, uint64(2), updated.LastClaimPeriod)
	})

	t.Run("ApplyPayout allows the first claim in period zero", func(t *testing.T) {
		now := time.Now()
		contributor := &rewardsTypes.Contributor{
			CurrentMonthPoints: 60,
		}

		updated, err := lg.ApplyPayout(contributor, 50, 0, now)
		assert.Nil(t, err)
		assert.Equal(t, uint64(0), updated.LastClaimPeriod)

		_, err = lg.ApplyPayout(updated, 50, 0, now.Add(time.Minute))
		assert.ErrorIs(t, err, rewardsTypes.ErrAlreadyClaimedThisPeriod)
	})
}
