package coordinator

import (
	"testing"
	"time"

	"github.com/aixblock/rewards-engine/internal/logger"
	"github.com/aixblock/rewards-engine/pkg/eventBus"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/storage/memory"
	"github.com/aixblock/rewards-engine/pkg/transfer/memoryTransfer"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T) (*Coordinator, *memoryTransfer.MemoryTransferor, *clockwork.FakeClock) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	store := memory.NewInMemoryRewardsStore()
	transferor := memoryTransfer.NewMemoryTransferor()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	eb := eventBus.NewEventBus(l)

	c := NewCoordinator(store, transferor, eb, nil, clock, l, nil)
	return c, transferor, clock
}

func Test_Coordinator(t *testing.T) {
	t.Run("InitializeConfig applies program defaults", func(t *testing.T) {
		c, _, _ := setup(t)

		pc, err := c.InitializeConfig("authority", 0, 0, 0)
		assert.Nil(t, err)
		assert.Equal(t, uint64(rewardsTypes.DefaultMonthlyThreshold), pc.MonthlyThreshold)
		assert.Equal(t, uint64(rewardsTypes.DefaultReserveRatio), pc.ReserveRatio)
		assert.Equal(t, uint64(rewardsTypes.DefaultMaxPointsPerType), pc.MaxPointsPerType)
		assert.Equal(t, uint64(1), pc.CurrentPeriod)
	})

	t.Run("InitializeConfig rejects an out-of-range ratio", func(t *testing.T) {
		c, _, _ := setup(t)

		_, err := c.InitializeConfig("authority", 500, 10001, 1000)
		assert.ErrorIs(t, err, rewardsTypes.ErrInvalidRatio)
	})

	t.Run("CreateContributor enforces one account per authority", func(t *testing.T) {
		c, _, _ := setup(t)

		contributor, err := c.CreateContributor("alice")
		assert.Nil(t, err)
		assert.NotEmpty(t, contributor.Id)

		_, err = c.CreateContributor("alice")
		assert.ErrorIs(t, err, rewardsTypes.ErrInvalidInput)
	})

	t.Run("RecordContribution scores and accrues points", func(t *testing.T) {
		c, _, _ := setup(t)

		pc, err := c.InitializeConfig("authority", 0, 0, 0)
		assert.Nil(t, err)
		alice, err := c.CreateContributor("alice")
		assert.Nil(t, err)

		// PullRequest base 30 * impact 3 = 90.
		contribution, err := c.RecordContribution(pc.Id, alice.Id, rewardsTypes.ContributionType_PullRequest, 3, "pr-1234")
		assert.Nil(t, err)
		assert.Equal(t, uint64(90), contribution.Points)
		assert.Equal(t, uint64(1), contribution.Period)
		assert.Equal(t, uint64(1), contribution.Sequence)

		updatedConfig, err := c.store.GetPointsConfig(pc.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(90), updatedConfig.PeriodTotalPoints)

		updatedAlice, err := c.store.GetContributor(alice.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(90), updatedAlice.TotalPoints)
		assert.Equal(t, uint64(90), updatedAlice.CurrentMonthPoints)
	})

	t.Run("RecordContribution rejects bad input", func(t *testing.T) {
		c, _, _ := setup(t)

		pc, _ := c.InitializeConfig("authority", 0, 0, 0)
		alice, _ := c.CreateContributor("alice")

		_, err := c.RecordContribution(pc.Id, alice.Id, rewardsTypes.ContributionType(99), 3, "")
		assert.ErrorIs(t, err, rewardsTypes.ErrInvalidInput)

		_, err = c.RecordContribution(pc.Id, alice.Id, rewardsTypes.ContributionType_Code, 3, "this metadata tag is over thirty two bytes long")
		assert.ErrorIs(t, err, rewardsTypes.ErrInvalidInput)

		_, err = c.RecordContribution(pc.Id, "missing", rewardsTypes.ContributionType_Code, 3, "")
		assert.ErrorIs(t, err, rewardsTypes.ErrNotFound)
	})

	t.Run("DistributeTokens pays proportional shares from the pool", func(t *testing.T) {
		c, transferor, _ := setup(t)

		pc, _ := c.InitializeConfig("authority", 0, 0, 0)
		alice, _ := c.CreateContributor("alice")
		bob, _ := c.CreateContributor("bob")

		// 90 + 50 = 140 points, below the 500 threshold.
		_, err := c.RecordContribution(pc.Id, alice.Id, rewardsTypes.ContributionType_PullRequest, 3, "")
		assert.Nil(t, err)
		_, err = c.RecordContribution(pc.Id, bob.Id, rewardsTypes.ContributionType_Code, 5, "")
		assert.Nil(t, err)

		_, err = c.FundPool(pc.Id, 1000)
		assert.Nil(t, err)

		// Below threshold releases half the pool: floor(500*90/140) = 321.
		result, err := c.DistributeTokens(pc.Id, alice.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(321), result.Amount)
		assert.Equal(t, uint64(321), result.Contributor.TokensClaimed)
		assert.Equal(t, uint64(0), result.Contributor.CurrentMonthPoints)

		balance, err := transferor.GetBalance(pc.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(679), balance)

		// floor(500*50/140) = 178 for bob, from the same period record.
		bobResult, err := c.DistributeTokens(pc.Id, bob.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(178), bobResult.Amount)
		assert.Equal(t, uint64(499), bobResult.Period.TokensDistributed)

		// A second claim in the same period is rejected.
		_, err = c.DistributeTokens(pc.Id, alice.Id)
		assert.ErrorIs(t, err, rewardsTypes.ErrAlreadyClaimedThisPeriod)
	})

	t.Run("ClosePeriod requires elapsed time and the config authority", func(t *testing.T) {
		c, _, clock := setup(t)

		pc, _ := c.InitializeConfig("authority", 0, 0, 0)
		alice, _ := c.CreateContributor("alice")
		_, err := c.RecordContribution(pc.Id, alice.Id, rewardsTypes.ContributionType_PullRequest, 3, "")
		assert.Nil(t, err)

		_, err = c.ClosePeriod(pc.Id, "someone-else")
		assert.ErrorIs(t, err, rewardsTypes.ErrUnauthorized)

		_, err = c.ClosePeriod(pc.Id, "authority")
		assert.ErrorIs(t, err, rewardsTypes.ErrPeriodNotElapsed)

		clock.Advance(rewardsTypes.PeriodLength)

		decision, err := c.ClosePeriod(pc.Id, "authority")
		assert.Nil(t, err)
		assert.Equal(t, uint64(1), decision.ClosedPeriod)
		assert.Equal(t, uint64(2), decision.NextPeriod)
		assert.Equal(t, uint64(90), decision.TotalPoints)
		assert.False(t, decision.MeetsThreshold)

		updated, err := c.store.GetPointsConfig(pc.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(2), updated.CurrentPeriod)
		assert.Equal(t, uint64(0), updated.PeriodTotalPoints)
	})

	t.Run("ClosePeriod completes the period record after payouts", func(t *testing.T) {
		c, _, clock := setup(t)

		pc, _ := c.InitializeConfig("authority", 0, 0, 0)
		alice, _ := c.CreateContributor("alice")
		_, err := c.RecordContribution(pc.Id, alice.Id, rewardsTypes.ContributionType_PullRequest, 3, "")
		assert.Nil(t, err)
		_, err = c.FundPool(pc.Id, 1000)
		assert.Nil(t, err)
		_, err = c.DistributeTokens(pc.Id, alice.Id)
		assert.Nil(t, err)

		clock.Advance(rewardsTypes.PeriodLength)
		_, err = c.ClosePeriod(pc.Id, "authority")
		assert.Nil(t, err)

		record, err := c.store.GetDistributionPeriod(pc.Id, 1)
		assert.Nil(t, err)
		assert.True(t, record.IsCompleted)
		assert.False(t, record.EndTime.IsZero())
	})

	t.Run("ResetContributorMonthly zeroes the running counter", func(t *testing.T) {
		c, _, _ := setup(t)

		pc, _ := c.InitializeConfig("authority", 0, 0, 0)
		alice, _ := c.CreateContributor("alice")
		_, err := c.RecordContribution(pc.Id, alice.Id, rewardsTypes.ContributionType_Documentation, 2, "")
		assert.Nil(t, err)

		_, err = c.ResetContributorMonthly(pc.Id, alice.Id, "someone-else")
		assert.ErrorIs(t, err, rewardsTypes.ErrUnauthorized)

		updated, err := c.ResetContributorMonthly(pc.Id, alice.Id, "authority")
		assert.Nil(t, err)
		assert.Equal(t, uint64(0), updated.CurrentMonthPoints)
		assert.Equal(t, uint64(30), updated.TotalPoints)
	})

	t.Run("Reserve deposit, transfer and config update", func(t *testing.T) {
		c, transferor, _ := setup(t)

		pc, _ := c.InitializeConfig("authority", 0, 0, 0)

		_, err := c.DepositToReserve(pc.Id, "someone-else", 500)
		assert.ErrorIs(t, err, rewardsTypes.ErrUnauthorized)

		account, err := c.DepositToReserve(pc.Id, "authority", 500)
		assert.Nil(t, err)
		assert.Equal(t, uint64(500), account.Balance)

		_, err = c.TransferFromReserve(pc.Id, "authority", 600)
		assert.ErrorIs(t, err, rewardsTypes.ErrInsufficientReserve)

		account, err = c.TransferFromReserve(pc.Id, "authority", 200)
		assert.Nil(t, err)
		assert.Equal(t, uint64(300), account.Balance)

		poolBalance, err := transferor.GetBalance(pc.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(200), poolBalance)

		newRatio := uint64(2500)
		updated, err := c.UpdateReserveConfig(pc.Id, "authority", &newRatio, nil)
		assert.Nil(t, err)
		assert.Equal(t, uint64(2500), updated.ReserveRatio)
		assert.Equal(t, uint64(rewardsTypes.DefaultMonthlyThreshold), updated.MonthlyThreshold)

		badRatio := uint64(10001)
		_, err = c.UpdateReserveConfig(pc.Id, "authority", &badRatio, nil)
		assert.ErrorIs(t, err, rewardsTypes.ErrInvalidRatio)
	})
}
