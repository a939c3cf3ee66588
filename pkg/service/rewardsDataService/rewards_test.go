package rewardsDataService

import (
	"context"
	"testing"
	"time"

	"github.com/aixblock/rewards-engine/internal/logger"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/storage/memory"
	"github.com/aixblock/rewards-engine/pkg/transfer/memoryTransfer"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T) (*RewardsDataService, *memory.InMemoryRewardsStore, *memoryTransfer.MemoryTransferor) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	store := memory.NewInMemoryRewardsStore()
	transferor := memoryTransfer.NewMemoryTransferor()
	rds := NewRewardsDataService(store, transferor, l, nil)
	return rds, store, transferor
}

func Test_RewardsDataService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	seedConfig := func(store *memory.InMemoryRewardsStore, totalPoints uint64) *rewardsTypes.PointsConfig {
		pc := &rewardsTypes.PointsConfig{
			Id:                  "config-1",
			Authority:           "authority",
			MonthlyThreshold:    500,
			MaxPointsPerType:    1000,
			ReserveRatio:        5000,
			CurrentPeriod:       1,
			PeriodTotalPoints:   totalPoints,
			LastCalculationTime: now,
		}
		created, err := store.CreatePointsConfig(pc)
		assert.Nil(t, err)
		return created
	}

	t.Run("GetReserveStatus combines reserve, pool and policy", func(t *testing.T) {
		rds, store, transferor := setup(t)
		pc := seedConfig(store, 0)

		err := store.UpsertReserveAccount(&rewardsTypes.ReserveAccount{ConfigId: pc.Id, Balance: 300, UpdatedAt: now})
		assert.Nil(t, err)
		_, err = transferor.Credit(pc.Id, 1000)
		assert.Nil(t, err)

		status, err := rds.GetReserveStatus(ctx, pc.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(300), status.ReserveBalance)
		assert.Equal(t, uint64(1000), status.PoolBalance)
		assert.Equal(t, uint64(5000), status.ReserveRatio)
		assert.Equal(t, uint64(500), status.Threshold)
	})

	t.Run("GetReserveStatus tolerates a missing reserve account", func(t *testing.T) {
		rds, store, _ := setup(t)
		pc := seedConfig(store, 0)

		status, err := rds.GetReserveStatus(ctx, pc.Id)
		assert.Nil(t, err)
		assert.Equal(t, uint64(0), status.ReserveBalance)
	})

	t.Run("GetContributorShares projects the period split", func(t *testing.T) {
		rds, store, transferor := setup(t)
		// 300 of 500 threshold: releasable is half of the 1000 pool.
		pc := seedConfig(store, 300)
		_, err := transferor.Credit(pc.Id, 1000)
		assert.Nil(t, err)

		_, err = store.CreateContributor(&rewardsTypes.Contributor{Id: "a", Authority: "alice", CurrentMonthPoints: 60})
		assert.Nil(t, err)
		_, err = store.CreateContributor(&rewardsTypes.Contributor{Id: "b", Authority: "bob", CurrentMonthPoints: 240})
		assert.Nil(t, err)
		// claimed this period already, excluded from the projection
		_, err = store.CreateContributor(&rewardsTypes.Contributor{
			Id: "c", Authority: "carol", CurrentMonthPoints: 10, LastClaimPeriod: 1, LastClaimTime: now,
		})
		assert.Nil(t, err)

		shares, err := rds.GetContributorShares(ctx, pc.Id)
		assert.Nil(t, err)
		assert.Equal(t, 2, len(shares))

		assert.Equal(t, "a", shares[0].ContributorId)
		assert.Equal(t, uint64(100), shares[0].ProjectedAmount)
		assert.Equal(t, "20", shares[0].SharePercent.String())

		assert.Equal(t, "b", shares[1].ContributorId)
		assert.Equal(t, uint64(400), shares[1].ProjectedAmount)
		assert.Equal(t, "80", shares[1].SharePercent.String())
	})

	t.Run("GetContributorShares is empty with no accrued points", func(t *testing.T) {
		rds, store, _ := setup(t)
		pc := seedConfig(store, 0)

		shares, err := rds.GetContributorShares(ctx, pc.Id)
		assert.Nil(t, err)
		assert.Equal(t, 0, len(shares))
	})
}
