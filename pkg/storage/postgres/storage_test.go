package postgres

import (
	"os"
	"testing"
	"time"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/internal/logger"
	"github.com/aixblock/rewards-engine/internal/tests"
	"github.com/aixblock/rewards-engine/pkg/postgres"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup() (
	string,
	*gorm.DB,
	*zap.Logger,
	*config.Config,
	error,
) {
	cfg := config.NewConfig()
	cfg.Debug = os.Getenv(config.Debug) == "true"
	cfg.DatabaseConfig = *tests.GetDbConfigFromEnv()

	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

	dbname, _, grm, err := postgres.GetTestPostgresDatabase(cfg.DatabaseConfig, cfg, l)
	if err != nil {
		return dbname, nil, nil, nil, err
	}

	return dbname, grm, l, cfg, nil
}

func Test_PostgresRewardsStore(t *testing.T) {
	if !tests.LargeTestsEnabled() {
		t.Skipf("Skipping large test")
		return
	}

	dbname, grm, l, cfg, err := setup()
	if err != nil {
		t.Fatalf("Failed to setup: %v", err)
	}
	store := NewPostgresRewardsStore(grm, l, cfg)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	var configId string
	var contributorId string

	t.Run("Insert and fetch a points config", func(t *testing.T) {
		created, err := store.CreatePointsConfig(&rewardsTypes.PointsConfig{
			Id:                  "cfg-1",
			Authority:           "alice",
			MonthlyThreshold:    500,
			MaxPointsPerType:    1000,
			ReserveRatio:        5000,
			LastCalculationTime: now,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
		assert.Nil(t, err)
		assert.Equal(t, "cfg-1", created.Id)
		configId = created.Id

		fetched, err := store.GetPointsConfig(configId)
		assert.Nil(t, err)
		assert.Equal(t, uint64(500), fetched.MonthlyThreshold)
		assert.Equal(t, uint64(0), fetched.CurrentPeriod)
	})
	t.Run("Fetching an unknown config returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetPointsConfig("no-such-config")
		assert.True(t, errors.Is(err, rewardsTypes.ErrNotFound))
	})
	t.Run("Update a points config", func(t *testing.T) {
		pc, err := store.GetPointsConfig(configId)
		assert.Nil(t, err)

		pc.CurrentPeriod = 1
		pc.PeriodTotalPoints = 90
		assert.Nil(t, store.UpdatePointsConfig(pc))

		fetched, err := store.GetPointsConfig(configId)
		assert.Nil(t, err)
		assert.Equal(t, uint64(1), fetched.CurrentPeriod)
		assert.Equal(t, uint64(90), fetched.PeriodTotalPoints)
	})
	t.Run("Contributors", func(t *testing.T) {
		created, err := store.CreateContributor(&rewardsTypes.Contributor{
			Id:        "contrib-1",
			Authority: "bob",
			CreatedAt: now,
			UpdatedAt: now,
		})
		assert.Nil(t, err)
		contributorId = created.Id

		t.Run("Duplicate authority is rejected by the unique index", func(t *testing.T) {
			_, err := store.CreateContributor(&rewardsTypes.Contributor{
				Id:        "contrib-2",
				Authority: "bob",
				CreatedAt: now,
				UpdatedAt: now,
			})
			assert.NotNil(t, err)
			assert.True(t, postgres.IsDuplicateKeyError(err))
		})
		t.Run("Fetch by id and by authority", func(t *testing.T) {
			byId, err := store.GetContributor(contributorId)
			assert.Nil(t, err)
			assert.Equal(t, "bob", byId.Authority)

			byAuth, err := store.GetContributorByAuthority("bob")
			assert.Nil(t, err)
			assert.Equal(t, contributorId, byAuth.Id)
		})
		t.Run("Update accrued points", func(t *testing.T) {
			c, err := store.GetContributor(contributorId)
			assert.Nil(t, err)

			c.TotalPoints = 90
			c.CurrentMonthPoints = 90
			c.ContributionCount = 1
			assert.Nil(t, store.UpdateContributor(c))

			fetched, err := store.GetContributor(contributorId)
			assert.Nil(t, err)
			assert.Equal(t, uint64(90), fetched.TotalPoints)
			assert.Equal(t, uint64(1), fetched.ContributionCount)
		})
		t.Run("List contributors", func(t *testing.T) {
			all, err := store.ListContributors()
			assert.Nil(t, err)
			assert.Equal(t, 1, len(all))
		})
	})
	t.Run("Contributions", func(t *testing.T) {
		inserted, err := store.InsertContribution(&rewardsTypes.Contribution{
			Id:               "contribution-1",
			ContributorId:    contributorId,
			Sequence:         1,
			ContributionType: rewardsTypes.ContributionType_PullRequest,
			Points:           90,
			Timestamp:        now,
			Metadata:         "pr-123",
			Period:           0,
		})
		assert.Nil(t, err)
		assert.Equal(t, uint64(90), inserted.Points)

		forContributor, err := store.ListContributionsForContributor(contributorId)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(forContributor))

		forPeriod, err := store.ListContributionsForPeriod(0)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(forPeriod))
	})
	t.Run("Distribution periods", func(t *testing.T) {
		err := store.UpsertDistributionPeriod(&rewardsTypes.DistributionPeriod{
			ConfigId:    configId,
			Period:      0,
			TotalTokens: 1000,
			TotalPoints: 90,
			StartTime:   now,
		})
		assert.Nil(t, err)

		t.Run("Upsert overwrites the existing row", func(t *testing.T) {
			err := store.UpsertDistributionPeriod(&rewardsTypes.DistributionPeriod{
				ConfigId:          configId,
				Period:            0,
				TotalTokens:       1000,
				TokensDistributed: 500,
				TotalPoints:       90,
				IsCompleted:       true,
				StartTime:         now,
				EndTime:           now.Add(time.Hour),
			})
			assert.Nil(t, err)

			dp, err := store.GetDistributionPeriod(configId, 0)
			assert.Nil(t, err)
			assert.Equal(t, uint64(500), dp.TokensDistributed)
			assert.True(t, dp.IsCompleted)
		})
		t.Run("List periods for a config", func(t *testing.T) {
			all, err := store.ListDistributionPeriods(configId)
			assert.Nil(t, err)
			assert.Equal(t, 1, len(all))
		})
	})
	t.Run("Reserve accounts", func(t *testing.T) {
		err := store.UpsertReserveAccount(&rewardsTypes.ReserveAccount{
			ConfigId:  configId,
			Balance:   250,
			UpdatedAt: now,
		})
		assert.Nil(t, err)

		ra, err := store.GetReserveAccount(configId)
		assert.Nil(t, err)
		assert.Equal(t, uint64(250), ra.Balance)

		_, err = store.GetReserveAccount("no-such-config")
		assert.True(t, errors.Is(err, rewardsTypes.ErrNotFound))
	})
	t.Run("Atomically rolls back every write on error", func(t *testing.T) {
		err := store.Atomically(func(txStore storage.RewardsStore) error {
			pc, err := txStore.GetPointsConfig(configId)
			if err != nil {
				return err
			}
			pc.PeriodTotalPoints = 9999
			if err := txStore.UpdatePointsConfig(pc); err != nil {
				return err
			}
			return errors.New("boom")
		})
		assert.NotNil(t, err)

		pc, err := store.GetPointsConfig(configId)
		assert.Nil(t, err)
		assert.Equal(t, uint64(90), pc.PeriodTotalPoints)
	})

	t.Cleanup(func() {
		postgres.TeardownTestDatabase(dbname, cfg, grm, l)
	})
}
