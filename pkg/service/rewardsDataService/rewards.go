// Package rewardsDataService is the read side of the engine. It answers
// queries about configs, contributors, periods and projected shares without
// mutating any state.
package rewardsDataService

import (
	"context"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/internal/types/numbers"
	"github.com/aixblock/rewards-engine/pkg/rewards"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/storage"
	"github.com/aixblock/rewards-engine/pkg/transfer"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
)

type RewardsDataService struct {
	store        storage.RewardsStore
	transferor   transfer.Transferor
	reserve      *rewards.Reserve
	logger       *zap.Logger
	globalConfig *config.Config
}

func NewRewardsDataService(
	store storage.RewardsStore,
	transferor transfer.Transferor,
	logger *zap.Logger,
	globalConfig *config.Config,
) *RewardsDataService {
	return &RewardsDataService{
		store:        store,
		transferor:   transferor,
		reserve:      rewards.NewReserve(logger),
		logger:       logger,
		globalConfig: globalConfig,
	}
}

func (rds *RewardsDataService) GetConfig(ctx context.Context, configId string) (*rewardsTypes.PointsConfig, error) {
	return rds.store.GetPointsConfig(configId)
}

func (rds *RewardsDataService) GetContributor(ctx context.Context, contributorId string) (*rewardsTypes.Contributor, error) {
	return rds.store.GetContributor(contributorId)
}

func (rds *RewardsDataService) GetContributorByAuthority(ctx context.Context, authority string) (*rewardsTypes.Contributor, error) {
	return rds.store.GetContributorByAuthority(authority)
}

func (rds *RewardsDataService) ListContributors(ctx context.Context) ([]*rewardsTypes.Contributor, error) {
	return rds.store.ListContributors()
}

func (rds *RewardsDataService) ListContributions(ctx context.Context, contributorId string) ([]*rewardsTypes.Contribution, error) {
	return rds.store.ListContributionsForContributor(contributorId)
}

func (rds *RewardsDataService) ListDistributionPeriods(ctx context.Context, configId string) ([]*rewardsTypes.DistributionPeriod, error) {
	return rds.store.ListDistributionPeriods(configId)
}

// ReserveStatus is a combined view of the reserve and the reward pool.
type ReserveStatus struct {
	ConfigId       string
	ReserveBalance uint64
	PoolBalance    uint64
	ReserveRatio   uint64
	Threshold      uint64
}

func (rds *RewardsDataService) GetReserveStatus(ctx context.Context, configId string) (*ReserveStatus, error) {
	pc, err := rds.store.GetPointsConfig(configId)
	if err != nil {
		return nil, err
	}

	account, err := rds.store.GetReserveAccount(configId)
	if err != nil && !errors.Is(err, rewardsTypes.ErrNotFound) {
		return nil, err
	}
	var reserveBalance uint64
	if account != nil {
		reserveBalance = account.Balance
	}

	poolBalance, err := rds.transferor.GetBalance(configId)
	if err != nil {
		return nil, err
	}

	return &ReserveStatus{
		ConfigId:       configId,
		ReserveBalance: reserveBalance,
		PoolBalance:    poolBalance,
		ReserveRatio:   pc.ReserveRatio,
		Threshold:      pc.MonthlyThreshold,
	}, nil
}

// ContributorShare projects what a contributor would receive if the open
// period were paid out at the current pool balance.
type ContributorShare struct {
	ContributorId   string
	Authority       string
	Points          uint64
	SharePercent    decimal.Decimal
	ProjectedAmount uint64
}

// GetContributorShares returns the projected payout split of the open
// period, ordered by contributor registration. Contributors that already
// claimed this period or hold no points are excluded.
func (rds *RewardsDataService) GetContributorShares(ctx context.Context, configId string) ([]*ContributorShare, error) {
	pc, err := rds.store.GetPointsConfig(configId)
	if err != nil {
		return nil, err
	}
	if pc.PeriodTotalPoints == 0 {
		return []*ContributorShare{}, nil
	}

	contributors, err := rds.store.ListContributors()
	if err != nil {
		return nil, err
	}

	poolBalance, err := rds.transferor.GetBalance(configId)
	if err != nil {
		return nil, err
	}

	releasable, err := rds.reserve.ComputeRelease(pc.PeriodTotalPoints, pc.MonthlyThreshold, pc.ReserveRatio, poolBalance)
	if err != nil {
		return nil, err
	}

	eligible := orderedmap.New[string, *rewardsTypes.Contributor]()
	for _, contributor := range contributors {
		if contributor.CurrentMonthPoints == 0 {
			continue
		}
		if !contributor.LastClaimTime.IsZero() && contributor.LastClaimPeriod == pc.CurrentPeriod {
			continue
		}
		eligible.Set(contributor.Id, contributor)
	}

	totalPoints := decimal.NewFromUint64(pc.PeriodTotalPoints)
	shares := make([]*ContributorShare, 0, eligible.Len())
	for pair := eligible.Oldest(); pair != nil; pair = pair.Next() {
		contributor := pair.Value

		amount, err := numbers.MulDivFloorU64(releasable, contributor.CurrentMonthPoints, pc.PeriodTotalPoints)
		if err != nil {
			return nil, err
		}

		percent := decimal.NewFromUint64(contributor.CurrentMonthPoints).
			Div(totalPoints).
			Mul(decimal.NewFromInt(100)).
			Round(4)

		shares = append(shares, &ContributorShare{
			ContributorId:   contributor.Id,
			Authority:       contributor.Authority,
			Points:          contributor.CurrentMonthPoints,
			SharePercent:    percent,
			ProjectedAmount: amount,
		})
	}
	return shares, nil
}
