// Package storage defines the persistence boundary of the accounting engine.
// The engine reads entities in full and writes them back in full; partial
// field updates are never assumed. Implementations must make Atomically run
// its callback as one all-or-nothing unit, which is what enforces the
// engine's transaction boundary.
package storage

import (
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
)

type RewardsStore interface {
	CreatePointsConfig(config *rewardsTypes.PointsConfig) (*rewardsTypes.PointsConfig, error)
	GetPointsConfig(id string) (*rewardsTypes.PointsConfig, error)
	UpdatePointsConfig(config *rewardsTypes.PointsConfig) error

	CreateContributor(contributor *rewardsTypes.Contributor) (*rewardsTypes.Contributor, error)
	GetContributor(id string) (*rewardsTypes.Contributor, error)
	GetContributorByAuthority(authority string) (*rewardsTypes.Contributor, error)
	UpdateContributor(contributor *rewardsTypes.Contributor) error
	ListContributors() ([]*rewardsTypes.Contributor, error)

	InsertContribution(contribution *rewardsTypes.Contribution) (*rewardsTypes.Contribution, error)
	ListContributionsForContributor(contributorId string) ([]*rewardsTypes.Contribution, error)
	ListContributionsForPeriod(period uint64) ([]*rewardsTypes.Contribution, error)

	GetDistributionPeriod(configId string, period uint64) (*rewardsTypes.DistributionPeriod, error)
	UpsertDistributionPeriod(period *rewardsTypes.DistributionPeriod) error
	ListDistributionPeriods(configId string) ([]*rewardsTypes.DistributionPeriod, error)

	GetReserveAccount(configId string) (*rewardsTypes.ReserveAccount, error)
	UpsertReserveAccount(account *rewardsTypes.ReserveAccount) error

	// Atomically runs fn against a store view bound to a single transaction.
	// Every mutation inside fn commits together or not at all.
	Atomically(fn func(txStore RewardsStore) error) error
}
