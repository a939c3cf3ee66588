// Package memory provides an in-memory RewardsStore used by tests and by the
// rpc handler tests. It is not a storage engine; it exists so the engine and
// its surfaces can be exercised without a database.
package memory

import (
	"fmt"
	"sync"

	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/storage"
)

type InMemoryRewardsStore struct {
	mu sync.Mutex

	configs       map[string]*rewardsTypes.PointsConfig
	contributors  map[string]*rewardsTypes.Contributor
	contributions []*rewardsTypes.Contribution
	periods       map[string]*rewardsTypes.DistributionPeriod
	reserves      map[string]*rewardsTypes.ReserveAccount

	// insertion order for deterministic listing
	contributorOrder []string
}

func NewInMemoryRewardsStore() *InMemoryRewardsStore {
	return &InMemoryRewardsStore{
		configs:          make(map[string]*rewardsTypes.PointsConfig),
		contributors:     make(map[string]*rewardsTypes.Contributor),
		contributions:    make([]*rewardsTypes.Contribution, 0),
		periods:          make(map[string]*rewardsTypes.DistributionPeriod),
		reserves:         make(map[string]*rewardsTypes.ReserveAccount),
		contributorOrder: make([]string, 0),
	}
}

func periodKey(configId string, period uint64) string {
	return fmt.Sprintf("%s/%d", configId, period)
}

func (s *InMemoryRewardsStore) CreatePointsConfig(pc *rewardsTypes.PointsConfig) (*rewardsTypes.PointsConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[pc.Id]; ok {
		return nil, fmt.Errorf("points config '%s' already exists", pc.Id)
	}
	created := *pc
	s.configs[pc.Id] = &created
	out := created
	return &out, nil
}

func (s *InMemoryRewardsStore) GetPointsConfig(id string) (*rewardsTypes.PointsConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.configs[id]
	if !ok {
		return nil, rewardsTypes.ErrNotFound
	}
	out := *pc
	return &out, nil
}

func (s *InMemoryRewardsStore) UpdatePointsConfig(pc *rewardsTypes.PointsConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[pc.Id]; !ok {
		return rewardsTypes.ErrNotFound
	}
	updated := *pc
	s.configs[pc.Id] = &updated
	return nil
}

func (s *InMemoryRewardsStore) CreateContributor(c *rewardsTypes.Contributor) (*rewardsTypes.Contributor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contributors[c.Id]; ok {
		return nil, fmt.Errorf("contributor '%s' already exists", c.Id)
	}
	created := *c
	s.contributors[c.Id] = &created
	s.contributorOrder = append(s.contributorOrder, c.Id)
	out := created
	return &out, nil
}

func (s *InMemoryRewardsStore) GetContributor(id string) (*rewardsTypes.Contributor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contributors[id]
	if !ok {
		return nil, rewardsTypes.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *InMemoryRewardsStore) GetContributorByAuthority(authority string) (*rewardsTypes.Contributor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.contributorOrder {
		if s.contributors[id].Authority == authority {
			out := *s.contributors[id]
			return &out, nil
		}
	}
	return nil, rewardsTypes.ErrNotFound
}

func (s *InMemoryRewardsStore) UpdateContributor(c *rewardsTypes.Contributor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contributors[c.Id]; !ok {
		return rewardsTypes.ErrNotFound
	}
	updated := *c
	s.contributors[c.Id] = &updated
	return nil
}

func (s *InMemoryRewardsStore) ListContributors() ([]*rewardsTypes.Contributor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*rewardsTypes.Contributor, 0, len(s.contributorOrder))
	for _, id := range s.contributorOrder {
		c := *s.contributors[id]
		out = append(out, &c)
	}
	return out, nil
}

func (s *InMemoryRewardsStore) InsertContribution(c *rewardsTypes.Contribution) (*rewardsTypes.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *c
	s.contributions = append(s.contributions, &created)
	out := created
	return &out, nil
}

func (s *InMemoryRewardsStore) ListContributionsForContributor(contributorId string) ([]*rewardsTypes.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*rewardsTypes.Contribution, 0)
	for _, c := range s.contributions {
		if c.ContributorId == contributorId {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryRewardsStore) ListContributionsForPeriod(period uint64) ([]*rewardsTypes.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*rewardsTypes.Contribution, 0)
	for _, c := range s.contributions {
		if c.Period == period {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryRewardsStore) GetDistributionPeriod(configId string, period uint64) (*rewardsTypes.DistributionPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dp, ok := s.periods[periodKey(configId, period)]
	if !ok {
		return nil, rewardsTypes.ErrNotFound
	}
	out := *dp
	return &out, nil
}

func (s *InMemoryRewardsStore) UpsertDistributionPeriod(dp *rewardsTypes.DistributionPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := *dp
	s.periods[periodKey(dp.ConfigId, dp.Period)] = &updated
	return nil
}

func (s *InMemoryRewardsStore) ListDistributionPeriods(configId string) ([]*rewardsTypes.DistributionPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*rewardsTypes.DistributionPeriod, 0)
	for _, dp := range s.periods {
		if dp.ConfigId == configId {
			copied := *dp
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryRewardsStore) GetReserveAccount(configId string) (*rewardsTypes.ReserveAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ra, ok := s.reserves[configId]
	if !ok {
		return nil, rewardsTypes.ErrNotFound
	}
	out := *ra
	return &out, nil
}

func (s *InMemoryRewardsStore) UpsertReserveAccount(ra *rewardsTypes.ReserveAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := *ra
	s.reserves[ra.ConfigId] = &updated
	return nil
}

// Atomically snapshots the whole store, runs fn, and restores the snapshot
// if fn fails. Mutations inside fn therefore commit together or not at all.
func (s *InMemoryRewardsStore) Atomically(fn func(txStore storage.RewardsStore) error) error {
	snapshot := s.clone()
	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *InMemoryRewardsStore) clone() *InMemoryRewardsStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := NewInMemoryRewardsStore()
	for k, v := range s.configs {
		copied := *v
		c.configs[k] = &copied
	}
	for k, v := range s.contributors {
		copied := *v
		c.contributors[k] = &copied
	}
	for _, v := range s.contributions {
		copied := *v
		c.contributions = append(c.contributions, &copied)
	}
	for k, v := range s.periods {
		copied := *v
		c.periods[k] = &copied
	}
	for k, v := range s.reserves {
		copied := *v
		c.reserves[k] = &copied
	}
	c.contributorOrder = append(c.contributorOrder, s.contributorOrder...)
	return c
}

func (s *InMemoryRewardsStore) restore(snapshot *InMemoryRewardsStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = snapshot.configs
	s.contributors = snapshot.contributors
	s.contributions = snapshot.contributions
	s.periods = snapshot.periods
	s.reserves = snapshot.reserves
	s.contributorOrder = snapshot.contributorOrder
}
