// Package coordinator wires the scoring, ledger, period and reserve engines
// to persistence, the reward pool, the event bus and metrics. Every public
// method is one complete operation against a points config.
package coordinator

import (
	"strconv"
	"time"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/pkg/eventBus/eventBusTypes"
	"github.com/aixblock/rewards-engine/pkg/metrics"
	"github.com/aixblock/rewards-engine/pkg/metrics/metricsTypes"
	"github.com/aixblock/rewards-engine/pkg/rewards"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/storage"
	"github.com/aixblock/rewards-engine/pkg/transfer"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// maxMetadataLength bounds the opaque contribution tag (an external
// reference such as a PR number or commit hash).
const maxMetadataLength = 32

type Coordinator struct {
	calculator  *rewards.Calculator
	ledger      *rewards.Ledger
	accountant  *rewards.Accountant
	reserve     *rewards.Reserve
	distributor *rewards.Distributor

	store        storage.RewardsStore
	transferor   transfer.Transferor
	eventBus     eventBusTypes.IEventBus
	metricsSink  *metrics.MetricsSink
	clock        clockwork.Clock
	globalConfig *config.Config
	logger       *zap.Logger
}

func NewCoordinator(
	store storage.RewardsStore,
	transferor transfer.Transferor,
	eb eventBusTypes.IEventBus,
	ms *metrics.MetricsSink,
	clock clockwork.Clock,
	l *zap.Logger,
	cfg *config.Config,
) *Coordinator {
	reserve := rewards.NewReserve(l)
	ledger := rewards.NewLedger(l)
	return &Coordinator{
		calculator:   rewards.NewCalculator(l),
		ledger:       ledger,
		accountant:   rewards.NewAccountant(l),
		reserve:      reserve,
		distributor:  rewards.NewDistributor(reserve, ledger, l),
		store:        store,
		transferor:   transferor,
		eventBus:     eb,
		metricsSink:  ms,
		clock:        clock,
		globalConfig: cfg,
		logger:       l,
	}
}

func (c *Coordinator) publish(name eventBusTypes.EventName, data any) {
	if c.eventBus == nil {
		return
	}
	c.eventBus.Publish(&eventBusTypes.Event{Name: name, Data: data})
}

// InitializeConfig creates a points config owned by authority, along with its
// reserve account. Zero values fall back to the configured program defaults.
func (c *Coordinator) InitializeConfig(
	authority string,
	monthlyThreshold uint64,
	reserveRatio uint64,
	maxPointsPerType uint64,
) (*rewardsTypes.PointsConfig, error) {
	if authority == "" {
		return nil, errors.Wrap(rewardsTypes.ErrInvalidInput, "authority is required")
	}
	if monthlyThreshold == 0 {
		monthlyThreshold = c.defaultMonthlyThreshold()
	}
	if reserveRatio == 0 {
		reserveRatio = c.defaultReserveRatio()
	}
	if maxPointsPerType == 0 {
		maxPointsPerType = c.defaultMaxPointsPerType()
	}
	if reserveRatio > rewardsTypes.MaxReserveRatio {
		return nil, rewardsTypes.ErrInvalidRatio
	}
	if monthlyThreshold < rewardsTypes.MinPoints {
		return nil, rewardsTypes.ErrInvalidThreshold
	}

	now := c.clock.Now().UTC()
	pc := &rewardsTypes.PointsConfig{
		Id:                  uuid.New().String(),
		Authority:           authority,
		MonthlyThreshold:    monthlyThreshold,
		MaxPointsPerType:    maxPointsPerType,
		ReserveRatio:        reserveRatio,
		CurrentPeriod:       1,
		PeriodTotalPoints:   0,
		LastCalculationTime: now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var created *rewardsTypes.PointsConfig
	err := c.store.Atomically(func(txStore storage.RewardsStore) error {
		var err error
		created, err = txStore.CreatePointsConfig(pc)
		if err != nil {
			return err
		}
		return txStore.UpsertReserveAccount(&rewardsTypes.ReserveAccount{
			ConfigId:  pc.Id,
			Balance:   0,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	c.logger.Sugar().Infow("Initialized points config",
		zap.String("configId", created.Id),
		zap.Uint64("monthlyThreshold", created.MonthlyThreshold),
		zap.Uint64("reserveRatio", created.ReserveRatio),
		zap.Uint64("maxPointsPerType", created.MaxPointsPerType),
	)
	c.publish(eventBusTypes.Event_ConfigInitialized, created)
	return created, nil
}

// CreateContributor registers a contributor account for authority. Each
// authority gets exactly one contributor.
func (c *Coordinator) CreateContributor(authority string) (*rewardsTypes.Contributor, error) {
	if authority == "" {
		return nil, errors.Wrap(rewardsTypes.ErrInvalidInput, "authority is required")
	}
	if existing, err := c.store.GetContributorByAuthority(authority); err == nil && existing != nil {
		return nil, errors.Wrap(rewardsTypes.ErrInvalidInput, "contributor already exists for authority")
	}

	now := c.clock.Now().UTC()
	contributor := &rewardsTypes.Contributor{
		Id:        uuid.New().String(),
		Authority: authority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := c.store.CreateContributor(contributor)
	if err != nil {
		return nil, err
	}

	c.publish(eventBusTypes.Event_ContributorCreated, created)
	return created, nil
}

// RecordContribution scores a contribution and accrues the points to both the
// contributor and the open period. The contribution row, contributor and
// config are committed as one unit.
func (c *Coordinator) RecordContribution(
	configId string,
	contributorId string,
	contributionType rewardsTypes.ContributionType,
	impactScore uint8,
	metadata string,
) (*rewardsTypes.Contribution, error) {
	if !contributionType.IsValid() {
		return nil, errors.Wrap(rewardsTypes.ErrInvalidInput, "unknown contribution type")
	}
	if len(metadata) > maxMetadataLength {
		return nil, errors.Wrap(rewardsTypes.ErrInvalidInput, "metadata exceeds maximum length")
	}

	now := c.clock.Now().UTC()
	var contribution *rewardsTypes.Contribution

	err := c.store.Atomically(func(txStore storage.RewardsStore) error {
		pc, err := txStore.GetPointsConfig(configId)
		if err != nil {
			return err
		}
		contributor, err := txStore.GetContributor(contributorId)
		if err != nil {
			return err
		}

		points, err := c.calculator.ScoreContribution(contributionType, impactScore, pc.MaxPointsPerType)
		if err != nil {
			return err
		}

		updatedContributor, err := c.ledger.Record(contributor, points)
		if err != nil {
			return err
		}
		updatedContributor.UpdatedAt = now

		updatedConfig, err := c.accountant.Accrue(pc, points)
		if err != nil {
			return err
		}
		updatedConfig.UpdatedAt = now

		contribution = &rewardsTypes.Contribution{
			Id:               uuid.New().String(),
			ContributorId:    contributor.Id,
			Sequence:         updatedContributor.ContributionCount,
			ContributionType: contributionType,
			Points:           points,
			Timestamp:        now,
			Metadata:         metadata,
			IsVerified:       updatedContributor.IsVerified,
			Period:           pc.CurrentPeriod,
		}

		if contribution, err = txStore.InsertContribution(contribution); err != nil {
			return err
		}
		if err = txStore.UpdateContributor(updatedContributor); err != nil {
			return err
		}
		if err = txStore.UpdatePointsConfig(updatedConfig); err != nil {
			return err
		}

		c.publish(eventBusTypes.Event_ContributionRecorded, &eventBusTypes.ContributionRecordedData{
			Contribution: contribution,
			Contributor:  updatedContributor,
		})
		_ = c.metricsSink.Incr(metricsTypes.Metric_Incr_ContributionRecorded, []metricsTypes.MetricsLabel{
			{Name: "contribution_type", Value: contributionType.String()},
		}, 1)
		_ = c.metricsSink.Gauge(metricsTypes.Metric_Gauge_PeriodTotalPoints, float64(updatedConfig.PeriodTotalPoints), nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contribution, nil
}

// ClosePeriod finalizes the open period once its length has elapsed, marks
// its distribution record completed and opens the next period. Only the
// config authority may close a period.
func (c *Coordinator) ClosePeriod(configId string, authority string) (*rewardsTypes.DistributionDecision, error) {
	start := c.clock.Now()
	now := start.UTC()

	var decision *rewardsTypes.DistributionDecision
	err := c.store.Atomically(func(txStore storage.RewardsStore) error {
		pc, err := txStore.GetPointsConfig(configId)
		if err != nil {
			return err
		}
		if pc.Authority != authority {
			return rewardsTypes.ErrUnauthorized
		}

		updatedConfig, d, err := c.accountant.ClosePeriod(pc, now)
		if err != nil {
			return err
		}
		decision = d
		updatedConfig.UpdatedAt = now

		if err = txStore.UpdatePointsConfig(updatedConfig); err != nil {
			return err
		}

		// The period record only exists once a payout happened in it.
		periodRecord, err := txStore.GetDistributionPeriod(configId, d.ClosedPeriod)
		if err != nil && !errors.Is(err, rewardsTypes.ErrNotFound) {
			return err
		}
		if periodRecord != nil {
			periodRecord.IsCompleted = true
			periodRecord.EndTime = now
			if err = txStore.UpsertDistributionPeriod(periodRecord); err != nil {
				return err
			}
		}

		c.publish(eventBusTypes.Event_MonthlyPointsCalculated, &eventBusTypes.MonthlyPointsCalculatedData{
			Decision: d,
			Config:   updatedConfig,
		})
		_ = c.metricsSink.Incr(metricsTypes.Metric_Incr_PeriodClosed, nil, 1)
		_ = c.metricsSink.Gauge(metricsTypes.Metric_Gauge_CurrentPeriod, float64(updatedConfig.CurrentPeriod), nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = c.metricsSink.Timing(metricsTypes.Metric_Timing_ClosePeriodDuration, c.clock.Since(start), nil)
	return decision, nil
}

// ResetContributorMonthly zeroes a contributor's running monthly points. Used
// by the config authority for contributors that did not claim in the period.
func (c *Coordinator) ResetContributorMonthly(configId string, contributorId string, authority string) (*rewardsTypes.Contributor, error) {
	var updated *rewardsTypes.Contributor
	err := c.store.Atomically(func(txStore storage.RewardsStore) error {
		pc, err := txStore.GetPointsConfig(configId)
		if err != nil {
			return err
		}
		if pc.Authority != authority {
			return rewardsTypes.ErrUnauthorized
		}
		contributor, err := txStore.GetContributor(contributorId)
		if err != nil {
			return err
		}

		updated = c.ledger.ResetMonthly(contributor)
		updated.UpdatedAt = c.clock.Now().UTC()
		if err = txStore.UpdateContributor(updated); err != nil {
			return err
		}

		c.publish(eventBusTypes.Event_ContributorPointsUpdated, updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DistributeTokens pays a contributor their proportional share of the
// releasable pool for the open period. When the transferor can join the
// store transaction the pool debit commits with the ledger writes; otherwise
// the pool is debited up front and a failed commit credits the debit back.
func (c *Coordinator) DistributeTokens(configId string, contributorId string) (*rewards.PayoutResult, error) {
	start := c.clock.Now()
	now := start.UTC()

	pc, err := c.store.GetPointsConfig(configId)
	if err != nil {
		return nil, err
	}
	contributor, err := c.store.GetContributor(contributorId)
	if err != nil {
		return nil, err
	}
	periodRecord, err := c.store.GetDistributionPeriod(configId, pc.CurrentPeriod)
	if err != nil {
		if !errors.Is(err, rewardsTypes.ErrNotFound) {
			return nil, err
		}
		periodRecord = nil
	}

	poolSize, err := c.transferor.GetBalance(configId)
	if err != nil {
		return nil, err
	}

	result, err := c.distributor.Payout(contributor, pc, periodRecord, poolSize, now)
	if err != nil {
		return nil, err
	}

	joiner, joinable := c.transferor.(transfer.TxJoiner)

	var poolBalance uint64
	if !joinable {
		poolBalance, err = c.transferor.Debit(configId, result.Amount)
		if err != nil {
			return nil, err
		}
	}

	err = c.store.Atomically(func(txStore storage.RewardsStore) error {
		if err := txStore.UpdateContributor(result.Contributor); err != nil {
			return err
		}
		if err := txStore.UpsertDistributionPeriod(result.Period); err != nil {
			return err
		}
		if joinable {
			bound, ok := joiner.JoinTx(txStore)
			if !ok {
				return errors.Errorf("transferor cannot join the store transaction for config '%s'", configId)
			}
			balance, err := bound.Debit(configId, result.Amount)
			if err != nil {
				return err
			}
			poolBalance = balance
		}
		return nil
	})
	if err != nil {
		if !joinable {
			// Return the debited tokens so the pool stays consistent with
			// the unchanged ledger state.
			if _, creditErr := c.transferor.Credit(configId, result.Amount); creditErr != nil {
				c.logger.Sugar().Errorw("Failed to return debited tokens to pool",
					zap.String("configId", configId),
					zap.Uint64("amount", result.Amount),
					zap.Error(creditErr),
				)
			}
		}
		return nil, err
	}

	c.logger.Sugar().Infow("Distributed tokens",
		zap.String("configId", configId),
		zap.String("contributorId", contributorId),
		zap.Uint64("period", result.Period.Period),
		zap.Uint64("amount", result.Amount),
	)
	c.publish(eventBusTypes.Event_TokensDistributed, &eventBusTypes.TokensDistributedData{
		Contributor: result.Contributor,
		Amount:      result.Amount,
		Period:      result.Period.Period,
	})
	_ = c.metricsSink.Incr(metricsTypes.Metric_Incr_TokensDistributed, []metricsTypes.MetricsLabel{
		{Name: "period", Value: formatUint(result.Period.Period)},
	}, 1)
	_ = c.metricsSink.Gauge(metricsTypes.Metric_Gauge_PoolBalance, float64(poolBalance), nil)
	_ = c.metricsSink.Timing(metricsTypes.Metric_Timing_DistributionDuration, c.clock.Since(start), []metricsTypes.MetricsLabel{
		{Name: "period", Value: formatUint(result.Period.Period)},
	})
	return result, nil
}

// FundPool credits the reward pool. Anyone may fund a pool.
func (c *Coordinator) FundPool(configId string, amount uint64) (uint64, error) {
	if _, err := c.store.GetPointsConfig(configId); err != nil {
		return 0, err
	}
	balance, err := c.transferor.Credit(configId, amount)
	if err != nil {
		return 0, err
	}
	_ = c.metricsSink.Gauge(metricsTypes.Metric_Gauge_PoolBalance, float64(balance), nil)
	return balance, nil
}

// DepositToReserve credits the reserve account. Only the config authority may
// move reserve funds.
func (c *Coordinator) DepositToReserve(configId string, authority string, amount uint64) (*rewardsTypes.ReserveAccount, error) {
	now := c.clock.Now().UTC()
	var updated *rewardsTypes.ReserveAccount
	err := c.store.Atomically(func(txStore storage.RewardsStore) error {
		pc, err := txStore.GetPointsConfig(configId)
		if err != nil {
			return err
		}
		if pc.Authority != authority {
			return rewardsTypes.ErrUnauthorized
		}
		account, err := c.getOrCreateReserve(txStore, configId, now)
		if err != nil {
			return err
		}

		updated, err = c.reserve.Deposit(account, amount, now)
		if err != nil {
			return err
		}
		return txStore.UpsertReserveAccount(updated)
	})
	if err != nil {
		return nil, err
	}

	c.publish(eventBusTypes.Event_ReserveDeposit, &eventBusTypes.ReserveTransferData{
		ConfigId: configId,
		Amount:   amount,
		Balance:  updated.Balance,
	})
	_ = c.metricsSink.Incr(metricsTypes.Metric_Incr_ReserveDeposit, nil, 1)
	_ = c.metricsSink.Gauge(metricsTypes.Metric_Gauge_ReserveBalance, float64(updated.Balance), nil)
	return updated, nil
}

// TransferFromReserve moves tokens out of the reserve into the reward pool.
func (c *Coordinator) TransferFromReserve(configId string, authority string, amount uint64) (*rewardsTypes.ReserveAccount, error) {
	now := c.clock.Now().UTC()
	var updated *rewardsTypes.ReserveAccount
	err := c.store.Atomically(func(txStore storage.RewardsStore) error {
		pc, err := txStore.GetPointsConfig(configId)
		if err != nil {
			return err
		}
		if pc.Authority != authority {
			return rewardsTypes.ErrUnauthorized
		}
		account, err := txStore.GetReserveAccount(configId)
		if err != nil {
			return err
		}

		updated, err = c.reserve.Withdraw(account, amount, now)
		if err != nil {
			return err
		}
		return txStore.UpsertReserveAccount(updated)
	})
	if err != nil {
		return nil, err
	}

	poolBalance, err := c.transferor.Credit(configId, amount)
	if err != nil {
		return nil, err
	}

	c.publish(eventBusTypes.Event_ReserveTransfer, &eventBusTypes.ReserveTransferData{
		ConfigId: configId,
		Amount:   amount,
		Balance:  updated.Balance,
	})
	_ = c.metricsSink.Incr(metricsTypes.Metric_Incr_ReserveTransfer, nil, 1)
	_ = c.metricsSink.Gauge(metricsTypes.Metric_Gauge_ReserveBalance, float64(updated.Balance), nil)
	_ = c.metricsSink.Gauge(metricsTypes.Metric_Gauge_PoolBalance, float64(poolBalance), nil)
	return updated, nil
}

// UpdateReserveConfig changes the reserve ratio and/or monthly threshold. Nil
// leaves a value unchanged.
func (c *Coordinator) UpdateReserveConfig(configId string, authority string, newRatio *uint64, newThreshold *uint64) (*rewardsTypes.PointsConfig, error) {
	var updated *rewardsTypes.PointsConfig
	err := c.store.Atomically(func(txStore storage.RewardsStore) error {
		pc, err := txStore.GetPointsConfig(configId)
		if err != nil {
			return err
		}
		if pc.Authority != authority {
			return rewardsTypes.ErrUnauthorized
		}

		updated, err = c.reserve.UpdateConfig(pc, newRatio, newThreshold)
		if err != nil {
			return err
		}
		updated.UpdatedAt = c.clock.Now().UTC()
		return txStore.UpdatePointsConfig(updated)
	})
	if err != nil {
		return nil, err
	}

	c.publish(eventBusTypes.Event_ReserveConfigUpdated, updated)
	return updated, nil
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func (c *Coordinator) getOrCreateReserve(txStore storage.RewardsStore, configId string, now time.Time) (*rewardsTypes.ReserveAccount, error) {
	account, err := txStore.GetReserveAccount(configId)
	if err != nil {
		if !errors.Is(err, rewardsTypes.ErrNotFound) {
			return nil, err
		}
		account = &rewardsTypes.ReserveAccount{ConfigId: configId, UpdatedAt: now}
	}
	return account, nil
}

func (c *Coordinator) defaultMonthlyThreshold() uint64 {
	if c.globalConfig != nil && c.globalConfig.RewardsConfig.MonthlyThreshold > 0 {
		return c.globalConfig.RewardsConfig.MonthlyThreshold
	}
	return rewardsTypes.DefaultMonthlyThreshold
}

func (c *Coordinator) defaultReserveRatio() uint64 {
	if c.globalConfig != nil && c.globalConfig.RewardsConfig.ReserveRatio > 0 {
		return c.globalConfig.RewardsConfig.ReserveRatio
	}
	return rewardsTypes.DefaultReserveRatio
}

func (c *Coordinator) defaultMaxPointsPerType() uint64 {
	if c.globalConfig != nil && c.globalConfig.RewardsConfig.MaxPointsPerType > 0 {
		return c.globalConfig.RewardsConfig.MaxPointsPerType
	}
	return rewardsTypes.DefaultMaxPointsPerType
}
