package distributionQueue

import (
	"github.com/aixblock/rewards-engine/pkg/coordinator"
	"github.com/aixblock/rewards-engine/pkg/rewards"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"go.uber.org/zap"
)

// MutationType identifies the engine operation a queued message performs.
type MutationType string

var (
	MutationType_InitializeConfig    MutationType = "initializeConfig"
	MutationType_CreateContributor   MutationType = "createContributor"
	MutationType_RecordContribution  MutationType = "recordContribution"
	MutationType_ClosePeriod         MutationType = "closePeriod"
	MutationType_ResetMonthly        MutationType = "resetMonthly"
	MutationType_DistributeTokens    MutationType = "distributeTokens"
	MutationType_FundPool            MutationType = "fundPool"
	MutationType_DepositToReserve    MutationType = "depositToReserve"
	MutationType_TransferFromReserve MutationType = "transferFromReserve"
	MutationType_UpdateReserveConfig MutationType = "updateReserveConfig"
)

// MutationData carries the parameters of one queued mutation. Only the fields
// relevant to the mutation type are read.
type MutationData struct {
	MutationType MutationType

	ConfigId      string
	ContributorId string
	Authority     string

	ContributionType rewardsTypes.ContributionType
	ImpactScore      uint8
	Metadata         string

	Amount uint64

	MonthlyThreshold uint64
	ReserveRatio     uint64
	MaxPointsPerType uint64

	NewRatio     *uint64
	NewThreshold *uint64
}

// MutationResponseData holds whichever result the mutation produced; the
// field matching the mutation type is set, the rest are nil.
type MutationResponseData struct {
	Config       *rewardsTypes.PointsConfig
	Contributor  *rewardsTypes.Contributor
	Contribution *rewardsTypes.Contribution
	Decision     *rewardsTypes.DistributionDecision
	Payout       *rewards.PayoutResult
	Reserve      *rewardsTypes.ReserveAccount
	PoolBalance  uint64
}

// MutationResponse is the complete response for a queued mutation.
type MutationResponse struct {
	Data  *MutationResponseData
	Error error
}

// MutationMessage is one entry in the queue. ResponseChan may be nil for
// fire-and-forget submissions.
type MutationMessage struct {
	Data         MutationData
	ResponseChan chan *MutationResponse
}

// DistributionQueue serializes every state-changing operation through a
// single worker, so concurrent callers can never interleave partial updates
// of the same config or contributor.
type DistributionQueue struct {
	logger      *zap.Logger
	coordinator *coordinator.Coordinator
	queue       chan *MutationMessage
	done        chan struct{}
}
