// Package rewardsTypes defines the entities the accounting engine operates
// on, the fixed contribution-type enumeration, and the error taxonomy shared
// by every layer. The engine itself never owns storage; these structs are
// loaded and persisted by the caller.
package rewardsTypes

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ContributionType enumerates the kinds of recorded work. Ordinals are
// wire-significant and must remain stable.
type ContributionType uint8

const (
	ContributionType_Code ContributionType = iota
	ContributionType_Review
	ContributionType_Documentation
	ContributionType_Community
	ContributionType_Other
	ContributionType_Testing
	ContributionType_BugReport
	ContributionType_PullRequest
	ContributionType_CodeCommit
	ContributionType_CodeReview
)

var contributionTypeNames = map[ContributionType]string{
	ContributionType_Code:          "code",
	ContributionType_Review:        "review",
	ContributionType_Documentation: "documentation",
	ContributionType_Community:     "community",
	ContributionType_Other:         "other",
	ContributionType_Testing:       "testing",
	ContributionType_BugReport:     "bugReport",
	ContributionType_PullRequest:   "pullRequest",
	ContributionType_CodeCommit:    "codeCommit",
	ContributionType_CodeReview:    "codeReview",
}

func (ct ContributionType) String() string {
	if name, ok := contributionTypeNames[ct]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(ct))
}

func (ct ContributionType) IsValid() bool {
	_, ok := contributionTypeNames[ct]
	return ok
}

// ParseContributionType maps a string name back to its ordinal.
func ParseContributionType(name string) (ContributionType, error) {
	for ct, n := range contributionTypeNames {
		if n == name {
			return ct, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidInput, "unsupported contribution type '%s'", name)
}

// BasePoints returns the fixed base score for a contribution type, before the
// impact multiplier and per-type cap are applied.
func (ct ContributionType) BasePoints() uint64 {
	switch ct {
	case ContributionType_PullRequest:
		return 30
	case ContributionType_Review, ContributionType_CodeReview:
		return 20
	case ContributionType_Documentation, ContributionType_Testing:
		return 15
	case ContributionType_Code, ContributionType_BugReport, ContributionType_CodeCommit:
		return 10
	case ContributionType_Community, ContributionType_Other:
		return 5
	default:
		return 0
	}
}

// Program-level constants carried over from the deployed configuration.
const (
	MinPoints               uint64 = 1
	MinImpactScore          uint8  = 1
	MaxImpactScore          uint8  = 5
	MaxReserveRatio         uint64 = 10_000
	DefaultReserveRatio     uint64 = 5_000
	DefaultMonthlyThreshold uint64 = 500
	DefaultMaxPointsPerType uint64 = 1_000

	// PeriodLength is the fixed accounting window. Period closes are rejected
	// until this much time has elapsed since the previous close.
	PeriodLength = 30 * 24 * time.Hour
)

// PointsConfig is the per-program-instance accounting state. CurrentPeriod
// starts at 1 and only ever advances through a period close.
type PointsConfig struct {
	Id                  string
	Authority           string
	MonthlyThreshold    uint64
	MaxPointsPerType    uint64
	ReserveRatio        uint64
	CurrentPeriod       uint64
	PeriodTotalPoints   uint64
	LastCalculationTime time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Contributor is the per-participant ledger entry. TotalPoints and
// TokensClaimed are lifetime counters and never decrease.
type Contributor struct {
	Id                 string
	Authority          string
	TotalPoints        uint64
	CurrentMonthPoints uint64
	TokensClaimed      uint64
	LastClaimTime      time.Time
	// LastClaimPeriod records the period id of the most recent payout. The
	// double-claim guard compares against it rather than the claim timestamp,
	// so a payout in a freshly opened period is never blocked by a recent
	// claim from the previous one.
	LastClaimPeriod   uint64
	ContributionCount uint64
	IsVerified        bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Contribution is an append-only ledger record of one submitted unit of work.
// Points are computed at creation time and never change afterwards. Sequence
// is the contributor-scoped slot derived from ContributionCount at recording
// time.
type Contribution struct {
	Id               string
	ContributorId    string
	Sequence         uint64
	ContributionType ContributionType
	Points           uint64
	Timestamp        time.Time
	Metadata         string
	IsVerified       bool
	Period           uint64
}

// DistributionPeriod aggregates payouts for one (config, period) pair. It is
// created lazily on the first payout of the period; TotalTokens is seeded
// from the pool balance observed at that moment.
type DistributionPeriod struct {
	ConfigId          string
	Period            uint64
	TotalTokens       uint64
	TokensDistributed uint64
	TotalPoints       uint64
	IsCompleted       bool
	StartTime         time.Time
	EndTime           time.Time
}

// ReserveAccount tracks the withheld portion of the pool. Deposits and
// withdrawals are pure accounting updates; custodial movement is delegated
// to the transfer collaborator.
type ReserveAccount struct {
	ConfigId  string
	Balance   uint64
	UpdatedAt time.Time
}

// DistributionDecision is the outcome of a period close.
type DistributionDecision struct {
	// ClosedPeriod is the period id that was closed.
	ClosedPeriod uint64
	// NextPeriod is the period id now open for accrual.
	NextPeriod uint64
	// TotalPoints is the point total of the closed period.
	TotalPoints uint64
	// MeetsThreshold is true when the closed period qualified for a full
	// release; otherwise payouts released only the reserve-ratio fraction of
	// the pool.
	MeetsThreshold bool
	ClosedAt       time.Time
}

// Payout is the transfer instruction produced by the distribution engine.
type Payout struct {
	ContributorId string
	Period        uint64
	Amount        uint64
	Timestamp     time.Time
}
