package rewardsTypes

import "errors"

// Error taxonomy surfaced verbatim to callers. Layers above may wrap these
// with context; classification is always via errors.Is.
var (
	// ErrInvalidInput covers zero or out-of-range amounts and scores rejected
	// at an operation boundary.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when the caller identity does not match the
	// relevant authority field.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrArithmeticOverflow is returned when a checked add/mul/div would
	// overflow its domain. The whole operation aborts; no partial mutation is
	// retained.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrPeriodNotElapsed is returned when a period close is attempted before
	// the fixed period length has passed.
	ErrPeriodNotElapsed = errors.New("distribution period not elapsed")

	// ErrNoContributions is returned when a period close finds a zero point
	// total.
	ErrNoContributions = errors.New("no contributions in period")

	// ErrPeriodOverflow is returned when the period counter cannot advance.
	ErrPeriodOverflow = errors.New("period counter overflow")

	// ErrAlreadyClaimedThisPeriod guards against double payout of a
	// contributor within one period.
	ErrAlreadyClaimedThisPeriod = errors.New("already claimed this period")

	// ErrInsufficientReserve is returned when a reserve withdrawal exceeds
	// the available reserve balance.
	ErrInsufficientReserve = errors.New("insufficient reserve balance")

	// ErrInsufficientBalance is returned when a payout computes to zero
	// tokens.
	ErrInsufficientBalance = errors.New("insufficient balance for distribution")

	// ErrInvalidRatio is returned for reserve ratios above 10000 basis
	// points.
	ErrInvalidRatio = errors.New("invalid reserve ratio")

	// ErrInvalidThreshold is returned for a zero monthly threshold.
	ErrInvalidThreshold = errors.New("invalid monthly threshold")

	// ErrNotFound is returned when a referenced contributor or config does
	// not exist.
	ErrNotFound = errors.New("not found")
)
