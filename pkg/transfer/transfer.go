// Package transfer manages reward pool token balances. The pool is the
// account payouts are drawn from and reserve movements settle against.
package transfer

import (
	"time"

	"github.com/aixblock/rewards-engine/pkg/storage"
)

// Pool is a token balance tied to a points config.
type Pool struct {
	ConfigId  string
	Balance   uint64
	UpdatedAt time.Time
}

// Transferor moves tokens in and out of a reward pool.
type Transferor interface {
	// GetBalance returns the pool balance for the config, zero if the pool
	// does not exist yet.
	GetBalance(configId string) (uint64, error)
	// Credit adds tokens to the pool, creating it when missing.
	Credit(configId string, amount uint64) (uint64, error)
	// Debit removes tokens from the pool. Overdraws fail with
	// ErrInsufficientBalance.
	Debit(configId string, amount uint64) (uint64, error)
}

// TxJoiner is implemented by transferors whose writes can join the database
// transaction behind a store view, so a pool movement commits or rolls back
// together with the ledger writes it pays for.
type TxJoiner interface {
	// JoinTx returns a Transferor bound to the transaction backing txStore.
	// It reports false when the store is not backed by the same database.
	JoinTx(txStore storage.RewardsStore) (Transferor, bool)
}
