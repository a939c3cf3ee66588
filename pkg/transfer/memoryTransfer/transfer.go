// Package memoryTransfer is an in-memory Transferor used by tests.
package memoryTransfer

import (
	"sync"

	"github.com/aixblock/rewards-engine/internal/types/numbers"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/aixblock/rewards-engine/pkg/transfer"
	"github.com/pkg/errors"
)

type MemoryTransferor struct {
	mu       sync.Mutex
	balances map[string]uint64
}

func NewMemoryTransferor() *MemoryTransferor {
	return &MemoryTransferor{
		balances: make(map[string]uint64),
	}
}

func (t *MemoryTransferor) GetBalance(configId string) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[configId], nil
}

func (t *MemoryTransferor) Credit(configId string, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, rewardsTypes.ErrInvalidInput
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	newBalance, err := numbers.CheckedAddU64(t.balances[configId], amount)
	if err != nil {
		return 0, errors.Wrap(rewardsTypes.ErrArithmeticOverflow, "crediting pool")
	}
	t.balances[configId] = newBalance
	return newBalance, nil
}

func (t *MemoryTransferor) Debit(configId string, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, rewardsTypes.ErrInvalidInput
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[configId] < amount {
		return 0, rewardsTypes.ErrInsufficientBalance
	}
	t.balances[configId] -= amount
	return t.balances[configId], nil
}

var _ transfer.Transferor = (*MemoryTransferor)(nil)
