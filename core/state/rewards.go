package state

import (
	"fmt"
	"math/big"

	"marketnet/native/rewards"
)

// rewardsVaultName keys the module vault holding every marketplace bounty
// deposit. Per-marketplace accounting lives in the pool records; the vault
// holds the aggregate.
const rewardsVaultName = "rewards"

type storedBonus struct {
	ID          [32]byte
	Marketplace [32]byte
	Principal   [20]byte
	Asset       string
	Balance     *big.Int
	CreatedAt   uint64
}

func bonusKey(id [32]byte) []byte {
	return prefixedKey(bonusPrefix, id[:])
}

func bountyPoolKey(marketplace [32]byte, asset string) []byte {
	return prefixedKey(bountyPoolPrefix, marketplace[:], separatorComponent, []byte(NormalizeAsset(asset)))
}

// BonusPut persists a promotional bonus record keyed by its id.
func (m *Manager) BonusPut(b *rewards.Bonus) error {
	balance := b.Balance
	if balance == nil {
		balance = big.NewInt(0)
	}
	return m.putRecord(bonusKey(b.ID), &storedBonus{
		ID:          b.ID,
		Marketplace: b.Marketplace,
		Principal:   b.Principal,
		Asset:       b.Asset,
		Balance:     balance,
		CreatedAt:   uint64(b.CreatedAt),
	})
}

// BonusGet loads a promotional bonus record by id.
func (m *Manager) BonusGet(id [32]byte) (*rewards.Bonus, bool, error) {
	var stored storedBonus
	ok, err := m.getRecord(bonusKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	balance := stored.Balance
	if balance == nil {
		balance = big.NewInt(0)
	}
	return &rewards.Bonus{
		ID:          stored.ID,
		Marketplace: stored.Marketplace,
		Principal:   stored.Principal,
		Asset:       stored.Asset,
		Balance:     balance,
		CreatedAt:   int64(stored.CreatedAt),
	}, true, nil
}

// BonusDelete removes a drained bonus record.
func (m *Manager) BonusDelete(id [32]byte) error {
	return m.deleteRecord(bonusKey(id))
}

// BountyPoolBalance returns the unallocated bounty for one marketplace and
// asset. Missing records read as zero.
func (m *Manager) BountyPoolBalance(marketplace [32]byte, asset string) (*big.Int, error) {
	balance := new(big.Int)
	if _, err := m.getRecord(bountyPoolKey(marketplace, asset), balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// SetBountyPoolBalance overwrites the marketplace bounty pool accounting
// entry. Negative balances are rejected.
func (m *Manager) SetBountyPoolBalance(marketplace [32]byte, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: bounty pool balance must be non-negative")
	}
	return m.putRecord(bountyPoolKey(marketplace, asset), amount)
}

// BountyVaultAddress returns the address holding deposited bounty funds.
func (m *Manager) BountyVaultAddress() [20]byte {
	return ModuleVaultAddress(rewardsVaultName)
}
