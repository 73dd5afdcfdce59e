package state

import (
	"bytes"
	"fmt"
	"math/big"
)

var (
	// ErrInsufficientBalance is returned by Transfer when the debit side
	// cannot cover the amount.
	ErrInsufficientBalance = fmt.Errorf("state: insufficient balance")
	// ErrUnknownAsset is returned when a balance operation references an
	// unregistered asset symbol.
	ErrUnknownAsset = fmt.Errorf("state: unknown asset")
)

func balanceKey(addr []byte, symbol string) []byte {
	return prefixedKey(balancePrefix, []byte(symbol), separatorComponent, addr)
}

// Balance returns the balance of addr in the given asset. Unknown accounts
// hold zero.
func (m *Manager) Balance(addr [20]byte, asset string) (*big.Int, error) {
	normalized := NormalizeAsset(asset)
	value := new(big.Int)
	ok, err := m.getRecord(balanceKey(addr[:], normalized), value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

// SetBalance overwrites the balance of addr in the given asset. Negative
// balances are rejected.
func (m *Manager) SetBalance(addr [20]byte, asset string, amount *big.Int) error {
	normalized := NormalizeAsset(asset)
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: balance must be non-negative")
	}
	return m.putRecord(balanceKey(addr[:], normalized), amount)
}

// Transfer moves amount of asset from one account to another. A zero amount
// is a no-op; negative amounts are rejected.
func (m *Manager) Transfer(from, to [20]byte, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: negative transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	normalized := NormalizeAsset(asset)
	if !m.AssetExists(normalized) {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, normalized)
	}
	if bytes.Equal(from[:], to[:]) {
		return nil
	}
	fromBal, err := m.Balance(from, normalized)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBal, err := m.Balance(to, normalized)
	if err != nil {
		return err
	}
	if err := m.SetBalance(from, normalized, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return m.SetBalance(to, normalized, new(big.Int).Add(toBal, amount))
}

// MintAsset credits newly issued units of asset to the recipient. Only the
// registered mint authority may mint, and minting can be paused via metadata.
func (m *Manager) MintAsset(caller [20]byte, asset string, to [20]byte, amount *big.Int) error {
	normalized := NormalizeAsset(asset)
	meta, err := m.AssetMetadata(normalized)
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, normalized)
	}
	if meta.MintPaused {
		return fmt.Errorf("state: minting paused for %s", normalized)
	}
	if len(meta.MintAuthority) != 20 || !bytes.Equal(meta.MintAuthority, caller[:]) {
		return fmt.Errorf("state: caller is not the mint authority for %s", normalized)
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: mint amount must be positive")
	}
	balance, err := m.Balance(to, normalized)
	if err != nil {
		return err
	}
	return m.SetBalance(to, normalized, new(big.Int).Add(balance, amount))
}
