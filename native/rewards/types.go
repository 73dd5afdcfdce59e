package rewards

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Bonus is a per-principal promotional balance on one marketplace. It is
// created lazily on first accrual eligibility, grows while the promotion is
// open, and is drained and closed by a single withdrawal once the promotion
// ends.
type Bonus struct {
	ID          [32]byte
	Marketplace [32]byte
	Principal   [20]byte
	// Asset the balance is denominated in; fixed at creation from the
	// marketplace reward configuration.
	Asset     string
	Balance   *big.Int
	CreatedAt int64
}

// DeriveBonusID computes the deterministic bonus record id. The derivation
// ties the record to principal and marketplace, so cross-withdrawal is
// structurally impossible rather than merely permission-checked.
func DeriveBonusID(marketplace [32]byte, principal [20]byte) [32]byte {
	return ethcrypto.Keccak256Hash([]byte("bonus"), marketplace[:], principal[:])
}

// Clone returns a deep copy of the bonus record.
func (b *Bonus) Clone() *Bonus {
	if b == nil {
		return nil
	}
	clone := *b
	if b.Balance != nil {
		clone.Balance = new(big.Int).Set(b.Balance)
	} else {
		clone.Balance = big.NewInt(0)
	}
	return &clone
}
