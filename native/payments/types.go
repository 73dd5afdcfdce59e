package payments

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"marketnet/native/market"
)

// Payment is a time-boxed escrow record opened by a purchase. It exists only
// between the purchase and its resolution: a refund by the buyer within the
// window, or a funds withdrawal by the seller after it. Exactly one of the
// two can ever succeed; either permanently closes the record.
type Payment struct {
	ID          [32]byte
	Product     [32]byte
	Marketplace [32]byte
	Seller      [20]byte
	Buyer       [20]byte
	Asset       string
	// Amount is the escrowed gross, price*units at purchase time.
	Amount *big.Int
	// FeeAmount is the marketplace fee captured at purchase. It is applied
	// at withdrawal without recomputation, so later config edits cannot
	// retroactively change the split.
	FeeAmount *big.Int
	FeePayer  market.FeePayer
	Units     uint64
	// PurchasedAt and RefundDeadline bound the refund window.
	PurchasedAt    int64
	RefundDeadline int64
}

// DerivePaymentID computes the deterministic payment id from the product,
// buyer and purchase timestamp. Re-submitting the same purchase in the same
// second collides instead of double-applying.
func DerivePaymentID(product [32]byte, buyer [20]byte, purchasedAt int64) [32]byte {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(purchasedAt))
	return ethcrypto.Keccak256Hash([]byte("payment"), product[:], buyer[:], ts[:])
}

// Clone returns a deep copy of the payment record.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Amount != nil {
		clone.Amount = new(big.Int).Set(p.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	if p.FeeAmount != nil {
		clone.FeeAmount = new(big.Int).Set(p.FeeAmount)
	} else {
		clone.FeeAmount = big.NewInt(0)
	}
	return &clone
}
