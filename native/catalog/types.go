package catalog

import (
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// UnlimitedExemplars marks a product without a quantity limit.
const UnlimitedExemplars int64 = -1

// maxCompositeIDLen bounds the caller-supplied listing identifier. The id is
// whitespace-padded into a fixed 64-byte block before hashing so equal
// logical ids always collide regardless of length.
const maxCompositeIDLen = 64

// Product is a priced, sellable listing owned by a seller on a marketplace.
type Product struct {
	ID          [32]byte
	Marketplace [32]byte
	Authority   [20]byte
	CompositeID string
	// PaymentAsset is the asset the seller accepts as payment.
	PaymentAsset string
	// Price in the smallest unit of PaymentAsset. Non-negative.
	Price *big.Int
	// Exemplars is the remaining-sale counter; -1 means unlimited.
	Exemplars int64
	SoldCount uint64
	// RefundWindow is the number of seconds after purchase during which the
	// buyer may unilaterally reverse the sale. Zero settles immediately.
	RefundWindow int64
	// ActivePayments counts open escrow records referencing this listing.
	// Deletion requires zero.
	ActivePayments uint64
	CreatedAt      int64
	UpdatedAt      int64
}

// DeriveID computes the deterministic product id from the marketplace and the
// caller-supplied composite id.
func DeriveID(marketplace [32]byte, compositeID string) ([32]byte, error) {
	padded, err := padCompositeID(compositeID)
	if err != nil {
		return [32]byte{}, err
	}
	return ethcrypto.Keccak256Hash([]byte("product"), marketplace[:], padded[:]), nil
}

func padCompositeID(compositeID string) ([maxCompositeIDLen]byte, error) {
	var padded [maxCompositeIDLen]byte
	raw := []byte(compositeID)
	if len(raw) == 0 {
		return padded, fmt.Errorf("%w: composite id required", ErrInvalidProduct)
	}
	if len(raw) > maxCompositeIDLen {
		return padded, fmt.Errorf("%w: composite id longer than %d bytes", ErrInvalidProduct, maxCompositeIDLen)
	}
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded[:], raw)
	return padded, nil
}

// Clone returns a deep copy of the product.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Price != nil {
		clone.Price = new(big.Int).Set(p.Price)
	} else {
		clone.Price = big.NewInt(0)
	}
	return &clone
}

// Sanitize validates and normalises a product definition without mutating the
// original.
func Sanitize(p *Product) (*Product, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil product", ErrInvalidProduct)
	}
	clone := p.Clone()
	if clone.Price.Sign() < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidProduct)
	}
	if clone.Exemplars < UnlimitedExemplars {
		return nil, fmt.Errorf("%w: exemplars must be -1 or non-negative", ErrInvalidProduct)
	}
	if clone.RefundWindow < 0 {
		return nil, fmt.Errorf("%w: refund window must be non-negative", ErrInvalidProduct)
	}
	if _, err := padCompositeID(clone.CompositeID); err != nil {
		return nil, err
	}
	return clone, nil
}

// Available reports whether the listing still covers units more sales.
func (p *Product) Available(units uint64) bool {
	if p == nil {
		return false
	}
	if p.Exemplars == UnlimitedExemplars {
		return true
	}
	return p.Exemplars >= 0 && uint64(p.Exemplars) >= units
}
