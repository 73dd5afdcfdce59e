package market

import (
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// BpsDenominator is the divisor applied to all basis-point rates.
const BpsDenominator = 10_000

// FeePayer designates which side of a sale bears the marketplace fee.
type FeePayer uint8

const (
	FeePayerBuyer FeePayer = iota
	FeePayerSeller
)

// Valid reports whether the fee payer value is within the supported range.
func (p FeePayer) Valid() bool {
	return p == FeePayerBuyer || p == FeePayerSeller
}

func (p FeePayer) String() string {
	if p == FeePayerBuyer {
		return "buyer"
	}
	return "seller"
}

// ParseFeePayer converts a textual fee payer designation.
func ParseFeePayer(raw string) (FeePayer, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buyer":
		return FeePayerBuyer, nil
	case "seller":
		return FeePayerSeller, nil
	default:
		return 0, fmt.Errorf("market: invalid fee payer %q", raw)
	}
}

// FeesConfig captures the fee policy a marketplace applies to every sale.
type FeesConfig struct {
	// FeeBps is the transaction fee in basis points levied by the
	// marketplace. 250 corresponds to 2.5%.
	FeeBps uint32
	// FeeReductionBps is subtracted from FeeBps when the payment asset
	// equals DiscountAsset. Must not exceed FeeBps.
	FeeReductionBps uint32
	// DiscountAsset is the payment asset whose use triggers the fee
	// reduction. Empty disables the discount.
	DiscountAsset string
	// FeePayer designates who bears the fee.
	FeePayer FeePayer
}

// RewardsConfig captures the promotional reward policy of a marketplace.
//
// Lifecycle: the authority funds the bounty pool, enables rewards, and sales
// accrue bonus to both sides while the promotion is open. Once the authority
// disables rewards, accrued bonus becomes withdrawable.
type RewardsConfig struct {
	// RewardAsset is the asset bonuses are denominated in, drawn from the
	// marketplace bounty pool. When TriggerAsset is empty every payment
	// asset accrues rewards; otherwise only purchases paid in TriggerAsset
	// do.
	RewardAsset     string
	TriggerAsset    string
	SellerRewardBps uint32
	BuyerRewardBps  uint32
	// RewardsEnabled flags the promotion as open. Accrual requires true;
	// bonus withdrawal requires false.
	RewardsEnabled bool
}

// PermissionConfig captures the listing gate of a marketplace.
type PermissionConfig struct {
	// Permissionless marketplaces accept listings from any seller. Gated
	// marketplaces require an access credential issued via the access
	// gateway.
	Permissionless bool
	// AllowSecondary marks delivery credentials as transferable. The
	// settlement state layer currently only issues non-transferable
	// credentials, so false is the only honoured value.
	AllowSecondary bool
}

// Marketplace is the configuration entity owning fee and reward policy for a
// set of products. It is never deleted; only its authority may edit it.
type Marketplace struct {
	ID        [32]byte
	Authority [20]byte
	Fees      FeesConfig
	Rewards   RewardsConfig
	Access    PermissionConfig
	// DeliverCredential mints a non-transferable proof-of-purchase
	// credential to the buyer on every sale.
	DeliverCredential bool
	CreatedAt         int64
	UpdatedAt         int64
}

// DeriveID computes the deterministic marketplace id for an authority. The
// derivation admits at most one marketplace per authority.
func DeriveID(authority [20]byte) [32]byte {
	return ethcrypto.Keccak256Hash([]byte("marketplace"), authority[:])
}

// Clone returns a deep copy so callers can mutate without affecting stored
// instances.
func (m *Marketplace) Clone() *Marketplace {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

// Sanitize validates and normalises a marketplace definition, returning a
// cloned instance with canonical asset casing. The original is not mutated.
func Sanitize(m *Marketplace) (*Marketplace, error) {
	if m == nil {
		return nil, fmt.Errorf("market: nil marketplace")
	}
	clone := m.Clone()
	if clone.Fees.FeeBps >= BpsDenominator {
		return nil, fmt.Errorf("%w: fee bps out of range: %d", ErrInvalidConfig, clone.Fees.FeeBps)
	}
	if clone.Fees.FeeReductionBps > clone.Fees.FeeBps {
		return nil, fmt.Errorf("%w: fee reduction exceeds fee", ErrInvalidConfig)
	}
	if !clone.Fees.FeePayer.Valid() {
		return nil, fmt.Errorf("%w: invalid fee payer %d", ErrInvalidConfig, clone.Fees.FeePayer)
	}
	if clone.Rewards.SellerRewardBps > BpsDenominator || clone.Rewards.BuyerRewardBps > BpsDenominator {
		return nil, fmt.Errorf("%w: reward bps out of range", ErrInvalidConfig)
	}
	clone.Fees.DiscountAsset = normalizeAsset(clone.Fees.DiscountAsset)
	clone.Rewards.RewardAsset = normalizeAsset(clone.Rewards.RewardAsset)
	clone.Rewards.TriggerAsset = normalizeAsset(clone.Rewards.TriggerAsset)
	if clone.Rewards.RewardsEnabled && clone.Rewards.RewardAsset == "" {
		return nil, fmt.Errorf("%w: rewards enabled without reward asset", ErrInvalidConfig)
	}
	return clone, nil
}

func normalizeAsset(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// RewardsActive reports whether a purchase paid in paymentAsset accrues
// promotional rewards under this configuration.
func (m *Marketplace) RewardsActive(paymentAsset string) bool {
	if m == nil || !m.Rewards.RewardsEnabled {
		return false
	}
	trigger := normalizeAsset(m.Rewards.TriggerAsset)
	return trigger == "" || trigger == normalizeAsset(paymentAsset)
}
