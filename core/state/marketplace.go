package state

import (
	"marketnet/native/market"
)

// storedMarketplace flattens the marketplace record into RLP-friendly types.
// RLP has no signed integer encoding, so timestamps travel as uint64.
type storedMarketplace struct {
	ID                [32]byte
	Authority         [20]byte
	FeeBps            uint32
	FeeReductionBps   uint32
	DiscountAsset     string
	FeePayer          uint8
	RewardAsset       string
	TriggerAsset      string
	SellerRewardBps   uint32
	BuyerRewardBps    uint32
	RewardsEnabled    bool
	Permissionless    bool
	AllowSecondary    bool
	DeliverCredential bool
	CreatedAt         uint64
	UpdatedAt         uint64
}

func marketplaceKey(id [32]byte) []byte {
	return prefixedKey(marketPrefix, id[:])
}

func toStoredMarketplace(m *market.Marketplace) *storedMarketplace {
	return &storedMarketplace{
		ID:                m.ID,
		Authority:         m.Authority,
		FeeBps:            m.Fees.FeeBps,
		FeeReductionBps:   m.Fees.FeeReductionBps,
		DiscountAsset:     m.Fees.DiscountAsset,
		FeePayer:          uint8(m.Fees.FeePayer),
		RewardAsset:       m.Rewards.RewardAsset,
		TriggerAsset:      m.Rewards.TriggerAsset,
		SellerRewardBps:   m.Rewards.SellerRewardBps,
		BuyerRewardBps:    m.Rewards.BuyerRewardBps,
		RewardsEnabled:    m.Rewards.RewardsEnabled,
		Permissionless:    m.Access.Permissionless,
		AllowSecondary:    m.Access.AllowSecondary,
		DeliverCredential: m.DeliverCredential,
		CreatedAt:         uint64(m.CreatedAt),
		UpdatedAt:         uint64(m.UpdatedAt),
	}
}

func (s *storedMarketplace) toMarketplace() *market.Marketplace {
	return &market.Marketplace{
		ID:        s.ID,
		Authority: s.Authority,
		Fees: market.FeesConfig{
			FeeBps:          s.FeeBps,
			FeeReductionBps: s.FeeReductionBps,
			DiscountAsset:   s.DiscountAsset,
			FeePayer:        market.FeePayer(s.FeePayer),
		},
		Rewards: market.RewardsConfig{
			RewardAsset:     s.RewardAsset,
			TriggerAsset:    s.TriggerAsset,
			SellerRewardBps: s.SellerRewardBps,
			BuyerRewardBps:  s.BuyerRewardBps,
			RewardsEnabled:  s.RewardsEnabled,
		},
		Access: market.PermissionConfig{
			Permissionless: s.Permissionless,
			AllowSecondary: s.AllowSecondary,
		},
		DeliverCredential: s.DeliverCredential,
		CreatedAt:         int64(s.CreatedAt),
		UpdatedAt:         int64(s.UpdatedAt),
	}
}

// MarketplacePut persists a marketplace record keyed by its id.
func (m *Manager) MarketplacePut(mkt *market.Marketplace) error {
	return m.putRecord(marketplaceKey(mkt.ID), toStoredMarketplace(mkt))
}

// MarketplaceGet loads a marketplace record by id.
func (m *Manager) MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error) {
	var stored storedMarketplace
	ok, err := m.getRecord(marketplaceKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toMarketplace(), true, nil
}
