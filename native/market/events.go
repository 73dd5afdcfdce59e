package market

import (
	"encoding/hex"
	"strconv"

	"marketnet/core/types"
)

const (
	EventTypeMarketplaceCreated = "market.created"
	EventTypeMarketplaceUpdated = "market.updated"
)

// NewCreatedEvent returns the canonical event payload for a newly created
// marketplace.
func NewCreatedEvent(m *Marketplace) *types.Event {
	return newMarketplaceEvent(EventTypeMarketplaceCreated, m, false)
}

// NewUpdatedEvent returns the canonical event payload for a marketplace edit.
// promotionClosed marks the edit that flipped RewardsEnabled from true to
// false, the transition that makes accrued bonus withdrawable.
func NewUpdatedEvent(m *Marketplace, promotionClosed bool) *types.Event {
	return newMarketplaceEvent(EventTypeMarketplaceUpdated, m, promotionClosed)
}

func newMarketplaceEvent(eventType string, m *Marketplace, promotionClosed bool) *types.Event {
	attrs := make(map[string]string)
	if m == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = hex.EncodeToString(m.ID[:])
	attrs["authority"] = hex.EncodeToString(m.Authority[:])
	attrs["feeBps"] = strconv.FormatUint(uint64(m.Fees.FeeBps), 10)
	attrs["feeReductionBps"] = strconv.FormatUint(uint64(m.Fees.FeeReductionBps), 10)
	attrs["feePayer"] = m.Fees.FeePayer.String()
	attrs["rewardsEnabled"] = strconv.FormatBool(m.Rewards.RewardsEnabled)
	attrs["permissionless"] = strconv.FormatBool(m.Access.Permissionless)
	if m.Fees.DiscountAsset != "" {
		attrs["discountAsset"] = m.Fees.DiscountAsset
	}
	if m.Rewards.RewardAsset != "" {
		attrs["rewardAsset"] = m.Rewards.RewardAsset
		attrs["sellerRewardBps"] = strconv.FormatUint(uint64(m.Rewards.SellerRewardBps), 10)
		attrs["buyerRewardBps"] = strconv.FormatUint(uint64(m.Rewards.BuyerRewardBps), 10)
	}
	if promotionClosed {
		attrs["promotionClosed"] = "true"
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
