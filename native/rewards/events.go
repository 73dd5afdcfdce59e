package rewards

import (
	"encoding/hex"
	"math/big"

	"marketnet/core/types"
)

const (
	EventTypeAccrualInitialised = "rewards.accrual_initialised"
	EventTypeBonusAccrued       = "rewards.bonus_accrued"
	EventTypeBonusWithdrawn     = "rewards.bonus_withdrawn"
	EventTypeBountyFunded       = "rewards.bounty_funded"
)

func NewAccrualInitialisedEvent(b *Bonus) *types.Event {
	return newBonusEvent(EventTypeAccrualInitialised, b, nil)
}

func NewBonusAccruedEvent(b *Bonus, amount *big.Int) *types.Event {
	return newBonusEvent(EventTypeBonusAccrued, b, amount)
}

func NewBonusWithdrawnEvent(b *Bonus, amount *big.Int) *types.Event {
	return newBonusEvent(EventTypeBonusWithdrawn, b, amount)
}

// NewBountyFundedEvent reports a deposit into the marketplace bounty pool.
func NewBountyFundedEvent(marketplace [32]byte, asset string, amount, poolBalance *big.Int) *types.Event {
	attrs := map[string]string{
		"marketplace": hex.EncodeToString(marketplace[:]),
		"asset":       asset,
	}
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	if poolBalance != nil {
		attrs["poolBalance"] = poolBalance.String()
	}
	return &types.Event{Type: EventTypeBountyFunded, Attributes: attrs}
}

func newBonusEvent(eventType string, b *Bonus, amount *big.Int) *types.Event {
	attrs := make(map[string]string)
	if b == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = hex.EncodeToString(b.ID[:])
	attrs["marketplace"] = hex.EncodeToString(b.Marketplace[:])
	attrs["principal"] = hex.EncodeToString(b.Principal[:])
	attrs["asset"] = b.Asset
	if b.Balance != nil {
		attrs["balance"] = b.Balance.String()
	}
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
