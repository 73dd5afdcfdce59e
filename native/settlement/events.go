package settlement

import (
	"encoding/hex"
	"strconv"

	"marketnet/core/types"
)

const EventTypePurchased = "settlement.purchased"

// NewPurchasedEvent summarises a completed purchase. The payment attribute
// is present only when the sale opened an escrow record.
func NewPurchasedEvent(r *Receipt) *types.Event {
	attrs := make(map[string]string)
	if r == nil {
		return &types.Event{Type: EventTypePurchased, Attributes: attrs}
	}
	attrs["product"] = hex.EncodeToString(r.Product[:])
	attrs["marketplace"] = hex.EncodeToString(r.Marketplace[:])
	attrs["seller"] = hex.EncodeToString(r.Seller[:])
	attrs["buyer"] = hex.EncodeToString(r.Buyer[:])
	attrs["asset"] = r.Asset
	attrs["units"] = strconv.FormatUint(r.Units, 10)
	if r.Gross != nil {
		attrs["gross"] = r.Gross.String()
	}
	if r.Fee != nil {
		attrs["fee"] = r.Fee.String()
	}
	if r.SellerBonus != nil && r.SellerBonus.Sign() > 0 {
		attrs["sellerBonus"] = r.SellerBonus.String()
	}
	if r.BuyerBonus != nil && r.BuyerBonus.Sign() > 0 {
		attrs["buyerBonus"] = r.BuyerBonus.String()
	}
	if r.PaymentID != nil {
		attrs["payment"] = hex.EncodeToString(r.PaymentID[:])
	}
	return &types.Event{Type: EventTypePurchased, Attributes: attrs}
}
