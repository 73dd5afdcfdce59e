package payments

import (
	"encoding/hex"
	"strconv"

	"marketnet/core/types"
)

const (
	EventTypePaymentOpened    = "escrow.payment_opened"
	EventTypePaymentRefunded  = "escrow.payment_refunded"
	EventTypePaymentWithdrawn = "escrow.payment_withdrawn"
)

func NewPaymentOpenedEvent(p *Payment) *types.Event {
	return newPaymentEvent(EventTypePaymentOpened, p)
}

func NewPaymentRefundedEvent(p *Payment) *types.Event {
	return newPaymentEvent(EventTypePaymentRefunded, p)
}

func NewPaymentWithdrawnEvent(p *Payment) *types.Event {
	return newPaymentEvent(EventTypePaymentWithdrawn, p)
}

func newPaymentEvent(eventType string, p *Payment) *types.Event {
	attrs := make(map[string]string)
	if p == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = hex.EncodeToString(p.ID[:])
	attrs["product"] = hex.EncodeToString(p.Product[:])
	attrs["marketplace"] = hex.EncodeToString(p.Marketplace[:])
	attrs["seller"] = hex.EncodeToString(p.Seller[:])
	attrs["buyer"] = hex.EncodeToString(p.Buyer[:])
	attrs["asset"] = p.Asset
	attrs["amount"] = p.Amount.String()
	attrs["fee"] = p.FeeAmount.String()
	attrs["feePayer"] = p.FeePayer.String()
	attrs["units"] = strconv.FormatUint(p.Units, 10)
	attrs["purchasedAt"] = strconv.FormatInt(p.PurchasedAt, 10)
	attrs["refundDeadline"] = strconv.FormatInt(p.RefundDeadline, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}
