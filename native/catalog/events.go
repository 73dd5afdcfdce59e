package catalog

import (
	"encoding/hex"
	"strconv"

	"marketnet/core/types"
)

const (
	EventTypeProductCreated = "catalog.product_created"
	EventTypeProductUpdated = "catalog.product_updated"
	EventTypeProductDeleted = "catalog.product_deleted"
)

func NewProductCreatedEvent(p *Product) *types.Event {
	return newProductEvent(EventTypeProductCreated, p)
}

func NewProductUpdatedEvent(p *Product) *types.Event {
	return newProductEvent(EventTypeProductUpdated, p)
}

func NewProductDeletedEvent(p *Product) *types.Event {
	return newProductEvent(EventTypeProductDeleted, p)
}

func newProductEvent(eventType string, p *Product) *types.Event {
	attrs := make(map[string]string)
	if p == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = hex.EncodeToString(p.ID[:])
	attrs["marketplace"] = hex.EncodeToString(p.Marketplace[:])
	attrs["authority"] = hex.EncodeToString(p.Authority[:])
	attrs["paymentAsset"] = p.PaymentAsset
	attrs["price"] = p.Price.String()
	attrs["exemplars"] = strconv.FormatInt(p.Exemplars, 10)
	attrs["soldCount"] = strconv.FormatUint(p.SoldCount, 10)
	attrs["refundWindow"] = strconv.FormatInt(p.RefundWindow, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}
