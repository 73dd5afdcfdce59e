package access

import (
	"encoding/hex"

	"marketnet/core/types"
)

const (
	EventTypeAccessRequested = "access.requested"
	EventTypeAccessGranted   = "access.granted"
)

func NewRequestedEvent(r *Request) *types.Event {
	return newAccessEvent(EventTypeAccessRequested, r)
}

func NewGrantedEvent(r *Request) *types.Event {
	return newAccessEvent(EventTypeAccessGranted, r)
}

func newAccessEvent(eventType string, r *Request) *types.Event {
	attrs := make(map[string]string)
	if r == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = hex.EncodeToString(r.ID[:])
	attrs["marketplace"] = hex.EncodeToString(r.Marketplace[:])
	attrs["requester"] = hex.EncodeToString(r.Requester[:])
	return &types.Event{Type: eventType, Attributes: attrs}
}
