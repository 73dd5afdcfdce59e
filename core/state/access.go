package state

import (
	"marketnet/native/access"
)

type storedAccessRequest struct {
	ID          [32]byte
	Marketplace [32]byte
	Requester   [20]byte
	CreatedAt   uint64
}

func accessRequestKey(id [32]byte) []byte {
	return prefixedKey(accessPrefix, id[:])
}

// RequestPut persists a pending access request keyed by its id.
func (m *Manager) RequestPut(r *access.Request) error {
	return m.putRecord(accessRequestKey(r.ID), &storedAccessRequest{
		ID:          r.ID,
		Marketplace: r.Marketplace,
		Requester:   r.Requester,
		CreatedAt:   uint64(r.CreatedAt),
	})
}

// RequestGet loads a pending access request by id.
func (m *Manager) RequestGet(id [32]byte) (*access.Request, bool, error) {
	var stored storedAccessRequest
	ok, err := m.getRecord(accessRequestKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &access.Request{
		ID:          stored.ID,
		Marketplace: stored.Marketplace,
		Requester:   stored.Requester,
		CreatedAt:   int64(stored.CreatedAt),
	}, true, nil
}

// RequestDelete removes a resolved access request.
func (m *Manager) RequestDelete(id [32]byte) error {
	return m.deleteRecord(accessRequestKey(id))
}
