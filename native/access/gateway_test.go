package access

import (
	"errors"
	"testing"

	"marketnet/native/market"
)

type mockState struct {
	requests     map[[32]byte]*Request
	marketplaces map[[32]byte]*market.Marketplace
	credentials  map[[32]byte]map[[20]byte]uint64
}

func newMockState() *mockState {
	return &mockState{
		requests:     make(map[[32]byte]*Request),
		marketplaces: make(map[[32]byte]*market.Marketplace),
		credentials:  make(map[[32]byte]map[[20]byte]uint64),
	}
}

func (m *mockState) RequestPut(r *Request) error {
	m.requests[r.ID] = r.Clone()
	return nil
}

func (m *mockState) RequestGet(id [32]byte) (*Request, bool, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (m *mockState) RequestDelete(id [32]byte) error {
	delete(m.requests, id)
	return nil
}

func (m *mockState) MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error) {
	mp, ok := m.marketplaces[id]
	if !ok {
		return nil, false, nil
	}
	return mp.Clone(), true, nil
}

func (m *mockState) CreditCredential(scope [32]byte, addr [20]byte, units uint64) error {
	if m.credentials[scope] == nil {
		m.credentials[scope] = make(map[[20]byte]uint64)
	}
	m.credentials[scope][addr] += units
	return nil
}

func (m *mockState) addMarketplace(authority [20]byte) [32]byte {
	id := market.DeriveID(authority)
	m.marketplaces[id] = &market.Marketplace{ID: id, Authority: authority}
	return id
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func TestGatewayRequest(t *testing.T) {
	st := newMockState()
	authority := newTestAddress(0xAA)
	mktID := st.addMarketplace(authority)
	gw := NewGateway(st)
	gw.SetNowFunc(func() int64 { return 1700 })

	requester := newTestAddress(0x01)
	request, err := gw.Request(requester, mktID)
	if err != nil {
		t.Fatalf("request access: %v", err)
	}
	if request.ID != DeriveRequestID(mktID, requester) {
		t.Fatal("request id not derived from marketplace and requester")
	}
	if request.CreatedAt != 1700 {
		t.Fatalf("created at = %d, want 1700", request.CreatedAt)
	}

	if _, err := gw.Request(requester, mktID); !errors.Is(err, ErrAlreadyRequested) {
		t.Fatalf("duplicate request error = %v, want ErrAlreadyRequested", err)
	}
	if _, err := gw.Request(requester, [32]byte{0xFF}); !errors.Is(err, ErrMarketplaceGone) {
		t.Fatalf("unknown marketplace error = %v, want ErrMarketplaceGone", err)
	}
}

func TestGatewayAccept(t *testing.T) {
	st := newMockState()
	authority := newTestAddress(0xAA)
	mktID := st.addMarketplace(authority)
	gw := NewGateway(st)

	requester := newTestAddress(0x01)
	request, err := gw.Request(requester, mktID)
	if err != nil {
		t.Fatalf("request access: %v", err)
	}

	if err := gw.Accept(newTestAddress(0x02), request.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("accept by stranger error = %v, want ErrUnauthorized", err)
	}

	if err := gw.Accept(authority, request.ID); err != nil {
		t.Fatalf("accept request: %v", err)
	}
	if got := st.credentials[mktID][requester]; got != 1 {
		t.Fatalf("credential balance = %d, want 1", got)
	}
	if _, pending, _ := st.RequestGet(request.ID); pending {
		t.Fatal("accepted request must be deleted")
	}

	// The request is gone; accepting again fails.
	if err := gw.Accept(authority, request.ID); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("re-accept error = %v, want ErrRequestNotFound", err)
	}

	// The slot is free again, so the principal may re-apply.
	if _, err := gw.Request(requester, mktID); err != nil {
		t.Fatalf("re-request after grant: %v", err)
	}
}
