package access

import (
	"errors"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"marketnet/core/events"
	"marketnet/core/types"
	"marketnet/native/market"
)

var (
	ErrUnauthorized     = errors.New("access: unauthorized")
	ErrAlreadyRequested = errors.New("access: request already pending")
	ErrRequestNotFound  = errors.New("access: request not found")
	ErrMarketplaceGone  = errors.New("access: marketplace not found")
)

// Request is a pending application for listing rights on a gated
// marketplace. Accepting it issues one non-transferable access credential
// unit to the requester and closes the request.
type Request struct {
	ID          [32]byte
	Marketplace [32]byte
	Requester   [20]byte
	CreatedAt   int64
}

// DeriveRequestID computes the deterministic request id. One unresolved
// request per (requester, marketplace) pair.
func DeriveRequestID(marketplace [32]byte, requester [20]byte) [32]byte {
	return ethcrypto.Keccak256Hash([]byte("access-request"), marketplace[:], requester[:])
}

// Clone returns a copy of the request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

type gatewayState interface {
	RequestPut(*Request) error
	RequestGet(id [32]byte) (*Request, bool, error)
	RequestDelete(id [32]byte) error
	MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error)
	CreditCredential(scope [32]byte, addr [20]byte, units uint64) error
}

type accessEvent struct {
	evt *types.Event
}

func (e accessEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e accessEvent) Event() *types.Event { return e.evt }

// Gateway runs the request/approve workflow for gated marketplaces.
type Gateway struct {
	st      gatewayState
	emitter events.Emitter
	nowFn   func() int64
}

func NewGateway(st gatewayState) *Gateway {
	return &Gateway{
		st:      st,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

func (g *Gateway) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		g.emitter = events.NoopEmitter{}
		return
	}
	g.emitter = emitter
}

func (g *Gateway) SetNowFunc(now func() int64) {
	if now == nil {
		g.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	g.nowFn = now
}

func (g *Gateway) emit(evt *types.Event) {
	if g == nil || g.emitter == nil || evt == nil {
		return
	}
	g.emitter.Emit(accessEvent{evt: evt})
}

// Request opens a pending access request for the principal. Duplicate
// unresolved requests fail.
func (g *Gateway) Request(principal [20]byte, marketplaceID [32]byte) (*Request, error) {
	if _, exists, err := g.st.MarketplaceGet(marketplaceID); err != nil {
		return nil, err
	} else if !exists {
		return nil, ErrMarketplaceGone
	}
	id := DeriveRequestID(marketplaceID, principal)
	if _, pending, err := g.st.RequestGet(id); err != nil {
		return nil, err
	} else if pending {
		return nil, ErrAlreadyRequested
	}
	request := &Request{
		ID:          id,
		Marketplace: marketplaceID,
		Requester:   principal,
		CreatedAt:   g.nowFn(),
	}
	if err := g.st.RequestPut(request); err != nil {
		return nil, err
	}
	g.emit(NewRequestedEvent(request))
	return request.Clone(), nil
}

// Accept approves a pending request. Only the marketplace authority may
// accept; the requester receives one credential unit and the request closes.
// No revocation operation exists: possession is a point-in-time gate checked
// at product creation.
func (g *Gateway) Accept(caller [20]byte, requestID [32]byte) error {
	request, exists, err := g.st.RequestGet(requestID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRequestNotFound
	}
	mkt, exists, err := g.st.MarketplaceGet(request.Marketplace)
	if err != nil {
		return err
	}
	if !exists {
		return ErrMarketplaceGone
	}
	if mkt.Authority != caller {
		return ErrUnauthorized
	}
	if err := g.st.CreditCredential(request.Marketplace, request.Requester, 1); err != nil {
		return err
	}
	if err := g.st.RequestDelete(requestID); err != nil {
		return err
	}
	g.emit(NewGrantedEvent(request))
	return nil
}
