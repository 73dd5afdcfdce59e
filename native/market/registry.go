package market

import (
	"time"

	"marketnet/core/events"
	"marketnet/core/types"
)

type registryState interface {
	MarketplacePut(*Marketplace) error
	MarketplaceGet(id [32]byte) (*Marketplace, bool, error)
	AssetExists(symbol string) bool
}

type marketplaceEvent struct {
	evt *types.Event
}

func (e marketplaceEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketplaceEvent) Event() *types.Event { return e.evt }

// Registry owns marketplace configuration records. Creation derives the id
// from the authority so each authority owns at most one marketplace; edits
// replace all mutable fields atomically.
type Registry struct {
	st      registryState
	emitter events.Emitter
	nowFn   func() int64
}

// NewRegistry creates a registry backed by the provided state.
func NewRegistry(st registryState) *Registry {
	return &Registry{
		st:      st,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetNowFunc overrides the time source, primarily for tests.
func (r *Registry) SetNowFunc(now func() int64) {
	if now == nil {
		r.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	r.nowFn = now
}

func (r *Registry) emit(evt *types.Event) {
	if r == nil || r.emitter == nil || evt == nil {
		return
	}
	r.emitter.Emit(marketplaceEvent{evt: evt})
}

func (r *Registry) validateAssets(m *Marketplace) error {
	for _, symbol := range []string{m.Fees.DiscountAsset, m.Rewards.RewardAsset, m.Rewards.TriggerAsset} {
		if symbol == "" {
			continue
		}
		if !r.st.AssetExists(symbol) {
			return ErrInvalidConfig
		}
	}
	return nil
}

// Create registers a marketplace for the authority. It fails when the
// authority already owns one or the configuration is invalid.
func (r *Registry) Create(authority [20]byte, cfg *Marketplace) (*Marketplace, error) {
	sanitized, err := Sanitize(cfg)
	if err != nil {
		return nil, err
	}
	sanitized.Authority = authority
	sanitized.ID = DeriveID(authority)
	if _, exists, err := r.st.MarketplaceGet(sanitized.ID); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrAlreadyExists
	}
	if err := r.validateAssets(sanitized); err != nil {
		return nil, err
	}
	now := r.nowFn()
	sanitized.CreatedAt = now
	sanitized.UpdatedAt = now
	if err := r.st.MarketplacePut(sanitized); err != nil {
		return nil, err
	}
	r.emit(NewCreatedEvent(sanitized))
	return sanitized.Clone(), nil
}

// Edit replaces the mutable configuration of the caller's marketplace. Only
// the stored authority may edit. The authority and id are immutable.
func (r *Registry) Edit(caller [20]byte, cfg *Marketplace) (*Marketplace, error) {
	id := DeriveID(caller)
	existing, exists, err := r.st.MarketplaceGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	if existing.Authority != caller {
		return nil, ErrUnauthorized
	}
	sanitized, err := Sanitize(cfg)
	if err != nil {
		return nil, err
	}
	sanitized.ID = existing.ID
	sanitized.Authority = existing.Authority
	sanitized.CreatedAt = existing.CreatedAt
	sanitized.UpdatedAt = r.nowFn()
	if err := r.validateAssets(sanitized); err != nil {
		return nil, err
	}
	promotionClosed := existing.Rewards.RewardsEnabled && !sanitized.Rewards.RewardsEnabled
	if err := r.st.MarketplacePut(sanitized); err != nil {
		return nil, err
	}
	r.emit(NewUpdatedEvent(sanitized, promotionClosed))
	return sanitized.Clone(), nil
}

// Get resolves a marketplace by id.
func (r *Registry) Get(id [32]byte) (*Marketplace, error) {
	m, exists, err := r.st.MarketplaceGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return m.Clone(), nil
}
