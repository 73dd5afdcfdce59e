package market

import (
	"errors"
	"strings"
	"testing"

	"marketnet/core/events"
	"marketnet/core/types"
)

type mockState struct {
	marketplaces map[[32]byte]*Marketplace
	assets       map[string]bool
}

func newMockState(assets ...string) *mockState {
	st := &mockState{
		marketplaces: make(map[[32]byte]*Marketplace),
		assets:       make(map[string]bool),
	}
	for _, symbol := range assets {
		st.assets[strings.ToUpper(symbol)] = true
	}
	return st
}

func (m *mockState) MarketplacePut(mp *Marketplace) error {
	m.marketplaces[mp.ID] = mp.Clone()
	return nil
}

func (m *mockState) MarketplaceGet(id [32]byte) (*Marketplace, bool, error) {
	mp, ok := m.marketplaces[id]
	if !ok {
		return nil, false, nil
	}
	return mp.Clone(), true, nil
}

func (m *mockState) AssetExists(symbol string) bool {
	return m.assets[strings.ToUpper(symbol)]
}

type captureEmitter struct {
	events []*types.Event
}

func (c *captureEmitter) Emit(evt events.Event) {
	type carrier interface{ Event() *types.Event }
	if e, ok := evt.(carrier); ok {
		c.events = append(c.events, e.Event())
	}
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func baseMarketplace() *Marketplace {
	return &Marketplace{
		Fees: FeesConfig{FeeBps: 100, FeePayer: FeePayerSeller},
	}
}

func TestRegistryCreate(t *testing.T) {
	st := newMockState("USDM")
	registry := NewRegistry(st)
	registry.SetNowFunc(func() int64 { return 1700 })
	emitter := &captureEmitter{}
	registry.SetEmitter(emitter)

	authority := newTestAddress(0xAA)
	created, err := registry.Create(authority, baseMarketplace())
	if err != nil {
		t.Fatalf("create marketplace: %v", err)
	}
	if created.ID != DeriveID(authority) {
		t.Fatalf("unexpected marketplace id")
	}
	if created.Authority != authority {
		t.Fatalf("authority not preserved")
	}
	if created.CreatedAt != 1700 || created.UpdatedAt != 1700 {
		t.Fatalf("timestamps = %d/%d, want 1700", created.CreatedAt, created.UpdatedAt)
	}
	if len(emitter.events) != 1 || emitter.events[0].Type != EventTypeMarketplaceCreated {
		t.Fatalf("expected a single %s event, got %+v", EventTypeMarketplaceCreated, emitter.events)
	}

	if _, err := registry.Create(authority, baseMarketplace()); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want ErrAlreadyExists", err)
	}
}

func TestRegistryCreateRejectsInvalidConfig(t *testing.T) {
	registry := NewRegistry(newMockState("USDM"))
	authority := newTestAddress(0x01)

	cfg := baseMarketplace()
	cfg.Fees.FeeReductionBps = 200
	if _, err := registry.Create(authority, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("reduction above fee error = %v, want ErrInvalidConfig", err)
	}

	cfg = baseMarketplace()
	cfg.Rewards.RewardsEnabled = true
	if _, err := registry.Create(authority, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("rewards without asset error = %v, want ErrInvalidConfig", err)
	}

	cfg = baseMarketplace()
	cfg.Fees.DiscountAsset = "NOPE"
	if _, err := registry.Create(authority, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("unknown discount asset error = %v, want ErrInvalidConfig", err)
	}
}

func TestRegistryEdit(t *testing.T) {
	st := newMockState("USDM", "BONUS")
	registry := NewRegistry(st)
	registry.SetNowFunc(func() int64 { return 1700 })

	authority := newTestAddress(0xAA)
	created, err := registry.Create(authority, baseMarketplace())
	if err != nil {
		t.Fatalf("create marketplace: %v", err)
	}

	registry.SetNowFunc(func() int64 { return 1800 })
	cfg := baseMarketplace()
	cfg.Fees.FeeBps = 250
	updated, err := registry.Edit(authority, cfg)
	if err != nil {
		t.Fatalf("edit marketplace: %v", err)
	}
	if updated.Fees.FeeBps != 250 {
		t.Fatalf("fee bps = %d, want 250", updated.Fees.FeeBps)
	}
	if updated.ID != created.ID || updated.Authority != authority {
		t.Fatalf("id or authority changed on edit")
	}
	if updated.CreatedAt != 1700 || updated.UpdatedAt != 1800 {
		t.Fatalf("timestamps = %d/%d, want 1700/1800", updated.CreatedAt, updated.UpdatedAt)
	}

	if _, err := registry.Edit(newTestAddress(0xBB), baseMarketplace()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("edit by stranger error = %v, want ErrNotFound", err)
	}
}

func TestRegistryEditEmitsPromotionClosed(t *testing.T) {
	st := newMockState("USDM", "BONUS")
	registry := NewRegistry(st)
	authority := newTestAddress(0xAA)

	cfg := baseMarketplace()
	cfg.Rewards = RewardsConfig{RewardAsset: "BONUS", SellerRewardBps: 20, BuyerRewardBps: 20, RewardsEnabled: true}
	if _, err := registry.Create(authority, cfg); err != nil {
		t.Fatalf("create marketplace: %v", err)
	}

	emitter := &captureEmitter{}
	registry.SetEmitter(emitter)
	cfg.Rewards.RewardsEnabled = false
	if _, err := registry.Edit(authority, cfg); err != nil {
		t.Fatalf("edit marketplace: %v", err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	evt := emitter.events[0]
	if evt.Type != EventTypeMarketplaceUpdated {
		t.Fatalf("event type = %s, want %s", evt.Type, EventTypeMarketplaceUpdated)
	}
	if evt.Attributes["promotionClosed"] != "true" {
		t.Fatalf("expected promotionClosed attribute, got %+v", evt.Attributes)
	}

	// Editing while the promotion stays closed does not re-flag it.
	emitter.events = nil
	if _, err := registry.Edit(authority, cfg); err != nil {
		t.Fatalf("edit marketplace: %v", err)
	}
	if _, ok := emitter.events[0].Attributes["promotionClosed"]; ok {
		t.Fatal("promotionClosed must only mark the enabling->disabled transition")
	}
}

func TestRegistryGet(t *testing.T) {
	st := newMockState("USDM")
	registry := NewRegistry(st)
	authority := newTestAddress(0xAA)
	created, err := registry.Create(authority, baseMarketplace())
	if err != nil {
		t.Fatalf("create marketplace: %v", err)
	}

	got, err := registry.Get(created.ID)
	if err != nil {
		t.Fatalf("get marketplace: %v", err)
	}
	// Mutating the returned copy must not leak into state.
	got.Fees.FeeBps = 9999
	again, err := registry.Get(created.ID)
	if err != nil {
		t.Fatalf("get marketplace: %v", err)
	}
	if again.Fees.FeeBps != 100 {
		t.Fatalf("stored marketplace mutated through returned clone")
	}

	if _, err := registry.Get([32]byte{0xFF}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing marketplace error = %v, want ErrNotFound", err)
	}
}

func TestSanitizeNormalisesAssets(t *testing.T) {
	cfg := baseMarketplace()
	cfg.Fees.DiscountAsset = " disc "
	cfg.Rewards.RewardAsset = "bonus"
	sanitized, err := Sanitize(cfg)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if sanitized.Fees.DiscountAsset != "DISC" || sanitized.Rewards.RewardAsset != "BONUS" {
		t.Fatalf("asset symbols not normalised: %+v", sanitized)
	}
	if cfg.Fees.DiscountAsset != " disc " {
		t.Fatal("sanitize mutated its input")
	}
}

func TestRewardsActive(t *testing.T) {
	m := &Marketplace{Rewards: RewardsConfig{RewardAsset: "BONUS", RewardsEnabled: true}}
	if !m.RewardsActive("USDM") {
		t.Fatal("empty trigger must match every payment asset")
	}
	m.Rewards.TriggerAsset = "USDM"
	if !m.RewardsActive("usdm") {
		t.Fatal("trigger match must be case-insensitive")
	}
	if m.RewardsActive("OTHER") {
		t.Fatal("non-trigger asset must not accrue")
	}
	m.Rewards.RewardsEnabled = false
	if m.RewardsActive("USDM") {
		t.Fatal("disabled promotion must not accrue")
	}
}
