package rewards

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"marketnet/native/market"
)

type poolKey struct {
	marketplace [32]byte
	asset       string
}

type mockState struct {
	bonuses      map[[32]byte]*Bonus
	marketplaces map[[32]byte]*market.Marketplace
	pools        map[poolKey]*big.Int
	balances     map[string]map[[20]byte]*big.Int
	vault        [20]byte
}

func newMockState() *mockState {
	return &mockState{
		bonuses:      make(map[[32]byte]*Bonus),
		marketplaces: make(map[[32]byte]*market.Marketplace),
		pools:        make(map[poolKey]*big.Int),
		balances:     make(map[string]map[[20]byte]*big.Int),
		vault:        newTestAddress(0xEE),
	}
}

func (m *mockState) BonusPut(b *Bonus) error {
	m.bonuses[b.ID] = b.Clone()
	return nil
}

func (m *mockState) BonusGet(id [32]byte) (*Bonus, bool, error) {
	b, ok := m.bonuses[id]
	if !ok {
		return nil, false, nil
	}
	return b.Clone(), true, nil
}

func (m *mockState) BonusDelete(id [32]byte) error {
	delete(m.bonuses, id)
	return nil
}

func (m *mockState) MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error) {
	mp, ok := m.marketplaces[id]
	if !ok {
		return nil, false, nil
	}
	return mp.Clone(), true, nil
}

func (m *mockState) BountyPoolBalance(marketplace [32]byte, asset string) (*big.Int, error) {
	pool, ok := m.pools[poolKey{marketplace, asset}]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(pool), nil
}

func (m *mockState) SetBountyPoolBalance(marketplace [32]byte, asset string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("negative pool balance")
	}
	m.pools[poolKey{marketplace, asset}] = new(big.Int).Set(amount)
	return nil
}

func (m *mockState) BountyVaultAddress() [20]byte { return m.vault }

func (m *mockState) balance(asset string, addr [20]byte) *big.Int {
	if m.balances[asset] == nil {
		m.balances[asset] = make(map[[20]byte]*big.Int)
	}
	if m.balances[asset][addr] == nil {
		m.balances[asset][addr] = big.NewInt(0)
	}
	return m.balances[asset][addr]
}

func (m *mockState) Transfer(from, to [20]byte, asset string, amount *big.Int) error {
	src := m.balance(asset, from)
	if src.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance")
	}
	src.Sub(src, amount)
	m.balance(asset, to).Add(m.balance(asset, to), amount)
	return nil
}

func (m *mockState) fund(addr [20]byte, asset string, amount int64) {
	m.balance(asset, addr).Add(m.balance(asset, addr), big.NewInt(amount))
}

func (m *mockState) addMarketplace(authority [20]byte, rewards market.RewardsConfig) [32]byte {
	id := market.DeriveID(authority)
	m.marketplaces[id] = &market.Marketplace{ID: id, Authority: authority, Rewards: rewards}
	return id
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func openPromotion() market.RewardsConfig {
	return market.RewardsConfig{
		RewardAsset:     "BONUS",
		SellerRewardBps: 20,
		BuyerRewardBps:  20,
		RewardsEnabled:  true,
	}
}

func TestFundBounty(t *testing.T) {
	st := newMockState()
	authority := newTestAddress(0xAA)
	mktID := st.addMarketplace(authority, openPromotion())
	st.fund(authority, "BONUS", 1000)
	engine := NewEngine(st)

	if err := engine.FundBounty(authority, mktID, big.NewInt(400)); err != nil {
		t.Fatalf("fund bounty: %v", err)
	}
	pool, _ := st.BountyPoolBalance(mktID, "BONUS")
	if pool.Int64() != 400 {
		t.Fatalf("pool = %d, want 400", pool.Int64())
	}
	if got := st.balance("BONUS", st.vault).Int64(); got != 400 {
		t.Fatalf("vault balance = %d, want 400", got)
	}
	if got := st.balance("BONUS", authority).Int64(); got != 600 {
		t.Fatalf("authority balance = %d, want 600", got)
	}

	if err := engine.FundBounty(newTestAddress(0x01), mktID, big.NewInt(1)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("fund by stranger error = %v, want ErrUnauthorized", err)
	}
	if err := engine.FundBounty(authority, mktID, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount error = %v, want ErrInvalidAmount", err)
	}
	if err := engine.FundBounty(authority, mktID, big.NewInt(10_000)); err == nil {
		t.Fatal("funding beyond the authority balance must fail")
	}
}

func TestInitAccrual(t *testing.T) {
	st := newMockState()
	authority := newTestAddress(0xAA)
	mktID := st.addMarketplace(authority, openPromotion())
	engine := NewEngine(st)

	principal := newTestAddress(0x01)
	bonus, err := engine.InitAccrual(principal, mktID)
	if err != nil {
		t.Fatalf("init accrual: %v", err)
	}
	if bonus.Asset != "BONUS" || bonus.Balance.Sign() != 0 {
		t.Fatalf("unexpected bonus record: %+v", bonus)
	}
	if bonus.ID != DeriveBonusID(mktID, principal) {
		t.Fatal("bonus id not derived from marketplace and principal")
	}

	if _, err := engine.InitAccrual(principal, mktID); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate init error = %v, want ErrAlreadyExists", err)
	}

	bare := st.addMarketplace(newTestAddress(0xBB), market.RewardsConfig{})
	if _, err := engine.InitAccrual(principal, bare); !errors.Is(err, ErrNoRewardAsset) {
		t.Fatalf("init without reward asset error = %v, want ErrNoRewardAsset", err)
	}
}

func TestAccrue(t *testing.T) {
	st := newMockState()
	authority := newTestAddress(0xAA)
	mktID := st.addMarketplace(authority, openPromotion())
	st.fund(authority, "BONUS", 100)
	engine := NewEngine(st)
	if err := engine.FundBounty(authority, mktID, big.NewInt(100)); err != nil {
		t.Fatalf("fund bounty: %v", err)
	}

	// Accrual creates the record lazily when missing.
	principal := newTestAddress(0x01)
	bonus, err := engine.Accrue(principal, mktID, big.NewInt(20))
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if bonus.Balance.Int64() != 20 {
		t.Fatalf("bonus balance = %d, want 20", bonus.Balance.Int64())
	}
	pool, _ := st.BountyPoolBalance(mktID, "BONUS")
	if pool.Int64() != 80 {
		t.Fatalf("pool = %d, want 80", pool.Int64())
	}

	bonus, err = engine.Accrue(principal, mktID, big.NewInt(30))
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if bonus.Balance.Int64() != 50 {
		t.Fatalf("bonus balance = %d, want 50", bonus.Balance.Int64())
	}

	// The pool bounds total accrual.
	if _, err := engine.Accrue(principal, mktID, big.NewInt(51)); !errors.Is(err, ErrInsufficientBounty) {
		t.Fatalf("over-pool accrue error = %v, want ErrInsufficientBounty", err)
	}

	// Closing the promotion stops accrual.
	st.marketplaces[mktID].Rewards.RewardsEnabled = false
	if _, err := engine.Accrue(principal, mktID, big.NewInt(1)); !errors.Is(err, ErrPromotionClosed) {
		t.Fatalf("closed promotion accrue error = %v, want ErrPromotionClosed", err)
	}
}

func TestWithdrawVesting(t *testing.T) {
	st := newMockState()
	authority := newTestAddress(0xAA)
	mktID := st.addMarketplace(authority, openPromotion())
	st.fund(authority, "BONUS", 100)
	engine := NewEngine(st)
	if err := engine.FundBounty(authority, mktID, big.NewInt(100)); err != nil {
		t.Fatalf("fund bounty: %v", err)
	}
	principal := newTestAddress(0x01)
	if _, err := engine.Accrue(principal, mktID, big.NewInt(40)); err != nil {
		t.Fatalf("accrue: %v", err)
	}

	// Withdrawal vests only once the promotion closes.
	if _, err := engine.Withdraw(principal, mktID); !errors.Is(err, ErrOpenPromotion) {
		t.Fatalf("open promotion withdraw error = %v, want ErrOpenPromotion", err)
	}

	st.marketplaces[mktID].Rewards.RewardsEnabled = false
	amount, err := engine.Withdraw(principal, mktID)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if amount.Int64() != 40 {
		t.Fatalf("withdrawn = %d, want 40", amount.Int64())
	}
	if got := st.balance("BONUS", principal).Int64(); got != 40 {
		t.Fatalf("principal balance = %d, want 40", got)
	}
	if got := st.balance("BONUS", st.vault).Int64(); got != 60 {
		t.Fatalf("vault balance = %d, want 60", got)
	}

	// The record closes on withdrawal.
	if _, err := engine.Withdraw(principal, mktID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second withdraw error = %v, want ErrNotFound", err)
	}
	balance, err := engine.Balance(principal, mktID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("balance after withdrawal = %s, want 0", balance)
	}
}

func TestPoolCoversOutstandingBonus(t *testing.T) {
	st := newMockState()
	authority := newTestAddress(0xAA)
	mktID := st.addMarketplace(authority, openPromotion())
	st.fund(authority, "BONUS", 500)
	engine := NewEngine(st)
	if err := engine.FundBounty(authority, mktID, big.NewInt(500)); err != nil {
		t.Fatalf("fund bounty: %v", err)
	}

	principals := []([20]byte){newTestAddress(0x01), newTestAddress(0x02), newTestAddress(0x03)}
	for _, p := range principals {
		if _, err := engine.Accrue(p, mktID, big.NewInt(150)); err != nil {
			t.Fatalf("accrue: %v", err)
		}
	}

	outstanding := big.NewInt(0)
	for _, b := range st.bonuses {
		outstanding.Add(outstanding, b.Balance)
	}
	pool, _ := st.BountyPoolBalance(mktID, "BONUS")
	if vault := st.balance("BONUS", st.vault); vault.Cmp(outstanding) < 0 {
		t.Fatalf("vault %s does not cover outstanding bonus %s", vault, outstanding)
	}
	if total := new(big.Int).Add(pool, outstanding); total.Int64() != 500 {
		t.Fatalf("pool + outstanding = %d, want 500", total.Int64())
	}
}
