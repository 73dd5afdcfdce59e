package payments

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"marketnet/native/catalog"
	"marketnet/native/market"
)

type mockState struct {
	payments     map[[32]byte]*Payment
	products     map[[32]byte]*catalog.Product
	marketplaces map[[32]byte]*market.Marketplace
	balances     map[string]map[[20]byte]*big.Int
	vault        [20]byte
}

func newMockState() *mockState {
	return &mockState{
		payments:     make(map[[32]byte]*Payment),
		products:     make(map[[32]byte]*catalog.Product),
		marketplaces: make(map[[32]byte]*market.Marketplace),
		balances:     make(map[string]map[[20]byte]*big.Int),
		vault:        newTestAddress(0xEE),
	}
}

func (m *mockState) PaymentPut(p *Payment) error {
	m.payments[p.ID] = p.Clone()
	return nil
}

func (m *mockState) PaymentGet(id [32]byte) (*Payment, bool, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (m *mockState) PaymentDelete(id [32]byte) error {
	delete(m.payments, id)
	return nil
}

func (m *mockState) ProductGet(id [32]byte) (*catalog.Product, bool, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

func (m *mockState) ProductPut(p *catalog.Product) error {
	m.products[p.ID] = p.Clone()
	return nil
}

func (m *mockState) MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error) {
	mp, ok := m.marketplaces[id]
	if !ok {
		return nil, false, nil
	}
	return mp.Clone(), true, nil
}

func (m *mockState) EscrowVaultAddress() [20]byte { return m.vault }

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

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

type fixture struct {
	st        *mockState
	engine    *Engine
	now       int64
	seller    [20]byte
	buyer     [20]byte
	authority [20]byte
	mktID     [32]byte
	productID [32]byte
}

func newFixture(t *testing.T, feePayer market.FeePayer) *fixture {
	t.Helper()
	f := &fixture{
		st:        newMockState(),
		now:       1_000,
		seller:    newTestAddress(0x01),
		buyer:     newTestAddress(0x02),
		authority: newTestAddress(0xAA),
	}
	f.mktID = market.DeriveID(f.authority)
	f.st.marketplaces[f.mktID] = &market.Marketplace{
		ID:        f.mktID,
		Authority: f.authority,
		Fees:      market.FeesConfig{FeeBps: 100, FeePayer: feePayer},
	}
	productID, err := catalog.DeriveID(f.mktID, "sku-1")
	if err != nil {
		t.Fatalf("derive product id: %v", err)
	}
	f.productID = productID
	f.st.products[productID] = &catalog.Product{
		ID:           productID,
		Marketplace:  f.mktID,
		Authority:    f.seller,
		PaymentAsset: "USDM",
		Price:        big.NewInt(10000),
		Exemplars:    catalog.UnlimitedExemplars,
		RefundWindow: 600,
	}
	f.engine = NewEngine(f.st)
	f.engine.SetNowFunc(func() int64 { return f.now })
	return f
}

func (f *fixture) openPayment(t *testing.T, feePayer market.FeePayer) *Payment {
	t.Helper()
	// The settlement engine funds the vault before opening the record.
	f.st.fund(f.st.vault, "USDM", 20000)
	payment := &Payment{
		ID:             DerivePaymentID(f.productID, f.buyer, f.now),
		Product:        f.productID,
		Marketplace:    f.mktID,
		Seller:         f.seller,
		Buyer:          f.buyer,
		Asset:          "USDM",
		Amount:         big.NewInt(20000),
		FeeAmount:      big.NewInt(200),
		FeePayer:       feePayer,
		Units:          2,
		PurchasedAt:    f.now,
		RefundDeadline: f.now + 600,
	}
	opened, err := f.engine.Open(payment)
	if err != nil {
		t.Fatalf("open payment: %v", err)
	}
	return opened
}

func TestOpenPayment(t *testing.T) {
	f := newFixture(t, market.FeePayerSeller)
	opened := f.openPayment(t, market.FeePayerSeller)

	if got := f.st.products[f.productID].ActivePayments; got != 1 {
		t.Fatalf("active payments = %d, want 1", got)
	}
	if _, err := f.engine.Open(opened); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate open error = %v, want ErrAlreadyExists", err)
	}
	if _, err := f.engine.Open(&Payment{ID: [32]byte{0x01}, Product: [32]byte{0xFF}, Amount: big.NewInt(1)}); !errors.Is(err, ErrInvalidPayment) {
		t.Fatalf("open for unknown product error = %v, want ErrInvalidPayment", err)
	}
}

func TestRefundWithinWindow(t *testing.T) {
	f := newFixture(t, market.FeePayerSeller)
	opened := f.openPayment(t, market.FeePayerSeller)

	if _, err := f.engine.Refund(f.seller, opened.ID); !errors.Is(err, ErrIncorrectPaymentAuthority) {
		t.Fatalf("refund by seller error = %v, want ErrIncorrectPaymentAuthority", err)
	}

	f.now = opened.RefundDeadline // the boundary second still refunds
	refunded, err := f.engine.Refund(f.buyer, opened.ID)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if got := f.st.balance("USDM", f.buyer).Int64(); got != 20000 {
		t.Fatalf("buyer balance = %d, want 20000", got)
	}
	if got := f.st.products[f.productID].ActivePayments; got != 0 {
		t.Fatalf("active payments = %d, want 0", got)
	}

	// The record is closed; the seller can no longer withdraw.
	f.now = opened.RefundDeadline + 1
	if _, err := f.engine.Withdraw(f.seller, refunded.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("withdraw after refund error = %v, want ErrNotFound", err)
	}
}

func TestRefundAfterWindow(t *testing.T) {
	f := newFixture(t, market.FeePayerSeller)
	opened := f.openPayment(t, market.FeePayerSeller)

	f.now = opened.RefundDeadline + 1
	if _, err := f.engine.Refund(f.buyer, opened.ID); !errors.Is(err, ErrTimeForRefundConsumed) {
		t.Fatalf("late refund error = %v, want ErrTimeForRefundConsumed", err)
	}
}

func TestWithdrawSellerPaysFee(t *testing.T) {
	f := newFixture(t, market.FeePayerSeller)
	opened := f.openPayment(t, market.FeePayerSeller)

	if _, err := f.engine.Withdraw(f.seller, opened.ID); !errors.Is(err, ErrCannotWithdrawYet) {
		t.Fatalf("early withdraw error = %v, want ErrCannotWithdrawYet", err)
	}

	f.now = opened.RefundDeadline + 1
	if _, err := f.engine.Withdraw(f.buyer, opened.ID); !errors.Is(err, ErrIncorrectPaymentAuthority) {
		t.Fatalf("withdraw by buyer error = %v, want ErrIncorrectPaymentAuthority", err)
	}

	if _, err := f.engine.Withdraw(f.seller, opened.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := f.st.balance("USDM", f.seller).Int64(); got != 19800 {
		t.Fatalf("seller balance = %d, want 19800", got)
	}
	if got := f.st.balance("USDM", f.authority).Int64(); got != 200 {
		t.Fatalf("authority balance = %d, want 200", got)
	}
	if got := f.st.products[f.productID].ActivePayments; got != 0 {
		t.Fatalf("active payments = %d, want 0", got)
	}

	// Exactly one resolution: the buyer cannot refund a withdrawn record.
	if _, err := f.engine.Refund(f.buyer, opened.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("refund after withdraw error = %v, want ErrNotFound", err)
	}
}

func TestWithdrawBuyerPaysFee(t *testing.T) {
	f := newFixture(t, market.FeePayerBuyer)
	opened := f.openPayment(t, market.FeePayerBuyer)

	// The buyer-side fee went to the authority at purchase time, so the
	// whole escrowed amount belongs to the seller.
	f.now = opened.RefundDeadline + 1
	if _, err := f.engine.Withdraw(f.seller, opened.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := f.st.balance("USDM", f.seller).Int64(); got != 20000 {
		t.Fatalf("seller balance = %d, want 20000", got)
	}
	if got := f.st.balance("USDM", f.authority).Int64(); got != 0 {
		t.Fatalf("authority balance = %d, want 0", got)
	}
}

func TestGetPayment(t *testing.T) {
	f := newFixture(t, market.FeePayerSeller)
	opened := f.openPayment(t, market.FeePayerSeller)

	got, err := f.engine.Get(opened.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if got.Amount.Int64() != 20000 || got.Units != 2 {
		t.Fatalf("unexpected payment: %+v", got)
	}
	if _, err := f.engine.Get([32]byte{0xFF}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing payment error = %v, want ErrNotFound", err)
	}
}
