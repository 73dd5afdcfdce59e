package state

import (
	"math/big"

	"marketnet/native/market"
	"marketnet/native/payments"
)

// escrowVaultName keys the module vault holding all open escrow amounts.
const escrowVaultName = "payments"

type storedPayment struct {
	ID             [32]byte
	Product        [32]byte
	Marketplace    [32]byte
	Seller         [20]byte
	Buyer          [20]byte
	Asset          string
	Amount         *big.Int
	FeeAmount      *big.Int
	FeePayer       uint8
	Units          uint64
	PurchasedAt    uint64
	RefundDeadline uint64
}

func paymentKey(id [32]byte) []byte {
	return prefixedKey(paymentPrefix, id[:])
}

// PaymentPut persists an open escrow record keyed by its id.
func (m *Manager) PaymentPut(p *payments.Payment) error {
	amount := p.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	fee := p.FeeAmount
	if fee == nil {
		fee = big.NewInt(0)
	}
	return m.putRecord(paymentKey(p.ID), &storedPayment{
		ID:             p.ID,
		Product:        p.Product,
		Marketplace:    p.Marketplace,
		Seller:         p.Seller,
		Buyer:          p.Buyer,
		Asset:          p.Asset,
		Amount:         amount,
		FeeAmount:      fee,
		FeePayer:       uint8(p.FeePayer),
		Units:          p.Units,
		PurchasedAt:    uint64(p.PurchasedAt),
		RefundDeadline: uint64(p.RefundDeadline),
	})
}

// PaymentGet loads an open escrow record by id.
func (m *Manager) PaymentGet(id [32]byte) (*payments.Payment, bool, error) {
	var stored storedPayment
	ok, err := m.getRecord(paymentKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	payment := &payments.Payment{
		ID:             stored.ID,
		Product:        stored.Product,
		Marketplace:    stored.Marketplace,
		Seller:         stored.Seller,
		Buyer:          stored.Buyer,
		Asset:          stored.Asset,
		Amount:         stored.Amount,
		FeeAmount:      stored.FeeAmount,
		FeePayer:       market.FeePayer(stored.FeePayer),
		Units:          stored.Units,
		PurchasedAt:    int64(stored.PurchasedAt),
		RefundDeadline: int64(stored.RefundDeadline),
	}
	if payment.Amount == nil {
		payment.Amount = big.NewInt(0)
	}
	if payment.FeeAmount == nil {
		payment.FeeAmount = big.NewInt(0)
	}
	return payment, true, nil
}

// PaymentDelete removes a resolved escrow record.
func (m *Manager) PaymentDelete(id [32]byte) error {
	return m.deleteRecord(paymentKey(id))
}

// EscrowVaultAddress returns the address holding open escrow funds.
func (m *Manager) EscrowVaultAddress() [20]byte {
	return ModuleVaultAddress(escrowVaultName)
}
