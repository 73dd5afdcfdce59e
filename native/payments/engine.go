package payments

import (
	"math/big"
	"time"

	"marketnet/core/events"
	"marketnet/core/types"
	"marketnet/native/catalog"
	"marketnet/native/market"
)

type engineState interface {
	PaymentPut(*Payment) error
	PaymentGet(id [32]byte) (*Payment, bool, error)
	PaymentDelete(id [32]byte) error
	ProductGet(id [32]byte) (*catalog.Product, bool, error)
	ProductPut(*catalog.Product) error
	MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error)
	EscrowVaultAddress() [20]byte
	Transfer(from, to [20]byte, asset string, amount *big.Int) error
}

type paymentEvent struct {
	evt *types.Event
}

func (e paymentEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e paymentEvent) Event() *types.Event { return e.evt }

// Engine owns payment escrow records and the refund-versus-withdraw race.
// Eligibility is decided by comparing the stored deadline against the engine
// clock at call time; there are no scheduled transitions.
type Engine struct {
	st      engineState
	emitter events.Emitter
	nowFn   func() int64
}

func NewEngine(st engineState) *Engine {
	return &Engine{
		st:      st,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(paymentEvent{evt: evt})
}

// Open persists a new escrow record and bumps the product's open-payment
// counter. The settlement engine calls this after moving the escrowed funds
// into the payments vault; duplicate ids fail rather than double-apply.
func (e *Engine) Open(p *Payment) (*Payment, error) {
	if p == nil || p.Amount == nil || p.Amount.Sign() < 0 {
		return nil, ErrInvalidPayment
	}
	if _, exists, err := e.st.PaymentGet(p.ID); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrAlreadyExists
	}
	product, exists, err := e.st.ProductGet(p.Product)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvalidPayment
	}
	stored := p.Clone()
	if err := e.st.PaymentPut(stored); err != nil {
		return nil, err
	}
	product.ActivePayments++
	if err := e.st.ProductPut(product); err != nil {
		return nil, err
	}
	e.emit(NewPaymentOpenedEvent(stored))
	return stored.Clone(), nil
}

// Refund returns the escrowed amount to the buyer. It succeeds only while
// the refund window is open and only for the record's buyer. The record is
// closed; a concurrent or subsequent withdrawal fails with ErrNotFound.
func (e *Engine) Refund(caller [20]byte, id [32]byte) (*Payment, error) {
	payment, exists, err := e.st.PaymentGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	if payment.Buyer != caller {
		return nil, ErrIncorrectPaymentAuthority
	}
	if e.nowFn() > payment.RefundDeadline {
		return nil, ErrTimeForRefundConsumed
	}
	if err := e.st.Transfer(e.st.EscrowVaultAddress(), payment.Buyer, payment.Asset, payment.Amount); err != nil {
		return nil, err
	}
	if err := e.close(payment); err != nil {
		return nil, err
	}
	e.emit(NewPaymentRefundedEvent(payment))
	return payment.Clone(), nil
}

// Withdraw releases the escrow to the seller once the refund window has
// elapsed, splitting out the fee captured at purchase time. Only the
// record's seller may withdraw.
func (e *Engine) Withdraw(caller [20]byte, id [32]byte) (*Payment, error) {
	payment, exists, err := e.st.PaymentGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	if payment.Seller != caller {
		return nil, ErrIncorrectPaymentAuthority
	}
	if e.nowFn() <= payment.RefundDeadline {
		return nil, ErrCannotWithdrawYet
	}
	vault := e.st.EscrowVaultAddress()
	sellerShare := new(big.Int).Set(payment.Amount)
	fee := big.NewInt(0)
	// A buyer-side fee was charged on top of the escrow at purchase time;
	// only a seller-side fee comes out of the escrowed amount here.
	if payment.FeePayer == market.FeePayerSeller && payment.FeeAmount != nil {
		fee = new(big.Int).Set(payment.FeeAmount)
		sellerShare.Sub(sellerShare, fee)
	}
	if sellerShare.Sign() > 0 {
		if err := e.st.Transfer(vault, payment.Seller, payment.Asset, sellerShare); err != nil {
			return nil, err
		}
	}
	if fee.Sign() > 0 {
		mkt, exists, err := e.st.MarketplaceGet(payment.Marketplace)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrInvalidPayment
		}
		if err := e.st.Transfer(vault, mkt.Authority, payment.Asset, fee); err != nil {
			return nil, err
		}
	}
	if err := e.close(payment); err != nil {
		return nil, err
	}
	e.emit(NewPaymentWithdrawnEvent(payment))
	return payment.Clone(), nil
}

func (e *Engine) close(payment *Payment) error {
	if err := e.st.PaymentDelete(payment.ID); err != nil {
		return err
	}
	product, exists, err := e.st.ProductGet(payment.Product)
	if err != nil {
		return err
	}
	if exists && product.ActivePayments > 0 {
		product.ActivePayments--
		if err := e.st.ProductPut(product); err != nil {
			return err
		}
	}
	return nil
}

// Get resolves an open payment by id.
func (e *Engine) Get(id [32]byte) (*Payment, error) {
	payment, exists, err := e.st.PaymentGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return payment.Clone(), nil
}
