package settlement

import (
	"math/big"
	"time"

	"marketnet/core/events"
	"marketnet/core/types"
	"marketnet/native/catalog"
	"marketnet/native/market"
	"marketnet/native/payments"
	"marketnet/native/rewards"
)

type engineState interface {
	ProductGet(id [32]byte) (*catalog.Product, bool, error)
	ProductPut(*catalog.Product) error
	MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error)
	EscrowVaultAddress() [20]byte
	Transfer(from, to [20]byte, asset string, amount *big.Int) error
	CreditCredential(scope [32]byte, addr [20]byte, units uint64) error
}

// Receipt is the result of a successful purchase. PaymentID is nil when the
// listing settles immediately and no escrow record was opened.
type Receipt struct {
	Product     [32]byte
	Marketplace [32]byte
	Seller      [20]byte
	Buyer       [20]byte
	Asset       string
	Units       uint64
	Gross       *big.Int
	Fee         *big.Int
	SellerBonus *big.Int
	BuyerBonus  *big.Int
	PaymentID   *[32]byte
}

type settlementEvent struct {
	evt *types.Event
}

func (e settlementEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e settlementEvent) Event() *types.Event { return e.evt }

// Engine drives the purchase flow: it prices the sale, moves funds, opens
// the escrow record when a refund window applies, accrues promotional
// bonuses and mints the delivery credential. It mutates state through the
// same snapshot as the engines it composes, so the whole flow applies
// atomically or not at all.
type Engine struct {
	st       engineState
	payments *payments.Engine
	rewards  *rewards.Engine
	emitter  events.Emitter
	nowFn    func() int64
}

func NewEngine(st engineState, pay *payments.Engine, rew *rewards.Engine) *Engine {
	return &Engine{
		st:       st,
		payments: pay,
		rewards:  rew,
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
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
	e.emitter.Emit(settlementEvent{evt: evt})
}

// Purchase executes a sale of units exemplars of the product to the buyer,
// paid in the product's payment asset.
func (e *Engine) Purchase(buyer [20]byte, productID [32]byte, units uint64) (*Receipt, error) {
	if units == 0 {
		return nil, ErrInvalidPurchase
	}
	product, exists, err := e.st.ProductGet(productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}
	mkt, exists, err := e.st.MarketplaceGet(product.Marketplace)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrMarketplaceGone
	}
	if !product.Available(units) {
		return nil, ErrSoldOut
	}

	gross := new(big.Int).Mul(product.Price, new(big.Int).SetUint64(units))
	dist, err := market.CalculateDistribution(mkt.Fees, product.PaymentAsset, gross)
	if err != nil {
		return nil, err
	}

	now := e.nowFn()
	receipt := &Receipt{
		Product:     productID,
		Marketplace: product.Marketplace,
		Seller:      product.Authority,
		Buyer:       buyer,
		Asset:       product.PaymentAsset,
		Units:       units,
		Gross:       gross,
		Fee:         dist.Fee,
	}

	if product.RefundWindow > 0 {
		if err := e.openEscrow(buyer, product, mkt, dist, gross, units, now, receipt); err != nil {
			return nil, err
		}
	} else if err := e.settleImmediate(buyer, product, mkt, dist); err != nil {
		return nil, err
	}

	if mkt.RewardsActive(product.PaymentAsset) {
		sellerBonus, buyerBonus, err := e.accrueBonuses(buyer, product, mkt, gross)
		if err != nil {
			return nil, err
		}
		receipt.SellerBonus = sellerBonus
		receipt.BuyerBonus = buyerBonus
	}

	// Reload before mutating the counters: opening the escrow bumped the
	// product's ActivePayments through its own read.
	product, exists, err = e.st.ProductGet(productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}
	if product.Exemplars != catalog.UnlimitedExemplars {
		product.Exemplars -= int64(units)
	}
	product.SoldCount += units
	if err := e.st.ProductPut(product); err != nil {
		return nil, err
	}

	if mkt.DeliverCredential {
		if err := e.st.CreditCredential(productID, buyer, units); err != nil {
			return nil, err
		}
	}

	e.emit(NewPurchasedEvent(receipt))
	return receipt, nil
}

// openEscrow moves the gross amount into the payments vault and records the
// payment. A buyer-side fee is settled to the marketplace authority up
// front; it is not returned on refund.
func (e *Engine) openEscrow(buyer [20]byte, product *catalog.Product, mkt *market.Marketplace, dist market.Distribution, gross *big.Int, units uint64, now int64, receipt *Receipt) error {
	if gross.Sign() > 0 {
		if err := e.st.Transfer(buyer, e.st.EscrowVaultAddress(), product.PaymentAsset, gross); err != nil {
			return err
		}
	}
	if mkt.Fees.FeePayer == market.FeePayerBuyer && dist.Fee.Sign() > 0 {
		if err := e.st.Transfer(buyer, mkt.Authority, product.PaymentAsset, dist.Fee); err != nil {
			return err
		}
	}
	payment := &payments.Payment{
		ID:             payments.DerivePaymentID(product.ID, buyer, now),
		Product:        product.ID,
		Marketplace:    product.Marketplace,
		Seller:         product.Authority,
		Buyer:          buyer,
		Asset:          product.PaymentAsset,
		Amount:         gross,
		FeeAmount:      dist.Fee,
		FeePayer:       mkt.Fees.FeePayer,
		Units:          units,
		PurchasedAt:    now,
		RefundDeadline: now + product.RefundWindow,
	}
	opened, err := e.payments.Open(payment)
	if err != nil {
		return err
	}
	id := opened.ID
	receipt.PaymentID = &id
	return nil
}

func (e *Engine) settleImmediate(buyer [20]byte, product *catalog.Product, mkt *market.Marketplace, dist market.Distribution) error {
	if dist.SellerProceeds.Sign() > 0 {
		if err := e.st.Transfer(buyer, product.Authority, product.PaymentAsset, dist.SellerProceeds); err != nil {
			return err
		}
	}
	if dist.Fee.Sign() > 0 {
		if err := e.st.Transfer(buyer, mkt.Authority, product.PaymentAsset, dist.Fee); err != nil {
			return err
		}
	}
	return nil
}

// accrueBonuses credits both sides of the sale from the bounty pool. A pool
// that cannot cover the bonuses fails the whole purchase.
func (e *Engine) accrueBonuses(buyer [20]byte, product *catalog.Product, mkt *market.Marketplace, gross *big.Int) (*big.Int, *big.Int, error) {
	sellerBonus := market.RewardFor(gross, mkt.Rewards.SellerRewardBps)
	buyerBonus := market.RewardFor(gross, mkt.Rewards.BuyerRewardBps)
	if sellerBonus.Sign() > 0 {
		if _, err := e.rewards.Accrue(product.Authority, product.Marketplace, sellerBonus); err != nil {
			return nil, nil, err
		}
	}
	if buyerBonus.Sign() > 0 {
		if _, err := e.rewards.Accrue(buyer, product.Marketplace, buyerBonus); err != nil {
			return nil, nil, err
		}
	}
	return sellerBonus, buyerBonus, nil
}
