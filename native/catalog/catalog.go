package catalog

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"marketnet/core/events"
	"marketnet/core/types"
	"marketnet/native/market"
)

type catalogState interface {
	ProductPut(*Product) error
	ProductGet(id [32]byte) (*Product, bool, error)
	ProductDelete(id [32]byte) error
	MarketplaceGet(id [32]byte) (*market.Marketplace, bool, error)
	CredentialBalance(scope [32]byte, addr [20]byte) (uint64, error)
	AssetExists(symbol string) bool
}

type productEvent struct {
	evt *types.Event
}

func (e productEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e productEvent) Event() *types.Event { return e.evt }

// Catalog owns product listings. Creation enforces the marketplace listing
// gate; edits and deletion are restricted to the product authority.
type Catalog struct {
	st      catalogState
	emitter events.Emitter
	nowFn   func() int64
}

// NewCatalog creates a catalog backed by the provided state.
func NewCatalog(st catalogState) *Catalog {
	return &Catalog{
		st:      st,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

func (c *Catalog) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		c.emitter = events.NoopEmitter{}
		return
	}
	c.emitter = emitter
}

func (c *Catalog) SetNowFunc(now func() int64) {
	if now == nil {
		c.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	c.nowFn = now
}

func (c *Catalog) emit(evt *types.Event) {
	if c == nil || c.emitter == nil || evt == nil {
		return
	}
	c.emitter.Emit(productEvent{evt: evt})
}

// Create lists a product on the marketplace. Gated marketplaces require the
// seller to hold an access credential; the check happens at creation time
// only and is not revalidated afterwards.
func (c *Catalog) Create(seller [20]byte, marketplaceID [32]byte, compositeID string, price *big.Int, paymentAsset string, exemplars int64, refundWindow int64) (*Product, error) {
	mkt, exists, err := c.st.MarketplaceGet(marketplaceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrMarketplaceGone
	}
	if !mkt.Access.Permissionless {
		grants, err := c.st.CredentialBalance(marketplaceID, seller)
		if err != nil {
			return nil, err
		}
		if grants == 0 {
			return nil, ErrNotWhitelisted
		}
	}
	asset := strings.ToUpper(strings.TrimSpace(paymentAsset))
	if !c.st.AssetExists(asset) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	id, err := DeriveID(marketplaceID, compositeID)
	if err != nil {
		return nil, err
	}
	if _, taken, err := c.st.ProductGet(id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrAlreadyExists
	}
	now := c.nowFn()
	product := &Product{
		ID:           id,
		Marketplace:  marketplaceID,
		Authority:    seller,
		CompositeID:  compositeID,
		PaymentAsset: asset,
		Price:        price,
		Exemplars:    exemplars,
		RefundWindow: refundWindow,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sanitized, err := Sanitize(product)
	if err != nil {
		return nil, err
	}
	if err := c.st.ProductPut(sanitized); err != nil {
		return nil, err
	}
	c.emit(NewProductCreatedEvent(sanitized))
	return sanitized.Clone(), nil
}

// Edit updates the price and/or payment asset of a listing. Nil arguments
// leave the corresponding field unchanged.
func (c *Catalog) Edit(caller [20]byte, productID [32]byte, newPrice *big.Int, newPaymentAsset *string) (*Product, error) {
	product, exists, err := c.st.ProductGet(productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	if product.Authority != caller {
		return nil, ErrUnauthorized
	}
	if newPrice != nil {
		product.Price = new(big.Int).Set(newPrice)
	}
	if newPaymentAsset != nil {
		asset := strings.ToUpper(strings.TrimSpace(*newPaymentAsset))
		if !c.st.AssetExists(asset) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
		}
		product.PaymentAsset = asset
	}
	product.UpdatedAt = c.nowFn()
	sanitized, err := Sanitize(product)
	if err != nil {
		return nil, err
	}
	if err := c.st.ProductPut(sanitized); err != nil {
		return nil, err
	}
	c.emit(NewProductUpdatedEvent(sanitized))
	return sanitized.Clone(), nil
}

// Delete removes a listing. Only the authority may delete, and only when no
// open payment records reference the product.
func (c *Catalog) Delete(caller [20]byte, productID [32]byte) error {
	product, exists, err := c.st.ProductGet(productID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if product.Authority != caller {
		return ErrUnauthorized
	}
	if product.ActivePayments > 0 {
		return ErrOpenPayments
	}
	if err := c.st.ProductDelete(productID); err != nil {
		return err
	}
	c.emit(NewProductDeletedEvent(product))
	return nil
}

// Get resolves a product by id.
func (c *Catalog) Get(productID [32]byte) (*Product, error) {
	product, exists, err := c.st.ProductGet(productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return product.Clone(), nil
}
