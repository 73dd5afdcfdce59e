package state

import (
	"math/big"

	"marketnet/native/catalog"
)

// storedProduct flattens the product record into RLP-friendly types. The
// signed remaining-sale counter splits into a magnitude plus an unlimited
// flag because RLP cannot encode negative integers.
type storedProduct struct {
	ID             [32]byte
	Marketplace    [32]byte
	Authority      [20]byte
	CompositeID    string
	PaymentAsset   string
	Price          *big.Int
	Exemplars      uint64
	Unlimited      bool
	SoldCount      uint64
	RefundWindow   uint64
	ActivePayments uint64
	CreatedAt      uint64
	UpdatedAt      uint64
}

func productKey(id [32]byte) []byte {
	return prefixedKey(productPrefix, id[:])
}

func toStoredProduct(p *catalog.Product) *storedProduct {
	stored := &storedProduct{
		ID:             p.ID,
		Marketplace:    p.Marketplace,
		Authority:      p.Authority,
		CompositeID:    p.CompositeID,
		PaymentAsset:   p.PaymentAsset,
		Price:          p.Price,
		SoldCount:      p.SoldCount,
		RefundWindow:   uint64(p.RefundWindow),
		ActivePayments: p.ActivePayments,
		CreatedAt:      uint64(p.CreatedAt),
		UpdatedAt:      uint64(p.UpdatedAt),
	}
	if stored.Price == nil {
		stored.Price = big.NewInt(0)
	}
	if p.Exemplars == catalog.UnlimitedExemplars {
		stored.Unlimited = true
	} else {
		stored.Exemplars = uint64(p.Exemplars)
	}
	return stored
}

func (s *storedProduct) toProduct() *catalog.Product {
	product := &catalog.Product{
		ID:             s.ID,
		Marketplace:    s.Marketplace,
		Authority:      s.Authority,
		CompositeID:    s.CompositeID,
		PaymentAsset:   s.PaymentAsset,
		Price:          s.Price,
		Exemplars:      int64(s.Exemplars),
		SoldCount:      s.SoldCount,
		RefundWindow:   int64(s.RefundWindow),
		ActivePayments: s.ActivePayments,
		CreatedAt:      int64(s.CreatedAt),
		UpdatedAt:      int64(s.UpdatedAt),
	}
	if product.Price == nil {
		product.Price = big.NewInt(0)
	}
	if s.Unlimited {
		product.Exemplars = catalog.UnlimitedExemplars
	}
	return product
}

// ProductPut persists a product record keyed by its id.
func (m *Manager) ProductPut(p *catalog.Product) error {
	return m.putRecord(productKey(p.ID), toStoredProduct(p))
}

// ProductGet loads a product record by id.
func (m *Manager) ProductGet(id [32]byte) (*catalog.Product, bool, error) {
	var stored storedProduct
	ok, err := m.getRecord(productKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toProduct(), true, nil
}

// ProductDelete removes a product record.
func (m *Manager) ProductDelete(id [32]byte) error {
	return m.deleteRecord(productKey(id))
}
