package catalog

import "errors"

var (
	ErrUnauthorized     = errors.New("catalog: unauthorized")
	ErrAlreadyExists    = errors.New("catalog: product already exists")
	ErrNotFound         = errors.New("catalog: product not found")
	ErrInvalidProduct   = errors.New("catalog: invalid product")
	ErrNotWhitelisted   = errors.New("catalog: seller not whitelisted")
	ErrMarketplaceGone  = errors.New("catalog: marketplace not found")
	ErrUnknownAsset     = errors.New("catalog: unknown payment asset")
	ErrOpenPayments     = errors.New("catalog: open payments reference product")
	ErrSoldOut          = errors.New("catalog: sold out")
	ErrExemplarOverflow = errors.New("catalog: exemplar counter underflow")
)
