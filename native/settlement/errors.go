package settlement

import "errors"

var (
	// ErrInvalidPurchase marks a purchase request with malformed inputs,
	// such as zero units.
	ErrInvalidPurchase = errors.New("settlement: invalid purchase")
	// ErrProductNotFound is returned when the listing does not exist.
	ErrProductNotFound = errors.New("settlement: product not found")
	// ErrMarketplaceGone is returned when the listing references a
	// marketplace record that no longer resolves.
	ErrMarketplaceGone = errors.New("settlement: marketplace not found")
	// ErrSoldOut is returned when the listing cannot cover the requested
	// units.
	ErrSoldOut = errors.New("settlement: product sold out")
)
