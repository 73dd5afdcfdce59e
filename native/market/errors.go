package market

import "errors"

var (
	ErrUnauthorized  = errors.New("market: unauthorized")
	ErrAlreadyExists = errors.New("market: marketplace already exists")
	ErrNotFound      = errors.New("market: marketplace not found")
	ErrInvalidConfig = errors.New("market: invalid configuration")
)
