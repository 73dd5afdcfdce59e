package rewards

import "errors"

var (
	ErrUnauthorized       = errors.New("rewards: unauthorized")
	ErrAlreadyExists      = errors.New("rewards: bonus record already exists")
	ErrNotFound           = errors.New("rewards: bonus record not found")
	ErrMarketplaceGone    = errors.New("rewards: marketplace not found")
	ErrOpenPromotion      = errors.New("rewards: promotion still open")
	ErrPromotionClosed    = errors.New("rewards: promotion not open")
	ErrInsufficientBounty = errors.New("rewards: insufficient bounty pool")
	ErrInvalidAmount      = errors.New("rewards: amount must be positive")
	ErrNoRewardAsset      = errors.New("rewards: marketplace has no reward asset")
)
