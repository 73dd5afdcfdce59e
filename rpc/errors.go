package rpc

import (
	"errors"
	"net/http"

	"marketnet/core/state"
	"marketnet/native/access"
	"marketnet/native/catalog"
	"marketnet/native/market"
	"marketnet/native/payments"
	"marketnet/native/rewards"
	"marketnet/native/settlement"
)

var notFoundErrors = []error{
	market.ErrNotFound,
	catalog.ErrNotFound,
	access.ErrRequestNotFound,
	payments.ErrNotFound,
	rewards.ErrNotFound,
	settlement.ErrProductNotFound,
	access.ErrMarketplaceGone,
	rewards.ErrMarketplaceGone,
	catalog.ErrMarketplaceGone,
	settlement.ErrMarketplaceGone,
	state.ErrUnknownAsset,
}

var forbiddenErrors = []error{
	market.ErrUnauthorized,
	catalog.ErrUnauthorized,
	access.ErrUnauthorized,
	rewards.ErrUnauthorized,
	payments.ErrIncorrectPaymentAuthority,
	catalog.ErrNotWhitelisted,
}

var conflictErrors = []error{
	market.ErrAlreadyExists,
	catalog.ErrAlreadyExists,
	access.ErrAlreadyRequested,
	payments.ErrAlreadyExists,
	rewards.ErrAlreadyExists,
	catalog.ErrOpenPayments,
	rewards.ErrOpenPromotion,
	payments.ErrTimeForRefundConsumed,
	payments.ErrCannotWithdrawYet,
	settlement.ErrSoldOut,
	rewards.ErrInsufficientBounty,
	rewards.ErrPromotionClosed,
	state.ErrInsufficientBalance,
}

var invalidErrors = []error{
	market.ErrInvalidConfig,
	catalog.ErrInvalidProduct,
	catalog.ErrUnknownAsset,
	catalog.ErrSoldOut,
	catalog.ErrExemplarOverflow,
	payments.ErrInvalidPayment,
	rewards.ErrInvalidAmount,
	rewards.ErrNoRewardAsset,
	settlement.ErrInvalidPurchase,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeEngineError translates a native engine failure into the matching RPC
// error code and HTTP status.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	switch {
	case matchesAny(err, notFoundErrors):
		writeError(w, http.StatusNotFound, id, codeNotFound, err.Error(), nil)
	case matchesAny(err, forbiddenErrors):
		writeError(w, http.StatusForbidden, id, codeForbidden, err.Error(), nil)
	case matchesAny(err, conflictErrors):
		writeError(w, http.StatusConflict, id, codeConflict, err.Error(), nil)
	case matchesAny(err, invalidErrors):
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, err.Error(), nil)
	}
}
