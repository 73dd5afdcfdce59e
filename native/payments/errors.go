package payments

import "errors"

var (
	ErrNotFound = errors.New("payments: payment not found")
	// ErrIncorrectPaymentAuthority rejects a refund not signed by the buyer
	// or a withdrawal not signed by the seller.
	ErrIncorrectPaymentAuthority = errors.New("payments: incorrect payment authority")
	// ErrTimeForRefundConsumed rejects a refund after the window elapsed.
	ErrTimeForRefundConsumed = errors.New("payments: time for refund has consumed")
	// ErrCannotWithdrawYet rejects a seller withdrawal before the refund
	// window ends.
	ErrCannotWithdrawYet = errors.New("payments: cannot withdraw yet")
	ErrAlreadyExists     = errors.New("payments: payment already exists")
	ErrInvalidPayment    = errors.New("payments: invalid payment")
)
