package ledger

import "errors"

// Transaction errors
var (
	ErrEmptyTitle         = errors.New("title must not be empty")
	ErrNonPositiveAmount  = errors.New("amount must be positive")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrNegativeTaxAmount  = errors.New("tax amount cannot be negative")
	ErrInvalidPaymentMode = errors.New("invalid payment method")
)

// Subscription errors
var (
	ErrEmptyName           = errors.New("name must not be empty")
	ErrInvalidBillingCycle = errors.New("invalid billing cycle")
)
