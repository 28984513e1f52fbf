package settings

import "errors"

var (
	ErrNegativeBudget      = errors.New("budget limit cannot be negative")
	ErrNegativeSavingsGoal = errors.New("savings goal cannot be negative")
	ErrNonPositiveRate     = errors.New("custom rate must be positive")
)
