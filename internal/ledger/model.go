package ledger

import (
	"time"

	"github.com/annuksk07-cloud/xpenseflow/internal/currency"
)

// TransactionType classifies a transaction as money in or money out
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// IsValid reports whether the type is one of the known values
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// PaymentMethod is how a transaction was paid
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentWallet   PaymentMethod = "WALLET"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// IsValid reports whether the payment method is one of the known values
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentWallet, PaymentTransfer:
		return true
	}
	return false
}

// Transaction is an immutable-once-created ledger record. Amount holds the
// original amount converted into the base currency that was active at
// creation time; it is never recomputed when settings change later.
type Transaction struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Amount         float64         `json:"amount"`
	OriginalAmount float64         `json:"originalAmount"`
	Currency       currency.Code   `json:"currency"`
	Type           TransactionType `json:"type"`
	Category       string          `json:"category"`
	Date           time.Time       `json:"date"`
	Tags           []string        `json:"tags,omitempty"`
	IsRecurring    bool            `json:"isRecurring,omitempty"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod,omitempty"`
	HasTax         bool            `json:"hasTax,omitempty"`
	TaxAmount      float64         `json:"taxAmount,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// TransactionDraft is the user-entered part of a transaction. The engine
// fills in the id, the converted amount and the audit timestamps.
type TransactionDraft struct {
	Title          string          `json:"title"`
	OriginalAmount float64         `json:"originalAmount"`
	Currency       currency.Code   `json:"currency"`
	Type           TransactionType `json:"type"`
	Category       string          `json:"category"`
	Date           time.Time       `json:"date"`
	Tags           []string        `json:"tags,omitempty"`
	IsRecurring    bool            `json:"isRecurring,omitempty"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod,omitempty"`
	HasTax         bool            `json:"hasTax,omitempty"`
	TaxAmount      float64         `json:"taxAmount,omitempty"`
}

// Validate checks the draft's user-entered fields
func (d TransactionDraft) Validate() error {
	if d.Title == "" {
		return ErrEmptyTitle
	}
	if d.OriginalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	if !d.Type.IsValid() {
		return ErrInvalidType
	}
	if d.PaymentMethod != "" && !d.PaymentMethod.IsValid() {
		return ErrInvalidPaymentMode
	}
	if d.TaxAmount < 0 {
		return ErrNegativeTaxAmount
	}
	return nil
}

// BillingCycle is how often a subscription renews
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// IsValid reports whether the cycle is one of the known values
func (c BillingCycle) IsValid() bool {
	return c == CycleMonthly || c == CycleYearly
}

// Advance returns t moved forward by one billing period
func (c BillingCycle) Advance(t time.Time) time.Time {
	if c == CycleYearly {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// Subscription is a recurring charge tracked alongside transactions. It is
// never auto-renewed in the data model; due-date rollover is a presentation
// concern.
type Subscription struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Amount       float64       `json:"amount"`
	Currency     currency.Code `json:"currency"`
	BillingCycle BillingCycle  `json:"billingCycle"`
	NextDueDate  time.Time     `json:"nextDueDate"`
}

// SubscriptionDraft is the user-entered part of a subscription. NextDueDate
// is derived by adding one billing period to StartDate (or now when zero).
type SubscriptionDraft struct {
	Name         string        `json:"name"`
	Amount       float64       `json:"amount"`
	Currency     currency.Code `json:"currency"`
	BillingCycle BillingCycle  `json:"billingCycle"`
	StartDate    time.Time     `json:"startDate"`
}

// Validate checks the draft's user-entered fields
func (d SubscriptionDraft) Validate() error {
	if d.Name == "" {
		return ErrEmptyName
	}
	if d.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if !d.BillingCycle.IsValid() {
		return ErrInvalidBillingCycle
	}
	return nil
}
