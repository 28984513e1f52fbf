package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/annuksk07-cloud/xpenseflow/internal/currency"
	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
)

func TestTransactionDraft_Validate(t *testing.T) {
	valid := ledger.TransactionDraft{
		Title:          "Groceries",
		OriginalAmount: 42.5,
		Currency:       currency.USD,
		Type:           ledger.TypeExpense,
		Category:       "food",
	}

	tests := []struct {
		name    string
		mutate  func(*ledger.TransactionDraft)
		wantErr error
	}{
		{"valid draft", func(d *ledger.TransactionDraft) {}, nil},
		{"empty title", func(d *ledger.TransactionDraft) { d.Title = "" }, ledger.ErrEmptyTitle},
		{"zero amount", func(d *ledger.TransactionDraft) { d.OriginalAmount = 0 }, ledger.ErrNonPositiveAmount},
		{"negative amount", func(d *ledger.TransactionDraft) { d.OriginalAmount = -10 }, ledger.ErrNonPositiveAmount},
		{"missing type", func(d *ledger.TransactionDraft) { d.Type = "" }, ledger.ErrInvalidType},
		{"bogus type", func(d *ledger.TransactionDraft) { d.Type = "REFUND" }, ledger.ErrInvalidType},
		{"bogus payment method", func(d *ledger.TransactionDraft) { d.PaymentMethod = "CHEQUE" }, ledger.ErrInvalidPaymentMode},
		{"empty payment method is allowed", func(d *ledger.TransactionDraft) { d.PaymentMethod = "" }, nil},
		{"negative tax", func(d *ledger.TransactionDraft) { d.TaxAmount = -1 }, ledger.ErrNegativeTaxAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSubscriptionDraft_Validate(t *testing.T) {
	valid := ledger.SubscriptionDraft{
		Name:         "Streaming",
		Amount:       9.99,
		Currency:     currency.USD,
		BillingCycle: ledger.CycleMonthly,
	}

	tests := []struct {
		name    string
		mutate  func(*ledger.SubscriptionDraft)
		wantErr error
	}{
		{"valid draft", func(d *ledger.SubscriptionDraft) {}, nil},
		{"empty name", func(d *ledger.SubscriptionDraft) { d.Name = "" }, ledger.ErrEmptyName},
		{"zero amount", func(d *ledger.SubscriptionDraft) { d.Amount = 0 }, ledger.ErrNonPositiveAmount},
		{"bogus cycle", func(d *ledger.SubscriptionDraft) { d.BillingCycle = "weekly" }, ledger.ErrInvalidBillingCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBillingCycle_Advance(t *testing.T) {
	start := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC), ledger.CycleMonthly.Advance(start))
	assert.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), ledger.CycleYearly.Advance(start))

	// Month-end normalization follows AddDate semantics
	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), ledger.CycleMonthly.Advance(jan31))
}
