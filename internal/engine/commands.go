package engine

import (
	"github.com/google/uuid"

	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
	"github.com/annuksk07-cloud/xpenseflow/internal/settings"
	apperrors "github.com/annuksk07-cloud/xpenseflow/internal/shared/errors"
)

// AddTransaction validates the draft, converts its amount into the base
// currency active right now, and sends a create intent upstream. There is
// no optimistic insert: the transaction becomes visible on the next
// reconciliation. Validation failures are returned synchronously and never
// reach the adapter.
func (e *Engine) AddTransaction(draft ledger.TransactionDraft) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := draft.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}
	if !e.rates.Valid(draft.Currency) {
		return apperrors.Validation("unknown currency code: " + string(draft.Currency))
	}

	e.mu.RLock()
	current := e.settings.Clone()
	e.mu.RUnlock()

	amount, err := e.rates.Convert(draft.OriginalAmount, draft.Currency, current.BaseCurrency, current.CustomRates)
	if err != nil {
		// Both codes were validated above; reaching this is a programmer error
		e.log.Error("currency conversion failed", "from", draft.Currency, "to", current.BaseCurrency, "error", err)
		return apperrors.Conversion(err)
	}

	now := e.now()
	tx := ledger.Transaction{
		ID:             uuid.New().String(),
		Title:          draft.Title,
		Amount:         amount,
		OriginalAmount: draft.OriginalAmount,
		Currency:       draft.Currency,
		Type:           draft.Type,
		Category:       draft.Category,
		Date:           draft.Date,
		Tags:           draft.Tags,
		IsRecurring:    draft.IsRecurring,
		PaymentMethod:  draft.PaymentMethod,
		HasTax:         draft.HasTax,
		TaxAmount:      draft.TaxAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	if tx.PaymentMethod == "" {
		tx.PaymentMethod = ledger.PaymentCard
	}

	e.enqueue(func() {
		if err := e.adapter.Create(e.ctx, e.transactionsPath(), tx.ID, tx); err != nil {
			e.log.Error("transaction create rejected", "id", tx.ID, "error", err)
			e.toasts.Error(apperrors.ToUserMessage(apperrors.Sync("Failed to add transaction", err)))
			return
		}
		e.toasts.Success("Transaction added successfully")
	})
	return nil
}

// DeleteTransaction sends a delete intent for id. Unknown ids are a silent
// no-op. Local removal happens only on reconciliation, so a failed delete
// never hides a record that still exists upstream.
func (e *Engine) DeleteTransaction(id string) error {
	if err := e.guard(); err != nil {
		return err
	}

	e.mu.RLock()
	found := false
	for _, tx := range e.transactions {
		if tx.ID == id {
			found = true
			break
		}
	}
	e.mu.RUnlock()
	if !found {
		return nil
	}

	e.enqueue(func() {
		if err := e.adapter.Remove(e.ctx, e.transactionsPath(), id); err != nil {
			e.log.Error("transaction delete rejected", "id", id, "error", err)
			e.toasts.Error(apperrors.ToUserMessage(apperrors.Sync("Failed to remove transaction", err)))
			return
		}
		e.toasts.Info("Transaction removed")
	})
	return nil
}

// AddSubscription validates the draft and sends a create intent. The due
// date is one billing period after the start date (or after now when the
// draft has no start date).
func (e *Engine) AddSubscription(draft ledger.SubscriptionDraft) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := draft.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}
	if !e.rates.Valid(draft.Currency) {
		return apperrors.Validation("unknown currency code: " + string(draft.Currency))
	}

	start := draft.StartDate
	if start.IsZero() {
		start = e.now()
	}
	sub := ledger.Subscription{
		ID:           uuid.New().String(),
		Name:         draft.Name,
		Amount:       draft.Amount,
		Currency:     draft.Currency,
		BillingCycle: draft.BillingCycle,
		NextDueDate:  draft.BillingCycle.Advance(start),
	}

	e.enqueue(func() {
		if err := e.adapter.Create(e.ctx, e.subscriptionsPath(), sub.ID, sub); err != nil {
			e.log.Error("subscription create rejected", "id", sub.ID, "error", err)
			e.toasts.Error(apperrors.ToUserMessage(apperrors.Sync("Failed to add subscription", err)))
			return
		}
		e.toasts.Success("Subscription added")
	})
	return nil
}

// DeleteSubscription sends a delete intent for id. Unknown ids are a
// silent no-op.
func (e *Engine) DeleteSubscription(id string) error {
	if err := e.guard(); err != nil {
		return err
	}

	e.mu.RLock()
	found := false
	for _, sub := range e.subscriptions {
		if sub.ID == id {
			found = true
			break
		}
	}
	e.mu.RUnlock()
	if !found {
		return nil
	}

	e.enqueue(func() {
		if err := e.adapter.Remove(e.ctx, e.subscriptionsPath(), id); err != nil {
			e.log.Error("subscription delete rejected", "id", id, "error", err)
			e.toasts.Error(apperrors.ToUserMessage(apperrors.Sync("Failed to remove subscription", err)))
			return
		}
		e.toasts.Info("Subscription removed")
	})
	return nil
}

// UpdateSettings merges the patch into the last known settings and sends a
// full-document write (last-writer-wins). Local settings change only when
// the listener echoes the write back.
func (e *Engine) UpdateSettings(patch settings.Patch) error {
	if err := e.guard(); err != nil {
		return err
	}

	e.mu.RLock()
	next := e.settings.Apply(patch)
	e.mu.RUnlock()

	if err := next.Validate(e.rates); err != nil {
		return apperrors.Validation(err.Error())
	}

	e.enqueue(func() {
		if err := e.adapter.Put(e.ctx, e.settingsPath()+"/"+settingsDocID, next); err != nil {
			e.log.Error("settings write rejected", "error", err)
			e.toasts.Error(apperrors.ToUserMessage(apperrors.Sync("Failed to save settings", err)))
			return
		}
		e.toasts.Success("Settings saved")
	})
	return nil
}

// DismissToast removes a toast immediately; unknown ids are a no-op
func (e *Engine) DismissToast(id string) {
	e.toasts.Dismiss(id)
}

func (e *Engine) guard() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	if !e.started {
		return ErrNotStarted
	}
	return nil
}
