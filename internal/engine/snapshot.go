package engine

import (
	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
	"github.com/annuksk07-cloud/xpenseflow/internal/settings"
	"github.com/annuksk07-cloud/xpenseflow/internal/stats"
	"github.com/annuksk07-cloud/xpenseflow/internal/toast"
)

// Identity returns the identity key this engine serves
func (e *Engine) Identity() string {
	return e.identity
}

// Transactions returns the reconciled transaction set, date descending
func (e *Engine) Transactions() []ledger.Transaction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]ledger.Transaction, len(e.transactions))
	copy(out, e.transactions)
	return out
}

// Subscriptions returns the reconciled subscription set, due date ascending
func (e *Engine) Subscriptions() []ledger.Subscription {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]ledger.Subscription, len(e.subscriptions))
	copy(out, e.subscriptions)
	return out
}

// Settings returns the current settings document
func (e *Engine) Settings() settings.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings.Clone()
}

// Stats returns the metrics derived from the last reconciliation. Stats are
// never older than the last successful reconciliation.
func (e *Engine) Stats() stats.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// Toasts returns the currently visible notifications
func (e *Engine) Toasts() []toast.Toast {
	return e.toasts.List()
}

// Loaded reports whether every collection has delivered its first snapshot
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.txLoaded && e.subLoaded && e.settingsLoaded
}
