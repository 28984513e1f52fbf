package engine

import (
	"encoding/json"
	"sort"

	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
	"github.com/annuksk07-cloud/xpenseflow/internal/remote"
	"github.com/annuksk07-cloud/xpenseflow/internal/settings"
	apperrors "github.com/annuksk07-cloud/xpenseflow/internal/shared/errors"
	"github.com/annuksk07-cloud/xpenseflow/internal/stats"
)

// reconcileTransactions replaces the whole local transaction set with the
// snapshot (full-replace, not diff-merge) and recomputes stats. A listener
// failure keeps the last-known-good view: staleness beats blanking a
// financial ledger.
func (e *Engine) reconcileTransactions(snap remote.Snapshot, err error) {
	if err != nil {
		e.log.Error("transaction listener failed", "error", err)
		e.toasts.Error(apperrors.ToUserMessage(apperrors.Sync("Failed to sync transactions", err)))
		return
	}

	txs := make([]ledger.Transaction, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		var tx ledger.Transaction
		if err := json.Unmarshal(doc.Data, &tx); err != nil {
			e.log.Warn("skipping undecodable transaction document", "id", doc.ID, "error", err)
			continue
		}
		if tx.ID == "" {
			tx.ID = doc.ID
		}
		txs = append(txs, tx)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})

	e.mu.Lock()
	e.transactions = txs
	e.txLoaded = true
	e.stats = stats.Compute(txs, e.settings, e.now())
	e.mu.Unlock()
}

// reconcileSubscriptions replaces the local subscription set, ordered by
// next due date ascending
func (e *Engine) reconcileSubscriptions(snap remote.Snapshot, err error) {
	if err != nil {
		e.log.Error("subscription listener failed", "error", err)
		e.toasts.Error(apperrors.ToUserMessage(apperrors.Sync("Failed to sync subscriptions", err)))
		return
	}

	subs := make([]ledger.Subscription, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		var sub ledger.Subscription
		if err := json.Unmarshal(doc.Data, &sub); err != nil {
			e.log.Warn("skipping undecodable subscription document", "id", doc.ID, "error", err)
			continue
		}
		if sub.ID == "" {
			sub.ID = doc.ID
		}
		subs = append(subs, sub)
	}

	sort.SliceStable(subs, func(i, j int) bool {
		if !subs[i].NextDueDate.Equal(subs[j].NextDueDate) {
			return subs[i].NextDueDate.Before(subs[j].NextDueDate)
		}
		return subs[i].ID < subs[j].ID
	})

	e.mu.Lock()
	e.subscriptions = subs
	e.subLoaded = true
	e.mu.Unlock()
}

// reconcileSettings replaces the local settings document. Defaults fill any
// field the remote document is missing, and stats are recomputed because
// budget and savings percentages depend on settings.
func (e *Engine) reconcileSettings(snap remote.Snapshot, err error) {
	if err != nil {
		e.log.Error("settings listener failed", "error", err)
		e.toasts.Error(apperrors.ToUserMessage(apperrors.Sync("Failed to sync settings", err)))
		return
	}

	next := settings.Default()
	for _, doc := range snap.Docs {
		if doc.ID == settingsDocID {
			next = settings.FromDocument(doc.Data)
			break
		}
	}

	e.mu.Lock()
	e.settings = next
	e.settingsLoaded = true
	e.stats = stats.Compute(e.transactions, next, e.now())
	e.mu.Unlock()
}
