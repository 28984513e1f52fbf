package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/annuksk07-cloud/xpenseflow/internal/engine"
	"github.com/annuksk07-cloud/xpenseflow/internal/ledger"
	"github.com/annuksk07-cloud/xpenseflow/internal/session"
	"github.com/annuksk07-cloud/xpenseflow/internal/settings"
	"github.com/annuksk07-cloud/xpenseflow/internal/stats"
	"github.com/annuksk07-cloud/xpenseflow/internal/toast"
	"github.com/annuksk07-cloud/xpenseflow/internal/transport/httpapi/middleware"
)

// LedgerHandler exposes the engine's command functions and read-only
// snapshots to UI collaborators
type LedgerHandler struct {
	sessions *session.Manager
}

// NewLedgerHandler creates a ledger handler over a session manager
func NewLedgerHandler(sessions *session.Manager) *LedgerHandler {
	return &LedgerHandler{sessions: sessions}
}

func (h *LedgerHandler) engine(w http.ResponseWriter, r *http.Request) (*engine.Engine, bool) {
	return resolveEngine(h.sessions, w, r)
}

// resolveEngine maps a request onto the engine for its resolved identity
func resolveEngine(sessions *session.Manager, w http.ResponseWriter, r *http.Request) (*engine.Engine, bool) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		respondError(w, "identity not resolved", http.StatusUnauthorized)
		return nil, false
	}
	eng, err := sessions.Engine(identity)
	if err != nil {
		respondError(w, "failed to open ledger", http.StatusInternalServerError)
		return nil, false
	}
	return eng, true
}

// StateResponse is the full read-only snapshot for one identity
type StateResponse struct {
	Transactions  []ledger.Transaction  `json:"transactions"`
	Subscriptions []ledger.Subscription `json:"subscriptions"`
	Settings      settings.Settings     `json:"settings"`
	Stats         stats.Stats           `json:"stats"`
	Toasts        []toast.Toast         `json:"toasts"`
	Loaded        bool                  `json:"loaded"`
}

// GetState handles GET /api/v1/state
func (h *LedgerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.engine(w, r)
	if !ok {
		return
	}

	respondJSON(w, StateResponse{
		Transactions:  eng.Transactions(),
		Subscriptions: eng.Subscriptions(),
		Settings:      eng.Settings(),
		Stats:         eng.Stats(),
		Toasts:        eng.Toasts(),
		Loaded:        eng.Loaded(),
	}, http.StatusOK)
}

// CreateTransaction handles POST /api/v1/transactions. The write is
// acknowledged with 202: it becomes visible once the listener echoes it.
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.engine(w, r)
	if !ok {
		return
	}

	var draft ledger.TransactionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.AddTransaction(draft); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "accepted"}, http.StatusAccepted)
}

// DeleteTransaction handles DELETE /api/v1/transactions/{id}
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.engine(w, r)
	if !ok {
		return
	}

	if err := eng.DeleteTransaction(chi.URLParam(r, "id")); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "accepted"}, http.StatusAccepted)
}

// CreateSubscription handles POST /api/v1/subscriptions
func (h *LedgerHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.engine(w, r)
	if !ok {
		return
	}

	var draft ledger.SubscriptionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.AddSubscription(draft); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "accepted"}, http.StatusAccepted)
}

// DeleteSubscription handles DELETE /api/v1/subscriptions/{id}
func (h *LedgerHandler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.engine(w, r)
	if !ok {
		return
	}

	if err := eng.DeleteSubscription(chi.URLParam(r, "id")); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "accepted"}, http.StatusAccepted)
}

// UpdateSettings handles PUT /api/v1/settings
func (h *LedgerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.engine(w, r)
	if !ok {
		return
	}

	var patch settings.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := eng.UpdateSettings(patch); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, map[string]string{"status": "accepted"}, http.StatusAccepted)
}

// DismissToast handles DELETE /api/v1/toasts/{id}
func (h *LedgerHandler) DismissToast(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.engine(w, r)
	if !ok {
		return
	}

	eng.DismissToast(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// ReleaseSession handles POST /api/v1/session/release. Sign-out must reset
// all local state before any new identity attaches.
func (h *LedgerHandler) ReleaseSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		respondError(w, "identity not resolved", http.StatusUnauthorized)
		return
	}

	h.sessions.Release(identity)
	w.WriteHeader(http.StatusNoContent)
}
