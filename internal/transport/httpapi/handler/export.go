package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/annuksk07-cloud/xpenseflow/internal/export"
	"github.com/annuksk07-cloud/xpenseflow/internal/session"
)

// ExportHandler renders audit artifacts from read-only ledger snapshots
type ExportHandler struct {
	sessions *session.Manager
}

// NewExportHandler creates an export handler over a session manager
func NewExportHandler(sessions *session.Manager) *ExportHandler {
	return &ExportHandler{sessions: sessions}
}

// GetCSV handles GET /api/v1/export/csv
func (h *ExportHandler) GetCSV(w http.ResponseWriter, r *http.Request) {
	eng, ok := resolveEngine(h.sessions, w, r)
	if !ok {
		return
	}

	filename := export.CSVFilename(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteCSV(w, eng.Transactions()); err != nil {
		// Headers are gone; all that is left is logging via the middleware
		respondError(w, "failed to write report", http.StatusInternalServerError)
	}
}

// GetBackup handles GET /api/v1/export/backup
func (h *ExportHandler) GetBackup(w http.ResponseWriter, r *http.Request) {
	eng, ok := resolveEngine(h.sessions, w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="xpenseflow_backup.json"`)

	b := export.Backup{
		Settings:      eng.Settings(),
		Transactions:  eng.Transactions(),
		Subscriptions: eng.Subscriptions(),
		Timestamp:     time.Now().UTC(),
	}
	if err := export.WriteBackup(w, b); err != nil {
		respondError(w, "failed to write backup", http.StatusInternalServerError)
	}
}
