// Package httpapi is the HTTP surface through which UI and export
// collaborators reach the ledger engine: read-only snapshots plus the
// command functions, nothing else.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/annuksk07-cloud/xpenseflow/internal/transport/httpapi/handler"
	"github.com/annuksk07-cloud/xpenseflow/internal/transport/httpapi/middleware"
	"github.com/annuksk07-cloud/xpenseflow/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger         *logger.Logger
	AllowedOrigins []string
	LedgerHandler  *handler.LedgerHandler
	ExportHandler  *handler.ExportHandler
	JWTMiddleware  func(http.Handler) http.Handler
}

// NewRouter creates the HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))

	r.Get("/health", handler.GetHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.JWTMiddleware)
		r.Use(middleware.RateLimit())

		r.Get("/state", cfg.LedgerHandler.GetState)

		r.Post("/transactions", cfg.LedgerHandler.CreateTransaction)
		r.Delete("/transactions/{id}", cfg.LedgerHandler.DeleteTransaction)

		r.Post("/subscriptions", cfg.LedgerHandler.CreateSubscription)
		r.Delete("/subscriptions/{id}", cfg.LedgerHandler.DeleteSubscription)

		r.Put("/settings", cfg.LedgerHandler.UpdateSettings)
		r.Delete("/toasts/{id}", cfg.LedgerHandler.DismissToast)

		r.Post("/session/release", cfg.LedgerHandler.ReleaseSession)

		if cfg.ExportHandler != nil {
			r.Get("/export/csv", cfg.ExportHandler.GetCSV)
			r.Get("/export/backup", cfg.ExportHandler.GetBackup)
		}
	})

	return r
}
