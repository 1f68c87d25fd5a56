package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-books/internal/ap"
	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/books"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger      *slog.Logger
	Config      *Config
	Books       *books.Books
	Idempotency KeyClaimer
	JobHandler  *jobs.Handler
	Metrics     *observability.Metrics
}

// NewRouter constructs the chi.Router with the books API under /api/v1.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		Idempotency: params.Idempotency,
		Metrics:     params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	b := params.Books
	log := params.Logger
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", accounts.NewHandler(log, b.Accounts).MountRoutes)
		r.Route("/journals", journals.NewHandler(log, b.Journals, b.Accounts, b.BaseCurrency).MountRoutes)
		r.Route("/reports", reports.NewHandler(log, b.Reports).MountRoutes)
		r.Route("/masterdata", masterdata.NewHandler(log, b.MasterData).MountRoutes)
		r.Route("/inventory", inventory.NewHandler(log, b.Inventory, b.MasterData).MountRoutes)
		r.Route("/sales", ar.NewHandler(log, b.Sales, b.MasterData).MountRoutes)
		r.Route("/purchases", ap.NewHandler(log, b.Purchases, b.MasterData).MountRoutes)
		r.Route("/payments", payments.NewHandler(log, b.Payments).MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})
	return r
}
