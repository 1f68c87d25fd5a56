// Package books wires the bookkeeping services over a single store and checks
// the invariants the posting rules rely on before anything is served.
package books

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-books/internal/ap"
	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Store supplies one repository per domain. Both store implementations satisfy it.
type Store interface {
	Accounts() accounts.Repository
	Journals() journals.Repository
	Reports() reports.Repository
	MasterData() masterdata.Repository
	Inventory() inventory.Repository
	Payments() payments.Repository
	Sales() ar.Repository
	Purchases() ap.Repository
}

// Options tune Open.
type Options struct {
	BaseCurrency        string
	DefaultLocationCode string
	SeedDefaults        bool
	Audit               shared.AuditPort
	Logger              *slog.Logger
	ReportCache         reports.Cache
	Observers           []journals.Observer
}

// Books holds the wired services.
type Books struct {
	Accounts   *accounts.Service
	Journals   *journals.Service
	Reports    *reports.Service
	MasterData *masterdata.Service
	Inventory  *inventory.Service
	Sales      *ar.Service
	Purchases  *ap.Service
	Payments   *payments.Service

	Chart           accounts.Chart
	DefaultLocation masterdata.Location
	BaseCurrency    string
}

// Open builds every service over store. It seeds the default chart when asked,
// resolves the well-known accounts and makes sure the default location exists.
func Open(ctx context.Context, store Store, opts Options) (*Books, error) {
	base, err := shared.NormalizeCurrency(opts.BaseCurrency)
	if err != nil {
		return nil, fmt.Errorf("books: base currency: %w", err)
	}
	locationCode := strings.ToUpper(strings.TrimSpace(opts.DefaultLocationCode))
	if locationCode == "" {
		locationCode = "MAIN"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Books{BaseCurrency: base}
	b.Accounts = accounts.NewService(store.Accounts(), opts.Audit, logger)
	b.Journals = journals.NewService(store.Journals(), opts.Audit, logger, opts.Observers...)
	b.Reports = reports.NewService(store.Reports(), opts.ReportCache)
	b.MasterData = masterdata.NewService(store.MasterData())
	b.Inventory = inventory.NewService(store.Inventory(), opts.Audit, logger)
	if opts.ReportCache != nil {
		invalidate := func(ctx context.Context) {
			if err := b.Reports.Invalidate(ctx); err != nil {
				logger.WarnContext(ctx, "report cache bump", slog.Any("error", err))
			}
		}
		b.Journals.Observe(journals.ObserverFunc(func(ctx context.Context, _ []journals.Entry) { invalidate(ctx) }))
		b.Accounts.Observe(func(ctx context.Context, _ accounts.Account) { invalidate(ctx) })
	}

	if opts.SeedDefaults {
		if _, err := b.Accounts.EnsureDefaults(ctx); err != nil {
			return nil, fmt.Errorf("books: seed chart: %w", err)
		}
	}
	chart, err := b.Accounts.ResolveChart(ctx)
	if err != nil {
		return nil, fmt.Errorf("books: resolve chart: %w", err)
	}
	location, err := b.MasterData.EnsureLocation(ctx, locationCode, "Main Warehouse")
	if err != nil {
		return nil, fmt.Errorf("books: default location: %w", err)
	}
	b.Chart = chart
	b.DefaultLocation = location

	b.Sales = ar.NewService(store.Sales(), b.Journals, b.Inventory, b.Accounts, opts.Audit, logger, ar.Config{
		Chart:             chart,
		BaseCurrency:      base,
		DefaultLocationID: location.ID,
	})
	b.Purchases = ap.NewService(store.Purchases(), b.Journals, b.Inventory, b.Accounts, opts.Audit, logger, ap.Config{
		Chart:             chart,
		BaseCurrency:      base,
		DefaultLocationID: location.ID,
	})
	b.Payments = payments.NewService(store.Payments(),
		payments.ApplierFunc(b.Sales.ApplyReceipt),
		payments.ApplierFunc(b.Purchases.ApplyPayment),
	)
	return b, nil
}
